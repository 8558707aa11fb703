// Package payment verifies that a hold was paid before it is confirmed.
package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

const statusApproved = "approved"

// Verifier confirms that paymentID is an approved payment whose external
// reference is expectedRef.
type Verifier interface {
	Verify(ctx context.Context, paymentID string, expectedRef string) error
}

// Reference is the external reference a booking is paid under: its group
// when it has one, the appointment otherwise.
func Reference(appointmentID uint, groupID *string) string {
	if groupID != nil && *groupID != "" {
		return "group:" + *groupID
	}
	return "appointment:" + strconv.FormatUint(uint64(appointmentID), 10)
}

type paymentGetter interface {
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

type MercadoPagoVerifier struct {
	client paymentGetter
}

func NewMercadoPagoVerifier(accessToken string) (*MercadoPagoVerifier, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPagoVerifier{client: mppayment.NewClient(cfg)}, nil
}

func (v *MercadoPagoVerifier) Verify(ctx context.Context, paymentID string, expectedRef string) error {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return httperr.ErrBusinessf(httperr.CodeInvalidInput, "payment id must be numeric")
	}

	p, err := v.client.Get(ctx, id)
	if err != nil {
		return httperr.ErrStorage("mercadopago get payment", err)
	}

	if p.Status != statusApproved {
		return httperr.ErrBusinessf(httperr.CodePaymentNotApproved, "payment status is "+p.Status)
	}
	if p.ExternalReference != expectedRef {
		return httperr.ErrBusinessf(httperr.CodePaymentNotApproved, "payment belongs to another booking")
	}
	return nil
}

// Disabled rejects every payment. It stands in when no gateway is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string, string) error {
	return httperr.ErrBusinessf(httperr.CodePaymentNotApproved, "payments are not configured")
}

var (
	_ Verifier = (*MercadoPagoVerifier)(nil)
	_ Verifier = Disabled{}
)
