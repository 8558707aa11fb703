package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/payment"
)

type ConfirmPaymentInput struct {
	BarbershopID  uint
	AppointmentID uint
	PaymentID     string
}

// ConfirmPayment settles a hold once the gateway reports the payment as
// approved. A hold that already lapsed is expired instead and the caller
// gets ErrHoldExpired.
type ConfirmPayment struct {
	Deps
	verifier payment.Verifier
}

func NewConfirmPayment(d Deps, verifier payment.Verifier) *ConfirmPayment {
	return &ConfirmPayment{Deps: d.withDefaults(), verifier: verifier}
}

func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	in ConfirmPaymentInput,
) ([]models.Appointment, error) {

	var lapsed bool

	group, err := uc.transitionGroup(ctx, transitionRequest{
		BarbershopID:  in.BarbershopID,
		AppointmentID: in.AppointmentID,
		check: func(ap *models.Appointment) error {
			if domain.Status(ap.Status) != domain.StatusAwaitingPayment {
				return httperr.ErrBusinessf(httperr.CodeInvalidState, "appointment is not awaiting payment")
			}
			if lapsed = domain.HoldLapsed(ap, uc.Clock()); lapsed {
				return nil
			}
			return uc.verifier.Verify(ctx, in.PaymentID, payment.Reference(ap.ID, ap.GroupID))
		},
		apply: func(ap *models.Appointment, _ *models.Barbershop, now time.Time) error {
			if lapsed || domain.HoldLapsed(ap, now) {
				lapsed = true
				return domain.Expire(ap, now)
			}
			return domain.ConfirmPayment(ap, now, in.PaymentID)
		},
	})
	if err != nil {
		return nil, err
	}

	if lapsed {
		uc.Metrics.AddHoldsExpired(len(group))
		return group, httperr.ErrHoldExpired
	}
	return group, nil
}
