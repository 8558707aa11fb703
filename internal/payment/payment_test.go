package payment

import (
	"context"
	"errors"
	"testing"

	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) Get(ctx context.Context, id int) (*mppayment.Response, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*mppayment.Response); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMercadoPagoVerifier(t *testing.T) {
	group := "0b6c"
	ref := Reference(10, &group)

	tests := []struct {
		name    string
		resp    *mppayment.Response
		err     error
		wantErr error
	}{
		{
			name: "approved",
			resp: &mppayment.Response{Status: "approved", ExternalReference: ref},
		},
		{
			name:    "pending",
			resp:    &mppayment.Response{Status: "pending", ExternalReference: ref},
			wantErr: httperr.ErrPaymentNotApproved,
		},
		{
			name:    "other booking",
			resp:    &mppayment.Response{Status: "approved", ExternalReference: "appointment:11"},
			wantErr: httperr.ErrPaymentNotApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := &mockGetter{}
			getter.On("Get", mock.Anything, 555).Return(tt.resp, tt.err)

			err := (&MercadoPagoVerifier{client: getter}).Verify(context.Background(), "555", ref)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMercadoPagoVerifierGatewayDown(t *testing.T) {
	getter := &mockGetter{}
	getter.On("Get", mock.Anything, 1).Return(nil, errors.New("timeout"))

	err := (&MercadoPagoVerifier{client: getter}).Verify(context.Background(), "1", "appointment:1")
	assert.True(t, httperr.IsStorage(err))

	err = (&MercadoPagoVerifier{client: getter}).Verify(context.Background(), "abc", "appointment:1")
	assert.ErrorIs(t, err, httperr.ErrInvalidInput)
}

func TestReference(t *testing.T) {
	assert.Equal(t, "appointment:7", Reference(7, nil))
	empty := ""
	assert.Equal(t, "appointment:7", Reference(7, &empty))
	g := "abc"
	assert.Equal(t, "group:abc", Reference(7, &g))
	assert.ErrorIs(t, Disabled{}.Verify(context.Background(), "1", "x"), httperr.ErrPaymentNotApproved)
}
