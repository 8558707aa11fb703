package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

func TestMapEngineError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"slot taken", httperr.ErrSlotNoLongerAvailable, http.StatusConflict, httperr.CodeSlotNoLongerAvailable},
		{"wrapped slot taken", fmt.Errorf("book: %w", httperr.ErrSlotNoLongerAvailable), http.StatusConflict, httperr.CodeSlotNoLongerAvailable},
		{"no barber", httperr.ErrNoBarberAvailable, http.StatusConflict, httperr.CodeNoBarberAvailable},
		{"lock timeout", httperr.ErrLockTimeout, http.StatusConflict, httperr.CodeLockTimeout},
		{"hold expired", httperr.ErrHoldExpired, http.StatusGone, httperr.CodeHoldExpired},
		{"payment", httperr.ErrPaymentNotApproved, http.StatusPaymentRequired, httperr.CodePaymentNotApproved},
		{"closed day", httperr.ErrDayClosed, http.StatusBadRequest, httperr.CodeDayClosed},
		{"unknown appointment", httperr.ErrAppointmentNotFound, http.StatusNotFound, httperr.CodeAppointmentNotFound},
		{"unmapped business code", httperr.ErrBusiness("weird"), http.StatusBadRequest, "weird"},
		{"storage", httperr.ErrStorage("load", errors.New("conn refused")), http.StatusServiceUnavailable, httperr.CodeStorageUnavailable},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := mapEngineError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapEngineError_NotFoundHidesDetail(t *testing.T) {
	_, _, msg := mapEngineError(httperr.ErrBusinessf(httperr.CodeBarberNotFound, "barber 7 of shop 3"))
	assert.Equal(t, "Barbeiro não encontrado.", msg)

	_, _, msg = mapEngineError(httperr.ErrBusinessf(httperr.CodeInvalidSlot, "10:07 is off the grid"))
	assert.Equal(t, "10:07 is off the grid", msg)
}

func TestParseHelpers(t *testing.T) {
	id, ok := parseBarberQuery("any")
	assert.True(t, ok)
	assert.Nil(t, id)

	id, ok = parseBarberQuery("4")
	assert.True(t, ok)
	assert.Equal(t, uint(4), *id)

	_, ok = parseBarberQuery("0")
	assert.False(t, ok)

	ids, ok := parseIDList("1, 2,,3")
	assert.True(t, ok)
	assert.Equal(t, []uint{1, 2, 3}, ids)

	_, ok = parseIDList("1,x")
	assert.False(t, ok)

	_, ok = parseIDList("")
	assert.False(t, ok)
}
