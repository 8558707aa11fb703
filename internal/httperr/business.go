package httperr

import "errors"

type BusinessError struct {
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Detail
	}
	return e.Code
}

// Is matches any BusinessError carrying the same code, so sentinels work
// with errors.Is even after a Detail was attached.
func (e BusinessError) Is(target error) bool {
	var t BusinessError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// ErrBusinessf returns a business error with a human readable detail.
func ErrBusinessf(code, detail string) error {
	return BusinessError{Code: code, Detail: detail}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// CodeOf returns the business code carried by err, or "".
func CodeOf(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// ===============================
// Engine error codes
// ===============================

const (
	CodeInvalidScheduleConfig = "invalid_schedule_config"
	CodeDayClosed             = "day_closed"
	CodeInvalidSlot           = "invalid_slot"
	CodeSlotNoLongerAvailable = "slot_no_longer_available"
	CodeNoBarberAvailable     = "no_barber_available"
	CodeHoldExpired           = "hold_expired"
	CodeInvalidState          = "invalid_state"
	CodeLockTimeout           = "booking_busy"
	CodePaymentNotApproved    = "payment_not_approved"
	CodeStorageUnavailable    = "storage_unavailable"
	CodeInvalidInput          = "invalid_input"

	CodeBarbershopNotFound  = "barbershop_not_found"
	CodeBarberNotFound      = "barber_not_found"
	CodeServiceNotFound     = "service_not_found"
	CodeAppointmentNotFound = "appointment_not_found"
	CodeClientNotFound      = "client_not_found"
)

var (
	ErrInvalidScheduleConfig = ErrBusiness(CodeInvalidScheduleConfig)
	ErrDayClosed             = ErrBusiness(CodeDayClosed)
	ErrInvalidSlot           = ErrBusiness(CodeInvalidSlot)
	ErrSlotNoLongerAvailable = ErrBusiness(CodeSlotNoLongerAvailable)
	ErrNoBarberAvailable     = ErrBusiness(CodeNoBarberAvailable)
	ErrHoldExpired           = ErrBusiness(CodeHoldExpired)
	ErrInvalidState          = ErrBusiness(CodeInvalidState)
	ErrLockTimeout           = ErrBusiness(CodeLockTimeout)
	ErrPaymentNotApproved    = ErrBusiness(CodePaymentNotApproved)
	ErrInvalidInput          = ErrBusiness(CodeInvalidInput)

	ErrBarbershopNotFound  = ErrBusiness(CodeBarbershopNotFound)
	ErrBarberNotFound      = ErrBusiness(CodeBarberNotFound)
	ErrServiceNotFound     = ErrBusiness(CodeServiceNotFound)
	ErrAppointmentNotFound = ErrBusiness(CodeAppointmentNotFound)
	ErrClientNotFound      = ErrBusiness(CodeClientNotFound)
)

// StorageError wraps an infrastructure failure. It is never a business
// outcome and maps to 503.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage unavailable: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func ErrStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var be BusinessError
	if errors.As(err, &be) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
