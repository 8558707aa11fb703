package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// DayKey names one (barbershop, barber, date) cell, the unit of mutual
// exclusion for bookings.
type DayKey struct {
	BarbershopID uint
	BarberID     uint
	Date         string
}

func (k DayKey) String() string {
	return fmt.Sprintf("booking:%d:%d:%s", k.BarbershopID, k.BarberID, k.Date)
}

type Repository interface {
	// -------- Transaction --------

	// Transaction runs fn against a repository bound to one storage
	// transaction. Any error returned by fn rolls everything back.
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// LockDays serialises writers on the given cells until the surrounding
	// transaction ends. Keys must be passed in a stable order.
	LockDays(
		ctx context.Context,
		keys []DayKey,
	) error

	// -------- Barbershop --------
	GetBarbershopByID(
		ctx context.Context,
		id uint,
	) (*models.Barbershop, error)

	GetBarbershopBySlug(
		ctx context.Context,
		slug string,
	) (*models.Barbershop, error)

	// -------- Schedule --------
	LoadCalendar(
		ctx context.Context,
		barbershopID uint,
	) (*schedule.Calendar, error)

	// -------- Roster / catalogue --------
	ListActiveBarbers(
		ctx context.Context,
		barbershopID uint,
	) ([]models.Barber, error)

	GetBarber(
		ctx context.Context,
		barbershopID uint,
		barberID uint,
	) (*models.Barber, error)

	GetServices(
		ctx context.Context,
		barbershopID uint,
		serviceIDs []uint,
	) ([]models.Service, error)

	// -------- Client --------
	FindClientByPhone(
		ctx context.Context,
		barbershopID uint,
		phone string,
	) (*models.Client, error)

	GetOrCreateClient(
		ctx context.Context,
		barbershopID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Appointment (occupancy) --------

	// ListDayAppointments returns every unreleased appointment of the given
	// barbers on date. Callers still apply BlocksSlot for lapsed holds.
	ListDayAppointments(
		ctx context.Context,
		barbershopID uint,
		barberIDs []uint,
		date string,
	) ([]models.Appointment, error)

	// LockDayAppointments is ListDayAppointments with row locks held until
	// the transaction ends.
	LockDayAppointments(
		ctx context.Context,
		barbershopID uint,
		barberIDs []uint,
		date string,
	) ([]models.Appointment, error)

	// ExpireLapsedHolds marks every lapsed hold of the given cells EXPIRADA
	// and returns what it changed.
	ExpireLapsedHolds(
		ctx context.Context,
		barbershopID uint,
		barberIDs []uint,
		date string,
		now time.Time,
	) ([]models.Appointment, error)

	// -------- Appointment (create / state change) --------
	CreateAppointments(
		ctx context.Context,
		aps []*models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		barbershopID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	// GetAppointmentGroup returns ap and every sibling sharing its group,
	// ordered by start.
	GetAppointmentGroup(
		ctx context.Context,
		ap *models.Appointment,
	) ([]models.Appointment, error)

	UpdateAppointments(
		ctx context.Context,
		aps []models.Appointment,
	) error

	ListLapsedHolds(
		ctx context.Context,
		now time.Time,
		limit int,
	) ([]models.Appointment, error)

	// -------- Listing --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		barbershopID uint,
		barberID *uint,
		fromDate string,
		toDate string,
	) ([]models.Appointment, error)
}
