package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) postgres() bool {
	return r.db.Dialector.Name() == "postgres"
}

func notFoundOr(err error, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return httperr.ErrStorage(op, err)
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// LockDays takes a transaction scoped advisory lock per cell on postgres.
// Other dialects rely on the in-process or redis locker alone.
func (r *AppointmentGormRepository) LockDays(
	ctx context.Context,
	keys []domain.DayKey,
) error {
	if !r.postgres() {
		return nil
	}
	for _, k := range keys {
		if err := r.db.WithContext(ctx).
			Exec("SELECT pg_advisory_xact_lock(hashtext(?))", k.String()).Error; err != nil {
			return httperr.ErrStorage("advisory lock", err)
		}
	}
	return nil
}

// --------------------------------------------------
// Barbershop
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarbershopByID(
	ctx context.Context,
	id uint,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, notFoundOr(err, httperr.ErrBarbershopNotFound, "get barbershop")
	}
	return &shop, nil
}

func (r *AppointmentGormRepository) GetBarbershopBySlug(
	ctx context.Context,
	slug string,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error; err != nil {
		return nil, notFoundOr(err, httperr.ErrBarbershopNotFound, "get barbershop")
	}
	return &shop, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *AppointmentGormRepository) LoadCalendar(
	ctx context.Context,
	barbershopID uint,
) (*schedule.Calendar, error) {

	var (
		hours      []models.BusinessHours
		breaks     []models.RecurringBreak
		exceptions []models.ScheduleException
	)

	db := r.db.WithContext(ctx)
	if err := db.Where("barbershop_id = ?", barbershopID).Order("weekday ASC").Find(&hours).Error; err != nil {
		return nil, httperr.ErrStorage("load business hours", err)
	}
	if err := db.Where("barbershop_id = ?", barbershopID).Order("start_time ASC").Find(&breaks).Error; err != nil {
		return nil, httperr.ErrStorage("load breaks", err)
	}
	if err := db.Where("barbershop_id = ?", barbershopID).Order("start_date ASC, id ASC").Find(&exceptions).Error; err != nil {
		return nil, httperr.ErrStorage("load exceptions", err)
	}

	return BuildCalendar(hours, breaks, exceptions)
}

// --------------------------------------------------
// Roster / catalogue
// --------------------------------------------------

func (r *AppointmentGormRepository) ListActiveBarbers(
	ctx context.Context,
	barbershopID uint,
) ([]models.Barber, error) {

	var barbers []models.Barber
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND active = ?", barbershopID, true).
		Order("sort_order ASC, id ASC").
		Find(&barbers).Error; err != nil {
		return nil, httperr.ErrStorage("list barbers", err)
	}
	return barbers, nil
}

func (r *AppointmentGormRepository) GetBarber(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
) (*models.Barber, error) {

	var barber models.Barber
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", barberID, barbershopID).
		First(&barber).Error; err != nil {
		return nil, notFoundOr(err, httperr.ErrBarberNotFound, "get barber")
	}
	return &barber, nil
}

// GetServices returns the services in the order their IDs were given. A
// missing ID is an error.
func (r *AppointmentGormRepository) GetServices(
	ctx context.Context,
	barbershopID uint,
	serviceIDs []uint,
) ([]models.Service, error) {

	var found []models.Service
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND id IN ?", barbershopID, serviceIDs).
		Find(&found).Error; err != nil {
		return nil, httperr.ErrStorage("get services", err)
	}

	out := make([]models.Service, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		i := slices.IndexFunc(found, func(s models.Service) bool { return s.ID == id })
		if i < 0 {
			return nil, httperr.ErrBusinessf(httperr.CodeServiceNotFound, fmt.Sprintf("service %d", id))
		}
		out = append(out, found[i])
	}
	return out, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) FindClientByPhone(
	ctx context.Context,
	barbershopID uint,
	phone string,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", barbershopID, phone).
		First(&client).Error; err != nil {
		return nil, notFoundOr(err, httperr.ErrClientNotFound, "find client")
	}
	return &client, nil
}

func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	barbershopID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	client, err := r.FindClientByPhone(ctx, barbershopID, phone)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, httperr.ErrClientNotFound) {
		return nil, err
	}

	client = &models.Client{
		BarbershopID: barbershopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
	}
	// a savepoint keeps a unique violation from aborting an enclosing
	// postgres transaction
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(client).Error
	}); err != nil {
		// lost a race on the unique (barbershop, phone) index
		if existing, findErr := r.FindClientByPhone(ctx, barbershopID, phone); findErr == nil {
			return existing, nil
		}
		return nil, httperr.ErrStorage("create client", err)
	}

	return client, nil
}

// --------------------------------------------------
// Appointment (occupancy)
// --------------------------------------------------

func (r *AppointmentGormRepository) dayQuery(
	ctx context.Context,
	barbershopID uint,
	barberIDs []uint,
	date string,
) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("barbershop_id = ? AND barber_id IN ? AND date = ? AND status NOT IN ?",
			barbershopID, barberIDs, date, domain.ReleasedStatuses).
		Order("start_min ASC, id ASC")
}

func (r *AppointmentGormRepository) ListDayAppointments(
	ctx context.Context,
	barbershopID uint,
	barberIDs []uint,
	date string,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.dayQuery(ctx, barbershopID, barberIDs, date).
		Find(&apps).Error; err != nil {
		return nil, httperr.ErrStorage("list day appointments", err)
	}
	return apps, nil
}

func (r *AppointmentGormRepository) LockDayAppointments(
	ctx context.Context,
	barbershopID uint,
	barberIDs []uint,
	date string,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.dayQuery(ctx, barbershopID, barberIDs, date).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&apps).Error; err != nil {
		return nil, httperr.ErrStorage("lock day appointments", err)
	}
	return apps, nil
}

// ExpireLapsedHolds filters deadlines in Go so the comparison does not
// depend on how the dialect stores timestamps.
func (r *AppointmentGormRepository) ExpireLapsedHolds(
	ctx context.Context,
	barbershopID uint,
	barberIDs []uint,
	date string,
	now time.Time,
) ([]models.Appointment, error) {

	var holds []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND barber_id IN ? AND date = ? AND status = ?",
			barbershopID, barberIDs, date, string(domain.StatusAwaitingPayment)).
		Find(&holds).Error; err != nil {
		return nil, httperr.ErrStorage("find holds", err)
	}

	expired := make([]models.Appointment, 0, len(holds))
	for _, ap := range holds {
		if !domain.HoldLapsed(&ap, now) {
			continue
		}
		if err := domain.Expire(&ap, now); err != nil {
			return nil, err
		}
		expired = append(expired, ap)
	}

	if err := r.UpdateAppointments(ctx, expired); err != nil {
		return nil, err
	}
	return expired, nil
}

// --------------------------------------------------
// Appointment (create / state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointments(
	ctx context.Context,
	aps []*models.Appointment,
) error {
	if len(aps) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(aps).Error; err != nil {
		if httperr.IsExclusionConflict(err) {
			return httperr.ErrSlotNoLongerAvailable
		}
		return httperr.ErrStorage("create appointments", err)
	}
	return nil
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	barbershopID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", appointmentID, barbershopID).
		First(&ap).Error; err != nil {
		return nil, notFoundOr(err, httperr.ErrAppointmentNotFound, "get appointment")
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) GetAppointmentGroup(
	ctx context.Context,
	ap *models.Appointment,
) ([]models.Appointment, error) {

	if ap.GroupID == nil {
		return []models.Appointment{*ap}, nil
	}

	var group []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND group_id = ?", ap.BarbershopID, *ap.GroupID).
		Order("start_min ASC, id ASC").
		Find(&group).Error; err != nil {
		return nil, httperr.ErrStorage("get appointment group", err)
	}
	return group, nil
}

func (r *AppointmentGormRepository) UpdateAppointments(
	ctx context.Context,
	aps []models.Appointment,
) error {
	if len(aps) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range aps {
			if err := tx.Omit(clause.Associations).Save(&aps[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return httperr.ErrStorage("update appointments", err)
}

// ListLapsedHolds returns up to limit holds past their deadline, oldest
// first. Deadlines are stored in UTC so the bound works on every dialect.
func (r *AppointmentGormRepository) ListLapsedHolds(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Where("status = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ?",
			string(domain.StatusAwaitingPayment), now.UTC()).
		Order("hold_expires_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var holds []models.Appointment
	if err := q.Find(&holds).Error; err != nil {
		return nil, httperr.ErrStorage("list holds", err)
	}
	return holds, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	barbershopID uint,
	barberID *uint,
	fromDate string,
	toDate string,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Preload("Barber").
		Where("barbershop_id = ? AND date >= ? AND date <= ?", barbershopID, fromDate, toDate)

	if barberID != nil {
		q = q.Where("barber_id = ?", *barberID)
	}

	var apps []models.Appointment
	if err := q.Order("date ASC, start_min ASC, id ASC").Find(&apps).Error; err != nil {
		return nil, httperr.ErrStorage("list appointments", err)
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
