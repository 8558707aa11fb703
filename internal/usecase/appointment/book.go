package appointment

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/payment"
)

// ======================================================
// INPUT
// ======================================================

type BookInput struct {
	BarbershopID uint

	// BarberID nil means any barber will do.
	BarberID   *uint
	ServiceIDs []uint

	Date string
	Time string

	ClientName  string
	ClientPhone string
	ClientEmail string
	Notes       string

	// ActorID is set when the owner books from the back office.
	ActorID *uint
}

// ======================================================
// USE CASE
// ======================================================

// BookAppointment is the allocator: it re-validates the requested slot and
// writes the booking inside one critical section per (barbershop, barber,
// date), so two requests can never both win the same minutes.
type BookAppointment struct {
	Deps
}

func NewBookAppointment(d Deps) *BookAppointment {
	return &BookAppointment{Deps: d.withDefaults()}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookInput,
) (*dto.BookingDTO, error) {

	res, err := uc.execute(ctx, in)
	uc.Metrics.IncBooking(bookingOutcome(err))
	if errors.Is(err, httperr.ErrSlotNoLongerAvailable) || errors.Is(err, httperr.ErrNoBarberAvailable) {
		uc.Metrics.IncConflict()
	}
	return res, err
}

func (uc *BookAppointment) execute(
	ctx context.Context,
	in BookInput,
) (*dto.BookingDTO, error) {

	// --------------------------------------------------
	// 1️⃣ Request shape
	// --------------------------------------------------
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ClientPhone = strings.TrimSpace(in.ClientPhone)
	if in.ClientName == "" || in.ClientPhone == "" {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "client name and phone are required")
	}

	date, err := schedule.ParseDate(in.Date)
	if err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidSlot, "invalid date")
	}
	start, err := timewindow.ParseClock(in.Time)
	if err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidSlot, "invalid time")
	}

	// --------------------------------------------------
	// 2️⃣ Barbearia + serviços
	// --------------------------------------------------
	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	services, totalDuration, totalAmount, err := loadServices(ctx, uc.Repo, shop.ID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Candidate barbers
	// --------------------------------------------------
	var roster []models.Barber
	if in.BarberID != nil {
		barber, err := uc.Repo.GetBarber(ctx, shop.ID, *in.BarberID)
		if err != nil {
			return nil, err
		}
		if !barber.Active {
			return nil, httperr.ErrBusinessf(httperr.CodeBarberNotFound, "barber is not taking bookings")
		}
		roster = []models.Barber{*barber}
	} else {
		roster, err = uc.Repo.ListActiveBarbers(ctx, shop.ID)
		if err != nil {
			return nil, err
		}
		if len(roster) == 0 {
			return nil, httperr.ErrNoBarberAvailable
		}
	}

	// --------------------------------------------------
	// 4️⃣ Critical section
	// --------------------------------------------------
	release, keys, err := uc.lockDays(ctx, shop.ID, barberIDs(roster), date.String())
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		created []*models.Appointment
		expired []models.Appointment
		chosen  availability.BarberRef
	)

	err = uc.Repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockDays(ctx, keys); err != nil {
			return err
		}

		nowLocal, now := uc.now(shop)

		cal, err := tx.LoadCalendar(ctx, shop.ID)
		if err != nil {
			return err
		}

		step := shop.SlotStep()
		buffer := shop.Buffer()

		// barbers deactivated since the roster was read drop out here
		active, err := stillActive(ctx, tx, shop.ID, roster)
		if err != nil {
			return err
		}

		requested := schedule.Resolve(date, cal, in.BarberID)
		if !requested.Available {
			return httperr.ErrBusinessf(httperr.CodeDayClosed, requested.Reason)
		}

		ids := barberIDs(roster)

		expired, err = tx.ExpireLapsedHolds(ctx, shop.ID, ids, date.String(), nowLocal)
		if err != nil {
			return err
		}

		existing, err := tx.LockDayAppointments(ctx, shop.ID, ids, date.String())
		if err != nil {
			return err
		}
		busy, load := busyByBarber(existing, nowLocal)

		if in.BarberID != nil {
			if len(active) == 0 {
				return httperr.ErrBusinessf(httperr.CodeBarberNotFound, "barber is not taking bookings")
			}
			if !slices.Contains(availability.Candidates(requested, step, totalDuration, now, buffer), start) {
				return httperr.ErrBusinessf(httperr.CodeInvalidSlot, in.Time+" is not a bookable start")
			}
			if !availability.IsFree(start, totalDuration, busy[active[0].ID]) {
				return httperr.ErrSlotNoLongerAvailable
			}
			chosen = barberRef(active[0])
		} else {
			// same per-barber rule the availability read uses
			var (
				offered bool
				free    []availability.Candidate
			)
			for _, b := range active {
				day := schedule.Resolve(date, cal, &b.ID)
				if !day.Available {
					continue
				}
				if !slices.Contains(availability.Candidates(day, step, totalDuration, now, buffer), start) {
					continue
				}
				offered = true
				if availability.IsFree(start, totalDuration, busy[b.ID]) {
					free = append(free, availability.Candidate{Barber: barberRef(b), SortOrder: b.SortOrder})
				}
			}
			if !offered && len(active) > 0 {
				return httperr.ErrBusinessf(httperr.CodeInvalidSlot, in.Time+" is not a bookable start")
			}
			if chosen, err = availability.PickLeastBusy(free, load); err != nil {
				return err
			}
		}

		client, err := tx.GetOrCreateClient(ctx, shop.ID, in.ClientName, in.ClientPhone, in.ClientEmail)
		if err != nil {
			return err
		}

		created = buildAppointments(shop, in, chosen.ID, client.ID, date, start, services)
		return tx.CreateAppointments(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	uc.dispatchExpired(shop.ID, expired)

	// --------------------------------------------------
	// 5️⃣ Eventos
	// --------------------------------------------------
	apps := make([]models.Appointment, 0, len(created))
	for _, ap := range created {
		apps = append(apps, *ap)
	}

	first := apps[0]
	uc.Events.Dispatch(events.Event{
		Type:         events.TypeAppointmentCreated,
		BarbershopID: shop.ID,
		ActorID:      in.ActorID,
		Entity:       "appointment",
		EntityIDs:    appointmentIDs(apps),
		GroupID:      first.GroupID,
		ToStatus:     first.Status,
		Metadata: map[string]any{
			"barber_id": chosen.ID,
			"date":      first.Date,
			"time":      first.Time,
		},
	})

	uc.Log.Info().
		Uint("barbershop_id", shop.ID).
		Uint("barber_id", chosen.ID).
		Str("date", first.Date).
		Str("time", first.Time).
		Int("appointments", len(apps)).
		Msg("appointment booked")

	return &dto.BookingDTO{
		GroupID:          first.GroupID,
		Status:           first.Status,
		Date:             first.Date,
		Start:            first.Time,
		End:              timewindow.FormatClock(start + totalDuration),
		DurationMin:      totalDuration,
		TotalAmount:      totalAmount,
		Barber:           chosen,
		PaymentReference: payment.Reference(first.ID, first.GroupID),
		Appointments:     apps,
	}, nil
}

// buildAppointments lays the services out back to back from start. Two or
// more services share a group ID.
func buildAppointments(
	shop *models.Barbershop,
	in BookInput,
	barberID uint,
	clientID uint,
	date schedule.Date,
	start int,
	services []models.Service,
) []*models.Appointment {

	var groupID *string
	if len(services) > 1 {
		id := uuid.NewString()
		groupID = &id
	}

	status := domain.InitialStatus(shop.AutoConfirm || in.ActorID != nil)

	out := make([]*models.Appointment, 0, len(services))
	cursor := start
	for _, s := range services {
		out = append(out, &models.Appointment{
			BarbershopID: shop.ID,
			BarberID:     barberID,
			ClientID:     clientID,
			ServiceID:    s.ID,
			Date:         date.String(),
			Time:         timewindow.FormatClock(cursor),
			StartMin:     cursor,
			EndMin:       cursor + s.DurationMin,
			Price:        s.Price,
			Status:       string(status),
			GroupID:      groupID,
			Notes:        in.Notes,
		})
		cursor += s.DurationMin
	}
	return out
}

// stillActive re-reads the roster inside the transaction and keeps the
// barbers that are still active, in roster order.
func stillActive(
	ctx context.Context,
	tx domain.Repository,
	barbershopID uint,
	roster []models.Barber,
) ([]models.Barber, error) {

	current, err := tx.ListActiveBarbers(ctx, barbershopID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Barber, 0, len(roster))
	for _, b := range roster {
		i := slices.IndexFunc(current, func(c models.Barber) bool { return c.ID == b.ID })
		if i >= 0 {
			out = append(out, current[i])
		}
	}
	return out, nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, httperr.ErrSlotNoLongerAvailable):
		return "slot_taken"
	case errors.Is(err, httperr.ErrNoBarberAvailable):
		return "no_barber"
	case errors.Is(err, httperr.ErrLockTimeout):
		return "busy"
	case httperr.IsStorage(err):
		return "error"
	}
	return "rejected"
}
