package appointment

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/lock"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// Deps is the infrastructure every appointment use case shares.
type Deps struct {
	Repo    domain.Repository
	Locker  lock.Locker
	Events  events.Publisher
	Log     *zerolog.Logger
	Metrics *metrics.Metrics
	Clock   timezone.Clock
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Log == nil {
		nop := zerolog.Nop()
		d.Log = &nop
	}
	if d.Clock == nil {
		d.Clock = timezone.SystemClock
	}
	return d
}

// now returns the salon's local instant and its reduction to a civil date
// and minute.
func (d Deps) now(shop *models.Barbershop) (time.Time, availability.Now) {
	local := d.Clock.In(shop.Timezone)
	return local, availability.NowAt(local)
}

// lockDays takes the booking locks for the given barbers on date, in
// ascending barber ID order.
func (d Deps) lockDays(ctx context.Context, barbershopID uint, barberIDs []uint, date string) (func(), []domain.DayKey, error) {
	ids := slices.Clone(barberIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	keys := make([]domain.DayKey, 0, len(ids))
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		k := domain.DayKey{BarbershopID: barbershopID, BarberID: id, Date: date}
		keys = append(keys, k)
		names = append(names, k.String())
	}

	started := time.Now()
	release, err := d.Locker.Acquire(ctx, names)
	d.Metrics.ObserveLockWait(time.Since(started).Seconds())
	if err != nil {
		return nil, nil, err
	}
	return release, keys, nil
}

// loadServices fetches the requested services, all active and owned by
// the salon, and sums their duration and price.
func loadServices(
	ctx context.Context,
	repo domain.Repository,
	barbershopID uint,
	serviceIDs []uint,
) ([]models.Service, int, decimal.Decimal, error) {

	if len(serviceIDs) == 0 {
		return nil, 0, decimal.Zero, httperr.ErrBusinessf(httperr.CodeInvalidInput, "at least one service is required")
	}
	seen := map[uint]bool{}
	for _, id := range serviceIDs {
		if seen[id] {
			return nil, 0, decimal.Zero, httperr.ErrBusinessf(httperr.CodeInvalidInput, "services must not repeat")
		}
		seen[id] = true
	}

	services, err := repo.GetServices(ctx, barbershopID, serviceIDs)
	if err != nil {
		return nil, 0, decimal.Zero, err
	}

	total := 0
	amount := decimal.Zero
	for _, s := range services {
		if !s.Active || s.DurationMin <= 0 {
			return nil, 0, decimal.Zero, httperr.ErrBusinessf(httperr.CodeServiceNotFound, s.Name+" is not bookable")
		}
		total += s.DurationMin
		amount = amount.Add(s.Price)
	}
	return services, total, amount, nil
}

// busyByBarber groups the intervals blocking each barber at now.
func busyByBarber(aps []models.Appointment, now time.Time) (map[uint][]timewindow.Interval, map[uint]int) {
	busy := map[uint][]timewindow.Interval{}
	load := map[uint]int{}
	for i := range aps {
		ap := &aps[i]
		if !domain.BlocksSlot(ap, now) {
			continue
		}
		busy[ap.BarberID] = append(busy[ap.BarberID], timewindow.Interval{Start: ap.StartMin, End: ap.EndMin})
		load[ap.BarberID]++
	}
	return busy, load
}

func barberIDs(barbers []models.Barber) []uint {
	ids := make([]uint, 0, len(barbers))
	for _, b := range barbers {
		ids = append(ids, b.ID)
	}
	return ids
}

func barberRef(b models.Barber) availability.BarberRef {
	return availability.BarberRef{ID: b.ID, Name: b.Name}
}

func appointmentIDs(aps []models.Appointment) []uint {
	ids := make([]uint, 0, len(aps))
	for _, ap := range aps {
		ids = append(ids, ap.ID)
	}
	return ids
}

// dispatchExpired reports holds released on access.
func (d Deps) dispatchExpired(barbershopID uint, expired []models.Appointment) {
	if len(expired) == 0 {
		return
	}
	d.Metrics.AddHoldsExpired(len(expired))
	d.Events.Dispatch(events.Event{
		Type:         events.TypeAppointmentStatusChanged,
		BarbershopID: barbershopID,
		Entity:       "appointment",
		EntityIDs:    appointmentIDs(expired),
		FromStatus:   string(domain.StatusAwaitingPayment),
		ToStatus:     string(domain.StatusExpired),
	})
}

// asSeenAt reports holds whose deadline passed as EXPIRADA without
// writing them; the sweep catches storage up later.
func asSeenAt(aps []models.Appointment, now time.Time) []models.Appointment {
	for i := range aps {
		if domain.HoldLapsed(&aps[i], now) {
			aps[i].Status = string(domain.StatusExpired)
		}
	}
	return aps
}
