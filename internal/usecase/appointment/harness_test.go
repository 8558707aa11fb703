package appointment

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/lock"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/testutil"
)

// Monday 2025-03-10, 08:00 UTC. Tests book on Tuesday 2025-03-11 unless
// they say otherwise.
var monday8am = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

const tuesday = "2025-03-11"

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Dispatch(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) ofType(typ string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, ev := range r.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, paymentID string, expectedRef string) error {
	return m.Called(ctx, paymentID, expectedRef).Error(0)
}

type harness struct {
	t      *testing.T
	db     *gorm.DB
	salon  testutil.Salon
	deps   Deps
	events *recorder

	mu  sync.Mutex
	now time.Time
}

func newHarness(t *testing.T, barbers ...string) *harness {
	t.Helper()

	gdb := testutil.NewDB(t)
	logger := zerolog.New(io.Discard)

	h := &harness{
		t:      t,
		db:     gdb,
		salon:  testutil.SeedSalon(t, gdb, "centro", barbers...),
		events: &recorder{},
		now:    monday8am,
	}
	h.deps = Deps{
		Repo:   repository.NewAppointmentGormRepository(gdb),
		Locker: lock.NewLocalLocker(5 * time.Second),
		Events: h.events,
		Log:    &logger,
		Clock:  h.clock,
	}
	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func (h *harness) barber(i int) *uint {
	return testutil.Ptr(h.salon.Barbers[i].ID)
}

func (h *harness) services(keys ...string) []uint {
	ids := make([]uint, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, h.salon.Services[k].ID)
	}
	return ids
}

func (h *harness) bookInput(barberID *uint, date, at string, services ...string) BookInput {
	return BookInput{
		BarbershopID: h.salon.Shop.ID,
		BarberID:     barberID,
		ServiceIDs:   h.services(services...),
		Date:         date,
		Time:         at,
		ClientName:   "João",
		ClientPhone:  "+55 11 99999-0000",
	}
}

func (h *harness) book(barberID *uint, date, at string, services ...string) (*dto.BookingDTO, error) {
	return NewBookAppointment(h.deps).Execute(context.Background(), h.bookInput(barberID, date, at, services...))
}

func (h *harness) mustBook(barberID *uint, date, at string, services ...string) *dto.BookingDTO {
	h.t.Helper()
	res, err := h.book(barberID, date, at, services...)
	require.NoError(h.t, err)
	return res
}

func (h *harness) availability(barberID *uint, date string, services ...string) *dto.AvailabilityDTO {
	h.t.Helper()
	res, err := NewGetAvailability(h.deps, nil).Execute(context.Background(), AvailabilityInput{
		BarbershopID: h.salon.Shop.ID,
		Date:         date,
		BarberID:     barberID,
		ServiceIDs:   h.services(services...),
	})
	require.NoError(h.t, err)
	return res
}

func (h *harness) reload(id uint) models.Appointment {
	h.t.Helper()
	var ap models.Appointment
	require.NoError(h.t, h.db.First(&ap, id).Error)
	return ap
}

func (h *harness) owner() uint {
	return 99
}
