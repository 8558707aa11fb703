package appointment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/testutil"
)

func TestBook_PinnedBarber(t *testing.T) {
	h := newHarness(t, "Ana")

	res := h.mustBook(h.barber(0), tuesday, "10:00", "corte")

	assert.Equal(t, string(domain.StatusPending), res.Status)
	assert.Equal(t, "10:00", res.Start)
	assert.Equal(t, "10:30", res.End)
	assert.Equal(t, 30, res.DurationMin)
	assert.True(t, res.TotalAmount.Equal(decimal.RequireFromString("35")))
	assert.Equal(t, h.salon.Barbers[0].ID, res.Barber.ID)
	assert.Nil(t, res.GroupID)
	require.Len(t, res.Appointments, 1)
	assert.Equal(t, fmt.Sprintf("appointment:%d", res.Appointments[0].ID), res.PaymentReference)

	created := h.events.ofType(events.TypeAppointmentCreated)
	require.Len(t, created, 1)
	assert.Equal(t, []uint{res.Appointments[0].ID}, created[0].EntityIDs)
}

func TestBook_OwnerBookingIsConfirmed(t *testing.T) {
	h := newHarness(t, "Ana")

	in := h.bookInput(h.barber(0), tuesday, "10:00", "corte")
	in.ActorID = testutil.Ptr(h.owner())

	res, err := NewBookAppointment(h.deps).Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), res.Status)
}

func TestBook_RejectsTakenMinutes(t *testing.T) {
	h := newHarness(t, "Ana")
	h.mustBook(h.barber(0), tuesday, "10:00", "corte")

	_, err := h.book(h.barber(0), tuesday, "10:00", "corte")
	assert.ErrorIs(t, err, httperr.ErrSlotNoLongerAvailable)

	// 09:30-10:30 runs into the 10:00 booking
	_, err = h.book(h.barber(0), tuesday, "09:30", "combo")
	assert.ErrorIs(t, err, httperr.ErrSlotNoLongerAvailable)

	// touching end points are fine
	h.mustBook(h.barber(0), tuesday, "10:30", "corte")
	h.mustBook(h.barber(0), tuesday, "09:30", "corte")
}

func TestBook_ConcurrentRequestsForOneSlot(t *testing.T) {
	h := newHarness(t, "Ana")

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := h.bookInput(h.barber(0), tuesday, "10:00", "corte")
			in.ClientPhone = fmt.Sprintf("+55 11 90000-%04d", i)
			_, err := NewBookAppointment(h.deps).Execute(context.Background(), in)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	for _, err := range errs {
		assert.ErrorIs(t, err, httperr.ErrSlotNoLongerAvailable)
	}

	var count int64
	require.NoError(t, h.db.Model(&models.Appointment{}).
		Where("barber_id = ? AND date = ?", h.salon.Barbers[0].ID, tuesday).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBook_ConcurrentAnyBarberFillsEachBarberOnce(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")

	const n = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uint
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := h.bookInput(nil, tuesday, "10:00", "corte")
			in.ClientPhone = fmt.Sprintf("+55 11 91000-%04d", i)
			res, err := NewBookAppointment(h.deps).Execute(context.Background(), in)
			if err != nil {
				assert.ErrorIs(t, err, httperr.ErrNoBarberAvailable)
				return
			}
			mu.Lock()
			winners = append(winners, res.Barber.ID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []uint{h.salon.Barbers[0].ID, h.salon.Barbers[1].ID}, winners)
}

func TestBook_LunchBreakBlocksLongServices(t *testing.T) {
	h := newHarness(t, "Ana")

	av := h.availability(h.barber(0), tuesday, "combo")
	assert.True(t, av.Available)
	assert.Contains(t, av.Slots, "11:00")
	assert.NotContains(t, av.Slots, "11:30")
	assert.NotContains(t, av.Slots, "12:00")
	assert.NotContains(t, av.Slots, "12:30")
	assert.Contains(t, av.Slots, "13:00")
	assert.Equal(t, "17:00", av.Slots[len(av.Slots)-1])
	assert.Equal(t, 60, av.DurationMin)

	_, err := h.book(h.barber(0), tuesday, "11:30", "combo")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)

	_, err = h.book(h.barber(0), tuesday, "17:30", "combo")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)

	// a 30 minute service still fits right before lunch
	h.mustBook(h.barber(0), tuesday, "11:30", "corte")
}

func TestBook_OffGridStartIsInvalid(t *testing.T) {
	h := newHarness(t, "Ana")

	_, err := h.book(h.barber(0), tuesday, "10:15", "corte")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)

	_, err = h.book(h.barber(0), tuesday, "08:30", "corte")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)
}

func TestBook_ClosedDay(t *testing.T) {
	h := newHarness(t, "Ana")
	const sunday = "2025-03-16"

	_, err := h.book(h.barber(0), sunday, "10:00", "corte")
	assert.ErrorIs(t, err, httperr.ErrDayClosed)

	av := h.availability(h.barber(0), sunday, "corte")
	assert.False(t, av.Available)
	assert.NotEmpty(t, av.Reason)
	assert.Empty(t, av.Slots)
}

func TestBook_RejectsBadInput(t *testing.T) {
	h := newHarness(t, "Ana")
	uc := NewBookAppointment(h.deps)
	ctx := context.Background()

	in := h.bookInput(h.barber(0), tuesday, "10:00", "corte")
	in.ClientPhone = "  "
	_, err := uc.Execute(ctx, in)
	assert.ErrorIs(t, err, httperr.ErrInvalidInput)

	in = h.bookInput(h.barber(0), tuesday, "10:00", "corte", "corte")
	_, err = uc.Execute(ctx, in)
	assert.ErrorIs(t, err, httperr.ErrInvalidInput)

	in = h.bookInput(h.barber(0), tuesday, "10:00")
	_, err = uc.Execute(ctx, in)
	assert.ErrorIs(t, err, httperr.ErrInvalidInput)

	in = h.bookInput(h.barber(0), tuesday, "10:00", "corte")
	in.ServiceIDs = []uint{9999}
	_, err = uc.Execute(ctx, in)
	assert.ErrorIs(t, err, httperr.ErrServiceNotFound)

	in = h.bookInput(testutil.Ptr(uint(9999)), tuesday, "10:00", "corte")
	_, err = uc.Execute(ctx, in)
	assert.ErrorIs(t, err, httperr.ErrBarberNotFound)

	in = h.bookInput(h.barber(0), "11/03/2025", "10:00", "corte")
	_, err = uc.Execute(ctx, in)
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)
}

func TestBook_TodayHonoursBuffer(t *testing.T) {
	h := newHarness(t, "Ana")
	h.now = time.Date(2025, 3, 11, 10, 10, 0, 0, time.UTC)

	av := h.availability(h.barber(0), tuesday, "corte")
	require.NotEmpty(t, av.Slots)
	assert.Equal(t, "11:00", av.Slots[0])

	_, err := h.book(h.barber(0), tuesday, "10:30", "corte")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)

	// yesterday is gone entirely
	_, err = h.book(h.barber(0), "2025-03-10", "15:00", "corte")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)
	assert.Empty(t, h.availability(h.barber(0), "2025-03-10", "corte").Slots)

	h.mustBook(h.barber(0), tuesday, "11:00", "corte")
}

func TestBook_AnyBarberSkipsBusyBarbers(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")
	ana, bruno := h.salon.Barbers[0].ID, h.salon.Barbers[1].ID

	h.mustBook(h.barber(0), tuesday, "10:00", "corte")

	av := h.availability(nil, tuesday, "corte")
	assert.Contains(t, av.Slots, "10:00")
	for _, g := range av.AllSlots {
		switch g.Time {
		case "10:00":
			require.Len(t, g.AvailableBarbers, 1)
			assert.Equal(t, bruno, g.AvailableBarbers[0].ID)
		case "10:30":
			assert.Len(t, g.AvailableBarbers, 2)
		}
	}

	res := h.mustBook(nil, tuesday, "10:00", "corte")
	assert.Equal(t, bruno, res.Barber.ID)

	_, err := h.book(nil, tuesday, "10:00", "corte")
	assert.ErrorIs(t, err, httperr.ErrNoBarberAvailable)

	av = h.availability(nil, tuesday, "corte")
	assert.NotContains(t, av.Slots, "10:00")

	res = h.mustBook(nil, tuesday, "10:30", "corte")
	assert.Equal(t, ana, res.Barber.ID)
}

func TestBook_AnyBarberPicksLeastBusy(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")
	ana, bruno := h.salon.Barbers[0].ID, h.salon.Barbers[1].ID

	h.mustBook(h.barber(0), tuesday, "09:00", "corte")
	h.mustBook(h.barber(0), tuesday, "09:30", "corte")
	h.mustBook(h.barber(1), tuesday, "09:00", "corte")

	res := h.mustBook(nil, tuesday, "15:00", "corte")
	assert.Equal(t, bruno, res.Barber.ID)

	// two each now: the roster order breaks the tie
	res = h.mustBook(nil, tuesday, "16:00", "corte")
	assert.Equal(t, ana, res.Barber.ID)
}

func TestBook_BarberOnVacation(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")
	ana, bruno := h.salon.Barbers[0].ID, h.salon.Barbers[1].ID

	require.NoError(t, h.db.Create(&models.ScheduleException{
		BarbershopID:  h.salon.Shop.ID,
		BarberID:      &bruno,
		StartDate:     "2025-03-10",
		EndDate:       "2025-03-14",
		ExceptionType: "vacation",
		Reason:        "férias",
	}).Error)

	_, err := h.book(h.barber(1), tuesday, "10:00", "corte")
	assert.ErrorIs(t, err, httperr.ErrDayClosed)

	h.mustBook(h.barber(0), tuesday, "09:00", "corte")
	res := h.mustBook(nil, tuesday, "15:00", "corte")
	assert.Equal(t, ana, res.Barber.ID)

	av := h.availability(nil, tuesday, "corte")
	for _, g := range av.AllSlots {
		for _, b := range g.AvailableBarbers {
			assert.NotEqual(t, bruno, b.ID)
		}
	}
}

func TestBook_GroupBookingIsContiguous(t *testing.T) {
	h := newHarness(t, "Ana")

	res := h.mustBook(h.barber(0), tuesday, "14:00", "corte", "barba")

	require.NotNil(t, res.GroupID)
	assert.Equal(t, "group:"+*res.GroupID, res.PaymentReference)
	assert.Equal(t, "15:00", res.End)
	assert.Equal(t, 60, res.DurationMin)
	assert.True(t, res.TotalAmount.Equal(decimal.RequireFromString("60")))

	require.Len(t, res.Appointments, 2)
	assert.Equal(t, "14:00", res.Appointments[0].Time)
	assert.Equal(t, "14:30", res.Appointments[1].Time)
	assert.Equal(t, res.Appointments[0].EndMin, res.Appointments[1].StartMin)
	for _, ap := range res.Appointments {
		assert.Equal(t, *res.GroupID, *ap.GroupID)
	}

	av := h.availability(h.barber(0), tuesday, "corte")
	assert.NotContains(t, av.Slots, "14:00")
	assert.NotContains(t, av.Slots, "14:30")
	assert.Contains(t, av.Slots, "13:30")
	assert.Contains(t, av.Slots, "15:00")

	// two services starting at 11:30 would run into lunch
	_, err := h.book(h.barber(0), tuesday, "11:30", "corte", "barba")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)
}

func TestBook_BookingNeverAddsSlots(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")

	before := h.availability(nil, tuesday, "combo").Slots
	h.mustBook(h.barber(0), tuesday, "10:00", "combo")
	h.mustBook(h.barber(1), tuesday, "10:30", "corte")
	after := h.availability(nil, tuesday, "combo").Slots

	assert.Subset(t, before, after)
	assert.NotContains(t, after, "10:00")
}

func TestBook_AnyBarberSpreadsLoadEvenly(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")
	ana, bruno := h.salon.Barbers[0].ID, h.salon.Barbers[1].ID

	count := map[uint]int{}
	for _, at := range []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "13:00", "13:30"} {
		res := h.mustBook(nil, tuesday, at, "corte")
		count[res.Barber.ID]++

		diff := count[ana] - count[bruno]
		assert.LessOrEqual(t, diff, 1, at)
		assert.GreaterOrEqual(t, diff, -1, at)
	}
	assert.Equal(t, 4, count[ana])
	assert.Equal(t, 4, count[bruno])
}

func TestBook_AnyBarberMatchesBarberSpecialHours(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")
	ana := h.salon.Barbers[0].ID

	require.NoError(t, h.db.Create(&models.ScheduleException{
		BarbershopID:     h.salon.Shop.ID,
		BarberID:         &ana,
		StartDate:        tuesday,
		EndDate:          tuesday,
		ExceptionType:    "special_hours",
		SpecialStartTime: "07:00",
		SpecialEndTime:   "11:00",
	}).Error)

	av := h.availability(nil, tuesday, "corte")
	require.Contains(t, av.Slots, "07:00")
	for _, g := range av.AllSlots {
		if g.Time == "07:00" {
			require.Len(t, g.AvailableBarbers, 1)
			assert.Equal(t, ana, g.AvailableBarbers[0].ID)
		}
	}

	res := h.mustBook(nil, tuesday, "07:00", "corte")
	assert.Equal(t, ana, res.Barber.ID)

	// nobody works 07:30 but Ana, and she is taken now
	h.mustBook(h.barber(0), tuesday, "07:30", "corte")
	_, err := h.book(nil, tuesday, "07:30", "corte")
	assert.ErrorIs(t, err, httperr.ErrNoBarberAvailable)

	// no barber offers an off-grid start
	_, err = h.book(nil, tuesday, "10:15", "corte")
	assert.ErrorIs(t, err, httperr.ErrInvalidSlot)
}

func TestBook_RejectedBookingLeavesLapsedHoldForTheSweep(t *testing.T) {
	h := newHarness(t, "Ana")
	held := h.mustBook(h.barber(0), tuesday, "10:00", "corte").Appointments[0].ID
	h.mustBook(h.barber(0), tuesday, "11:00", "corte")
	h.requestPayment(held)

	h.advance(20 * time.Minute)

	_, err := h.book(h.barber(0), tuesday, "11:00", "corte")
	require.ErrorIs(t, err, httperr.ErrSlotNoLongerAvailable)

	expiredEvents := func() int {
		n := 0
		for _, ev := range h.events.ofType(events.TypeAppointmentStatusChanged) {
			if ev.ToStatus == string(domain.StatusExpired) {
				n++
			}
		}
		return n
	}
	assert.Zero(t, expiredEvents())
	assert.Equal(t, string(domain.StatusAwaitingPayment), h.reload(held).Status)

	n, err := NewSweepExpiredHolds(h.deps).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, expiredEvents())
	assert.Equal(t, string(domain.StatusExpired), h.reload(held).Status)
}

func TestBook_RejectedBookingCreatesNoClient(t *testing.T) {
	h := newHarness(t, "Ana")
	h.mustBook(h.barber(0), tuesday, "10:00", "corte")

	in := h.bookInput(h.barber(0), tuesday, "10:00", "corte")
	in.ClientPhone = "+55 11 95555-0000"
	_, err := NewBookAppointment(h.deps).Execute(context.Background(), in)
	require.ErrorIs(t, err, httperr.ErrSlotNoLongerAvailable)

	var clients int64
	require.NoError(t, h.db.Model(&models.Client{}).
		Where("barbershop_id = ? AND phone = ?", h.salon.Shop.ID, in.ClientPhone).
		Count(&clients).Error)
	assert.Zero(t, clients)
}

// deactivatingRepo switches a barber off just before the booking
// transaction opens, after the roster has been read.
type deactivatingRepo struct {
	domain.Repository
	db       *gorm.DB
	barberID uint
}

func (r deactivatingRepo) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	if err := r.db.Model(&models.Barber{}).Where("id = ?", r.barberID).Update("active", false).Error; err != nil {
		return err
	}
	return r.Repository.Transaction(ctx, fn)
}

func TestBook_SkipsBarberDeactivatedMidRequest(t *testing.T) {
	h := newHarness(t, "Ana", "Bruno")
	ana, bruno := h.salon.Barbers[0].ID, h.salon.Barbers[1].ID

	deps := h.deps
	deps.Repo = deactivatingRepo{Repository: h.deps.Repo, db: h.db, barberID: ana}
	uc := NewBookAppointment(deps)

	res, err := uc.Execute(context.Background(), h.bookInput(nil, tuesday, "10:00", "corte"))
	require.NoError(t, err)
	assert.Equal(t, bruno, res.Barber.ID)

	require.NoError(t, h.db.Model(&models.Barber{}).Where("id = ?", ana).Update("active", true).Error)
	_, err = uc.Execute(context.Background(), h.bookInput(h.barber(0), tuesday, "11:00", "corte"))
	assert.ErrorIs(t, err, httperr.ErrBarberNotFound)
}
