package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/cache"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	infraRepo "github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/lock"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/payment"
	"github.com/BruksfildServices01/barbershop-booking/internal/testutil"
	ucAppointment "github.com/BruksfildServices01/barbershop-booking/internal/usecase/appointment"
)

const testSecret = "test-secret"

// Monday 2025-03-10 08:00 UTC; requests book the following Tuesday.
var fixedNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type api struct {
	router *gin.Engine
	salon  testutil.Salon
	rdb    *redis.Client
}

func newAPI(t *testing.T, limiter *middleware.RateLimiter) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	salon := testutil.SeedSalon(t, db, "navalha", "Ana", "Bruno")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zerolog.New(io.Discard)
	dispatcher := events.NewDispatcher(&log, 100, audit.New(db))
	t.Cleanup(dispatcher.Close)

	reg := prometheus.NewRegistry()
	repo := infraRepo.NewAppointmentGormRepository(db)

	r := gin.New()
	RegisterRoutes(r, &config.Config{JWTSecret: testSecret}, Infra{
		DB:  db,
		Log: &log,
		Engine: ucAppointment.Deps{
			Repo:    repo,
			Locker:  lock.NewLocalLocker(2 * time.Second),
			Events:  dispatcher,
			Log:     &log,
			Metrics: metrics.New(reg),
			Clock:   func() time.Time { return fixedNow },
		},
		Repo:      repo,
		Calendars: cache.NewScheduleCache(rdb, repo, time.Minute, &log),
		Payments:  payment.Disabled{},
		Limiter:   limiter,
		Registry:  reg,
	})

	return &api{router: r, salon: salon, rdb: rdb}
}

func (a *api) token(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          1,
		"barbershopId": a.salon.Shop.ID,
		"role":         "owner",
		"exp":          time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *api) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Code string `json:"error_code"`
}

type availabilityBody struct {
	Available bool     `json:"available"`
	DayType   string   `json:"day_type"`
	Slots     []string `json:"slots"`
}

func (a *api) bookingBody(barberID uint, at string) map[string]any {
	return map[string]any{
		"client_name":  "Carlos",
		"client_phone": "(11) 98765-4321",
		"barber_id":    barberID,
		"service_ids":  []uint{a.salon.Services["corte"].ID},
		"date":         "2025-03-11",
		"time":         at,
	}
}

func TestHealth(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicBarbershop(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/public/navalha", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Barbers  []map[string]any `json:"barbers"`
		Services []map[string]any `json:"services"`
	}](t, w)
	assert.Len(t, body.Barbers, 2)
	assert.Len(t, body.Services, 3)

	w = a.do(t, http.MethodGet, "/api/public/nao-existe", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "barbershop_not_found", decode[errorBody](t, w).Code)
}

func TestPublicBookingFlow(t *testing.T) {
	a := newAPI(t, nil)
	ana := a.salon.Barbers[0].ID
	availabilityURL := fmt.Sprintf("/api/public/navalha/availability?date=2025-03-11&barber_id=%d&service_ids=%d",
		ana, a.salon.Services["corte"].ID)

	w := a.do(t, http.MethodGet, availabilityURL, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[availabilityBody](t, w).Slots, "10:00")

	w = a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "10:00"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "10:00"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "slot_no_longer_available", decode[errorBody](t, w).Code)

	w = a.do(t, http.MethodGet, availabilityURL, nil, "")
	assert.NotContains(t, decode[availabilityBody](t, w).Slots, "10:00")
}

func TestPublicBookingValidation(t *testing.T) {
	a := newAPI(t, nil)
	ana := a.salon.Barbers[0].ID

	body := a.bookingBody(ana, "10:00")
	body["client_phone"] = "123"
	w := a.do(t, http.MethodPost, "/api/public/navalha/appointments", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_phone", decode[errorBody](t, w).Code)

	w = a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "10:07"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/public/navalha/availability?date=2025-03-11", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicCancelByPhone(t *testing.T) {
	a := newAPI(t, nil)
	ana := a.salon.Barbers[0].ID

	w := a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "11:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	booking := decode[struct {
		Appointments []struct {
			ID uint `json:"id"`
		} `json:"appointments"`
	}](t, w)
	require.Len(t, booking.Appointments, 1)
	path := fmt.Sprintf("/api/public/navalha/appointments/%d/cancel", booking.Appointments[0].ID)

	w = a.do(t, http.MethodPost, path, map[string]string{"client_phone": "11 91111-1111"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, path, map[string]string{"client_phone": "11987654321"}, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "11:00"), "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPublicDayStatus(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/public/navalha/day-status?from=2025-03-15&to=2025-03-16", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Days []struct {
			Date      string `json:"date"`
			Available bool   `json:"available"`
		} `json:"days"`
	}](t, w)
	require.Len(t, body.Days, 2)
	assert.True(t, body.Days[0].Available)
	assert.False(t, body.Days[1].Available)

	w = a.do(t, http.MethodGet, "/api/public/navalha/day-status?from=2025-03-16&to=2025-03-15", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/me/barbers", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/api/me/barbers", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 1, "barbershopId": a.salon.Shop.ID, "exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	w = a.do(t, http.MethodGet, "/api/me/barbers", nil, signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/api/me/barbers", nil, a.token(t))
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Total int `json:"total"`
	}](t, w)
	assert.Equal(t, 2, list.Total)
}

func TestOwnerBookingAndLifecycle(t *testing.T) {
	a := newAPI(t, nil)
	tok := a.token(t)
	bruno := a.salon.Barbers[1].ID

	w := a.do(t, http.MethodPost, "/api/me/appointments", a.bookingBody(bruno, "14:00"), tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[struct {
		Status       string `json:"status"`
		Appointments []struct {
			ID uint `json:"id"`
		} `json:"appointments"`
	}](t, w)
	assert.Equal(t, "CONFIRMADA", booking.Status)

	w = a.do(t, http.MethodGet, "/api/me/appointments?date=2025-03-11", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "14:00")

	id := booking.Appointments[0].ID
	w = a.do(t, http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/complete", id), nil, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code, "cannot complete before it starts")

	w = a.do(t, http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/cancel", id), map[string]string{"reason": "cliente pediu"}, tok)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/me/audit-logs?entity=appointment", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)

		var page struct {
			Total int `json:"total"`
		}
		return w.Code == http.StatusOK && json.Unmarshal(w.Body.Bytes(), &page) == nil && page.Total >= 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestScheduleWriteInvalidatesCache(t *testing.T) {
	a := newAPI(t, nil)
	tok := a.token(t)
	url := fmt.Sprintf("/api/public/navalha/availability?date=2025-03-11&service_ids=%d", a.salon.Services["corte"].ID)

	w := a.do(t, http.MethodGet, url, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decode[availabilityBody](t, w).Available)

	keys := a.rdb.Keys(t.Context(), "schedule:calendar:*").Val()
	require.Len(t, keys, 1, "calendar cached after first read")

	w = a.do(t, http.MethodPost, "/api/me/schedule/exceptions", map[string]any{
		"start_date":     "2025-03-11",
		"exception_type": "holiday",
		"reason":         "Feriado municipal",
	}, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, url, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[availabilityBody](t, w)
	assert.False(t, body.Available)
	assert.Equal(t, "holiday", body.DayType)
	assert.Empty(t, body.Slots)
}

func TestScheduleWriteValidation(t *testing.T) {
	a := newAPI(t, nil)
	tok := a.token(t)

	w := a.do(t, http.MethodPut, "/api/me/schedule/business-hours", map[string]any{
		"days": []map[string]any{
			{"weekday": 1, "is_active": true, "start_time": "18:00", "end_time": "09:00"},
		},
	}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPut, "/api/me/schedule/business-hours", map[string]any{
		"days": []map[string]any{
			{"weekday": 1, "is_active": true, "start_time": "09:00", "end_time": "12:00"},
			{"weekday": 1, "is_active": true, "start_time": "13:00", "end_time": "18:00"},
		},
	}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/me/schedule/breaks", map[string]any{
		"name":            "Café",
		"start_time":      "15:00",
		"end_time":        "15:15",
		"recurrence_type": "weekly",
	}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code, "weekly break without a weekday")

	w = a.do(t, http.MethodPost, "/api/me/schedule/exceptions", map[string]any{
		"start_date":     "2025-03-11",
		"exception_type": "special_hours",
	}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code, "special hours need a window")
}

func TestPublicRateLimit(t *testing.T) {
	a := newAPI(t, middleware.NewRateLimiter(0.001, 1))
	ana := a.salon.Barbers[0].ID

	w := a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "09:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "09:30"), "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = a.do(t, http.MethodGet, "/api/public/navalha", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "reads are not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t, nil)
	ana := a.salon.Barbers[0].ID

	a.do(t, http.MethodPost, "/api/public/navalha/appointments", a.bookingBody(ana, "09:00"), "")

	w := a.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "barbershop_bookings_total")
}
