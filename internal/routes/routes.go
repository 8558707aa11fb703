package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/cache"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/payment"
	ucAppointment "github.com/BruksfildServices01/barbershop-booking/internal/usecase/appointment"
)

// Infra is what main builds once and every route shares.
type Infra struct {
	DB        *gorm.DB
	Log       *zerolog.Logger
	Engine    ucAppointment.Deps
	Repo      *infraRepo.AppointmentGormRepository
	Calendars *cache.ScheduleCache
	Payments  payment.Verifier
	Limiter   *middleware.RateLimiter
	Registry  *prometheus.Registry
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, in Infra) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(in.Log))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if in.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(in.Registry, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	d := in.Engine

	dayStatusUC := ucAppointment.NewResolveDayStatus(d, in.Calendars)
	availabilityUC := ucAppointment.NewGetAvailability(d, in.Calendars)
	bookUC := ucAppointment.NewBookAppointment(d)
	confirmUC := ucAppointment.NewConfirmPayment(d, in.Payments)
	cancelUC := ucAppointment.NewCancelAppointment(d)

	appointmentUC := handlers.AppointmentUseCases{
		Book:     bookUC,
		Respond:  ucAppointment.NewRespondAppointment(d),
		Cancel:   cancelUC,
		Complete: ucAppointment.NewCompleteAppointment(d),
		ByDate:   ucAppointment.NewListAppointmentsByDate(d),
		ByMonth:  ucAppointment.NewListAppointmentsByMonth(d),
	}

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	publicHandler := handlers.NewPublicHandler(in.DB, dayStatusUC, availabilityUC, bookUC, confirmUC, cancelUC)

	meHandler := handlers.NewMeHandler(in.Repo)
	barbershopHandler := handlers.NewBarbershopHandler(in.DB)
	barberHandler := handlers.NewBarberHandler(in.DB)
	serviceHandler := handlers.NewServiceHandler(in.DB)
	clientHandler := handlers.NewClientHandler(in.DB)
	scheduleHandler := handlers.NewScheduleHandler(in.DB, in.Calendars, d.Events)
	appointmentHandler := handlers.NewAppointmentHandler(in.Repo, d.Clock, appointmentUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(in.DB)

	limited := func(c *gin.Context) { c.Next() }
	if in.Limiter != nil {
		limited = in.Limiter.Middleware(in.Log)
	}

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public/:slug")
		{
			publicAPI.GET("", publicHandler.GetBarbershop)
			publicAPI.GET("/day-status", publicHandler.DayStatus)
			publicAPI.GET("/availability", publicHandler.Availability)
			publicAPI.POST("/appointments", limited, publicHandler.CreateAppointment)
			publicAPI.POST("/appointments/confirm-payment", limited, publicHandler.ConfirmPayment)
			publicAPI.POST("/appointments/:id/cancel", limited, publicHandler.CancelAppointment)
		}

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/barbershop", barbershopHandler.GetMeBarbershop)
			secured.PATCH("/me/barbershop", barbershopHandler.UpdateMeBarbershop)

			secured.GET("/me/barbers", barberHandler.List)
			secured.POST("/me/barbers", barberHandler.Create)
			secured.PATCH("/me/barbers/:id", barberHandler.Update)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/clients", clientHandler.List)

			// ------------------------------
			// SCHEDULE
			// ------------------------------
			secured.GET("/me/schedule", scheduleHandler.Get)
			secured.PUT("/me/schedule/business-hours", scheduleHandler.UpdateBusinessHours)
			secured.POST("/me/schedule/breaks", scheduleHandler.CreateBreak)
			secured.PUT("/me/schedule/breaks/:id", scheduleHandler.UpdateBreak)
			secured.DELETE("/me/schedule/breaks/:id", scheduleHandler.DeleteBreak)
			secured.POST("/me/schedule/exceptions", scheduleHandler.CreateException)
			secured.PUT("/me/schedule/exceptions/:id", scheduleHandler.UpdateException)
			secured.DELETE("/me/schedule/exceptions/:id", scheduleHandler.DeleteException)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.PATCH("/me/appointments/:id/approve", appointmentHandler.Approve)
			secured.PATCH("/me/appointments/:id/request-payment", appointmentHandler.RequestPayment)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)
			secured.PATCH("/me/appointments/:id/no-show", appointmentHandler.NoShow)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
