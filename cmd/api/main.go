package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/cache"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barbershop-booking/internal/db"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	infraRepo "github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/lock"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/payment"
	"github.com/BruksfildServices01/barbershop-booking/internal/routes"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barbershop-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/worker"
)

const eventQueueSize = 1000

func main() {

	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := dbpkg.NewDB(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	rdb := connectRedis(ctx, cfg, &log)

	var locker lock.Locker = lock.NewLocalLocker(cfg.LockWaitTimeout)
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWaitTimeout)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sinks := []events.Sink{audit.New(db)}
	var kafkaSink *events.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink = events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, kafkaSink)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	}
	dispatcher := events.NewDispatcher(&log, eventQueueSize, sinks...)
	dispatcher.OnDrop(m.IncEventsDropped)

	var verifier payment.Verifier = payment.Disabled{}
	if cfg.MercadoPagoAccessToken != "" {
		mp, err := payment.NewMercadoPagoVerifier(cfg.MercadoPagoAccessToken)
		if err != nil {
			log.Fatal().Err(err).Msg("mercadopago client")
		}
		verifier = mp
	}

	repo := infraRepo.NewAppointmentGormRepository(db)
	deps := ucAppointment.Deps{
		Repo:    repo,
		Locker:  locker,
		Events:  dispatcher,
		Log:     &log,
		Metrics: m,
		Clock:   timezone.SystemClock,
	}
	calendars := cache.NewScheduleCache(rdb, repo, cfg.ScheduleCacheTTL, &log)
	limiter := middleware.NewRateLimiter(cfg.PublicRateLimitRPS, cfg.PublicRateLimitBurst)

	sweeper, err := worker.NewHoldSweeper(cfg.HoldSweepSpec, ucAppointment.NewSweepExpiredHolds(deps), &log)
	if err != nil {
		log.Fatal().Err(err).Msg("hold sweeper")
	}
	sweeper.Also(func() { limiter.Prune() })

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, cfg, routes.Infra{
		DB:        db,
		Log:       &log,
		Engine:    deps,
		Repo:      repo,
		Calendars: calendars,
		Payments:  verifier,
		Limiter:   limiter,
		Registry:  reg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeper.Start()

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	sweeper.Stop()
	dispatcher.Close()
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Error().Err(err).Msg("kafka writer close")
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// connectRedis returns nil when redis is not configured or unreachable;
// locks then stay in process and the schedule cache reads straight
// through.
func connectRedis(ctx context.Context, cfg *config.Config, log *zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Info().Msg("redis not configured, using in-process locks")
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, using in-process locks")
		_ = rdb.Close()
		return nil
	}
	return rdb
}
