package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/d-okonkwo/slotly/libs/config"
	"github.com/d-okonkwo/slotly/libs/db"
	"github.com/d-okonkwo/slotly/libs/httpx"
	"github.com/d-okonkwo/slotly/libs/kafkax"
	otelx "github.com/d-okonkwo/slotly/libs/otel"
	"github.com/d-okonkwo/slotly/libs/runtime"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/directory"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/handlers"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/outbox"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.OpenWithOptions(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewBookingRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	directoryProvider, err := directory.NewProvider(config.String("DIRECTORY_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("directory provider init failed; relying on db constraints", "err", err)
		directoryProvider = nil
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	availabilityHandler := handlers.NewAvailabilityHandler(repo, directoryProvider, logger)
	bookingHandler := handlers.NewBookingHandler(repo, outboxRepo, directoryProvider, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	// Public routes sit behind a Redis fixed-window rate limit; tenant routes
	// require a signed tenant token instead.
	publicChain := func(h http.Handler) http.Handler { return h }
	if redisURL := config.String("REDIS_URL", ""); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL; public rate limit disabled", "err", err)
		} else {
			limiter := httpx.NewRedisRateLimiter(
				redis.NewClient(opts),
				config.Int("RATE_LIMIT_PER_MINUTE", 120),
				time.Minute,
				service,
			)
			mw := limiter.Middleware(logger, true)
			publicChain = func(h http.Handler) http.Handler { return mw(h) }
		}
	}

	tenantSecret, err := config.RequiredString("TENANT_JWT_SECRET")
	if err != nil {
		panic(err)
	}
	tenantAuth := httpx.WithTenantAuth(tenantSecret)

	mux.Handle("/api/v1/public/availability", publicChain(http.HandlerFunc(availabilityHandler.Slots)))
	mux.Handle("/api/v1/public/bookings", publicChain(http.HandlerFunc(bookingHandler.Create)))
	mux.Handle("/api/v1/bookings/status", tenantAuth(http.HandlerFunc(bookingHandler.UpdateStatus)))
	mux.Handle("/api/v1/bookings", tenantAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			bookingHandler.Delete(w, r)
		default:
			bookingHandler.List(w, r)
		}
	})))

	// The public routes serve embedded booking widgets, so CORS is part of
	// this service's surface rather than a gateway concern.
	var corsOrigins []string
	if raw := config.String("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		corsOrigins = strings.Split(raw, ",")
	}
	cors := httpx.WithCORS(httpx.CORSPolicy{
		AllowedOrigins: corsOrigins,
		MaxAge:         10 * time.Minute,
	})

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		cors,
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
