package main

import (
	"context"
	"net/http"
	"time"

	"github.com/d-okonkwo/slotly/libs/config"
	"github.com/d-okonkwo/slotly/libs/db"
	"github.com/d-okonkwo/slotly/libs/httpx"
	otelx "github.com/d-okonkwo/slotly/libs/otel"
	"github.com/d-okonkwo/slotly/libs/runtime"
	"github.com/d-okonkwo/slotly/services/directory-service/internal/handlers"
	"github.com/d-okonkwo/slotly/services/directory-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "directory-service")
	port, err := config.Port("PORT", "8082")
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
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	jwtSecret, err := config.RequiredString("TENANT_JWT_SECRET")
	if err != nil {
		panic(err)
	}

	repo := storage.NewRepository(pool)
	httpHandler := handlers.New(repo, jwtSecret)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)

	// Tenant signup is the only unauthenticated route; everything else needs
	// the tenant API key. An in-process limiter is enough here: signup is
	// rare and this service runs a single replica per region.
	signupLimit := httpx.NewRateLimiter(config.Int("SIGNUP_RATE_LIMIT_PER_MINUTE", 10), time.Minute).Middleware()
	mux.Handle("/api/v1/tenants", signupLimit(http.HandlerFunc(httpHandler.CreateTenant)))

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpHandler.RequireAPIKey(fn)
	}
	mux.Handle("/api/v1/auth/token", admin(httpHandler.IssueToken))
	mux.Handle("/api/v1/services", admin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			httpHandler.CreateService(w, r)
		case http.MethodGet:
			httpHandler.ListServices(w, r)
		case http.MethodDelete:
			httpHandler.DeactivateService(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.Handle("/api/v1/services/hours", admin(httpHandler.ReplaceServiceHours))
	mux.Handle("/api/v1/professionals", admin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			httpHandler.CreateProfessional(w, r)
		case http.MethodGet:
			httpHandler.ListProfessionals(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.Handle("/api/v1/professionals/available", admin(httpHandler.SetProfessionalAvailable))
	mux.Handle("/api/v1/professionals/hours", admin(httpHandler.ReplaceProfessionalHours))
	mux.Handle("/api/v1/qualifications", admin(httpHandler.Qualify))
	mux.Handle("/api/v1/professionals/time-off", admin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			httpHandler.CreateTimeOff(w, r)
		case http.MethodGet:
			httpHandler.ListTimeOff(w, r)
		case http.MethodDelete:
			httpHandler.DeleteTimeOff(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "directory")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	if err := startGrpcServer(ctx, logger, pool, repo); err != nil {
		logger.Error("grpc server failed to start", "err", err)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
