package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/d-okonkwo/slotly/libs/config"
	"github.com/d-okonkwo/slotly/libs/db"
	"github.com/d-okonkwo/slotly/libs/httpx"
	"github.com/d-okonkwo/slotly/libs/kafkax"
	otelx "github.com/d-okonkwo/slotly/libs/otel"
	"github.com/d-okonkwo/slotly/libs/runtime"
	"github.com/d-okonkwo/slotly/services/notification-service/internal/consumer"
	"github.com/d-okonkwo/slotly/services/notification-service/internal/dispatch"
	"github.com/d-okonkwo/slotly/services/notification-service/internal/email"
	"github.com/d-okonkwo/slotly/services/notification-service/internal/inbox"
	"github.com/d-okonkwo/slotly/services/notification-service/internal/sms"
	"github.com/d-okonkwo/slotly/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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

	inboxRepo := inbox.NewRepository(pool)
	notificationsRepo := storage.NewRepository(pool)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "no-reply@slotly.local")
	emailSender := email.NewSMTPSender(smtpHost, smtpPort, smtpFrom)

	smsProvider := strings.ToLower(config.String("SMS_PROVIDER", "noop"))
	var smsSender sms.Sender
	switch smsProvider {
	case "webhook":
		smsSender = sms.NewWebhookSender(config.String("SMS_WEBHOOK_URL", ""), config.String("SMS_WEBHOOK_TOKEN", ""))
	default:
		smsSender = sms.NewNoopSender()
	}

	handle := func(ctx context.Context, msg kafka.Message) error {
		rendered, err := dispatch.Render(msg.Topic, msg.Value)
		if err != nil {
			// Bad payloads are dropped, not retried: redelivery cannot fix them.
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}

		status := "sent"
		if err := emailSender.Send(rendered.Recipient, rendered.Subject, rendered.Body); err != nil {
			status = "failed"
			logger.Error("email send failed", "err", err, "recipient", rendered.Recipient)
		}
		if err := notificationsRepo.Insert(ctx, storage.Notification{
			BookingID: rendered.BookingID,
			TenantID:  rendered.TenantID,
			Channel:   "email",
			Recipient: rendered.Recipient,
			Payload:   rendered.Template,
			Status:    status,
		}); err != nil {
			logger.Error("failed to persist notification", "err", err)
			return err
		}

		if rendered.Phone != "" {
			smsStatus := "sent"
			if err := smsSender.Send(ctx, rendered.Phone, rendered.Body); err != nil {
				smsStatus = "failed"
				logger.Error("sms send failed", "err", err, "recipient", rendered.Phone)
			}
			if err := notificationsRepo.Insert(ctx, storage.Notification{
				BookingID: rendered.BookingID,
				TenantID:  rendered.TenantID,
				Channel:   "sms",
				Recipient: rendered.Phone,
				Payload:   rendered.Template,
				Status:    smsStatus,
			}); err != nil {
				logger.Error("failed to persist notification", "err", err)
				return err
			}
		}

		logger.Info("booking event processed", "booking_id", rendered.BookingID, "topic", msg.Topic, "status", status)
		return nil
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")
	for _, topic := range []string{dispatch.TopicSlotBooked, dispatch.TopicStatusChanged, dispatch.TopicCancelled} {
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, handle)
		go eventConsumer.Run(ctx)
	}

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
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

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
