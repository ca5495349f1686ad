package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin/binding"
	playgroundValidator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/allenjacob2003/telemed-api/pkg/logger"
	"github.com/allenjacob2003/telemed-api/pkg/messaging/redis"
	"github.com/allenjacob2003/telemed-api/pkg/metrics"
	"github.com/allenjacob2003/telemed-api/pkg/validator"

	"github.com/allenjacob2003/telemed-api/internal/config"
	"github.com/allenjacob2003/telemed-api/internal/email"
	"github.com/allenjacob2003/telemed-api/internal/gateway"
	consultationHandler "github.com/allenjacob2003/telemed-api/internal/handler/consultation"
	"github.com/allenjacob2003/telemed-api/internal/handler/health"
	paymentHandler "github.com/allenjacob2003/telemed-api/internal/handler/payment"
	pharmacyHandler "github.com/allenjacob2003/telemed-api/internal/handler/pharmacy"
	"github.com/allenjacob2003/telemed-api/internal/middleware"
	"github.com/allenjacob2003/telemed-api/internal/repository/postgres"
	"github.com/allenjacob2003/telemed-api/internal/router"
	consultationService "github.com/allenjacob2003/telemed-api/internal/service/consultation"
	"github.com/allenjacob2003/telemed-api/internal/service/notification"
	paymentService "github.com/allenjacob2003/telemed-api/internal/service/payment"
	pharmacyService "github.com/allenjacob2003/telemed-api/internal/service/pharmacy"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	// Register domain aliases on gin's binding validator so request
	// tags can use them.
	if v, ok := binding.Validator.Engine().(*playgroundValidator.Validate); ok {
		validator.RegisterAliases(v)
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	medicineRepo := postgres.NewMedicineRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	settlementStore := postgres.NewSettlementStore(db, cfg.Payments.StockLockTimeout)

	appMetrics := metrics.NewMetrics("telemed", "api")

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	emailSvc, err := email.NewSMTPService(cfg.ToEmailConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure SMTP")
	}

	gatewayClient, err := gateway.NewRazorpayClient(cfg.ToGatewayConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure payment gateway")
	}

	// Services
	consultationSvc := consultationService.NewService(
		consultationRepo, appointmentRepo, patientRepo, doctorRepo,
	)
	pharmacySvc := pharmacyService.NewService(
		medicineRepo, orderRepo, patientRepo, appMetrics,
	)
	notificationSvc := notification.NewService(
		emailSvc, patientRepo, doctorRepo, cfg.Secrets.AdminEmail, appLogger, appMetrics,
	)
	paymentSvc := paymentService.NewService(paymentService.Deps{
		Settlement:   settlementStore,
		PatientRepo:  patientRepo,
		DoctorRepo:   doctorRepo,
		ConsultRepo:  consultationRepo,
		MedicineRepo: medicineRepo,
		PaymentRepo:  paymentRepo,
		Gateway:      gatewayClient,
		Notifier:     notificationSvc,
		Broker:       broker,
		Logger:       appLogger,
		Metrics:      appMetrics,
		Currency:     cfg.Payments.Currency,
	})

	// Settled-payment events are consumed into the log.
	eventsCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()
	if events, err := broker.Subscribe(eventsCtx, paymentService.EventsChannel); err != nil {
		log.Warn().Err(err).Msg("failed to subscribe to payment events")
	} else {
		go func() {
			for payload := range events {
				log.Info().RawJSON("event", payload).Msg("payment event settled")
			}
		}()
	}

	// Handlers
	healthH := health.NewHandler(db)
	consultationH := consultationHandler.NewHandler(consultationSvc)
	pharmacyH := pharmacyHandler.NewHandler(pharmacySvc, validator.New())
	paymentH := paymentHandler.NewHandler(paymentSvc)

	r := router.NewRouter(healthH, consultationH, pharmacyH, paymentH, router.Config{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig:       middleware.DefaultCORSConfig(),
		MetricsPath:      cfg.Monitoring.MetricsPath,
		MetricsPrefix:    "telemed_http",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
