package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/feesync/feesync/docs/swagger"
	"github.com/feesync/feesync/internal/api"
	v1 "github.com/feesync/feesync/internal/api/v1"
	"github.com/feesync/feesync/internal/auth"
	"github.com/feesync/feesync/internal/cache"
	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/email"
	"github.com/feesync/feesync/internal/httpclient"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/messaging"
	"github.com/feesync/feesync/internal/mongo"
	"github.com/feesync/feesync/internal/repository"
	"github.com/feesync/feesync/internal/sentry"
	"github.com/feesync/feesync/internal/service"
	"github.com/feesync/feesync/internal/types"
	"github.com/feesync/feesync/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title FeeSync API
// @version 1.0
// @description Fee management API backed by a MongoDB mirror of Zoho Invoice
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the token in the format *Bearer &lt;token&gt;*

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Integrations
			zoho.NewClient,
			email.NewEmailClient,
			email.NewEmail,
			messaging.NewClient,
			auth.NewProvider,

			// Repositories
			repository.NewCustomerRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewTokenRepository,
			repository.NewNotificationRepository,
			repository.NewUserRepository,
			repository.NewSyncLogRepository,
		),
		mongo.Module(),
		sentry.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewAuthService,
			service.NewStudentService,
			service.NewCustomerService,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewAggregationService,
			service.NewNotificationService,
			service.NewReminderService,
			service.NewSyncService,
			service.NewTokenManager,
			service.NewZohoService,
			service.NewSyncScheduler,
		),
	)

	// API layer
	opts = append(opts,
		fx.Provide(
			provideHealthPinger,
			v1.NewHealthHandler,
			v1.NewAuthHandler,
			v1.NewStudentHandler,
			v1.NewZohoHandler,
			v1.NewCustomerHandler,
			v1.NewInvoiceHandler,
			v1.NewPaymentHandler,
			v1.NewDashboardHandler,
			v1.NewReminderHandler,
			v1.NewNotificationHandler,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHealthPinger(c *mongo.Client) v1.Pinger {
	return c
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	scheduler *service.SyncScheduler,
	tokenManager service.TokenManager,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		scheduler.RegisterHooks(lc)
		startAPIServer(lc, r, cfg, log)
	case types.ModeAPI:
		registerTokenHooks(lc, tokenManager, log)
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

// registerTokenHooks keeps the provider token fresh without running scheduled syncs
func registerTokenHooks(lc fx.Lifecycle, tokenManager service.TokenManager, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := tokenManager.Load(ctx); err != nil {
				log.Warnw("continuing without a stored zoho token", "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			tokenManager.Stop()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
