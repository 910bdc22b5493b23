package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kantong/kantong-backend/internal/amqp"
	"github.com/kantong/kantong-backend/internal/config"
	"github.com/kantong/kantong-backend/internal/handler"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/repository/memory"
	"github.com/kantong/kantong-backend/internal/repository/postgres"
	"github.com/kantong/kantong-backend/internal/repository/storage"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Kantong API
// @version 1.0
// @description Personal finance API: accounts, transactions, budgets, savings goals and reports.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))
	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	handler.RegisterDocsRoutes(e)

	// Guest demo: an in-memory workspace shared by every visitor
	guestStore := memory.NewSeededStore(memory.GuestWorkspaceID)
	guestLimiter := middleware.NewRateLimiterWithConfig(cfg.GuestRateLimit, middleware.DefaultBurstSize)
	defer guestLimiter.Stop()
	handler.RegisterDemoRoutes(e, memory.GuestWorkspaceID, guestLimiter, newDataHandlers(dataRepos{
		accounts:     guestStore.Accounts(),
		transactions: guestStore.Transactions(),
		budgets:      guestStore.Budgets(),
		goals:        guestStore.Goals(),
	}, liveDeps{}))

	resetWorker := service.NewGuestResetWorker(guestStore, memory.GuestWorkspaceID, log.Logger, cfg.GuestResetInterval)
	resetWorker.Start(ctx)
	defer resetWorker.Stop()

	hub := websocket.NewHub()
	var closers []func() error

	if cfg.GuestOnly {
		log.Warn().Msg("GUEST_ONLY is set, serving the demo API only")
	} else {
		closers = wireLiveAPI(ctx, e, cfg, hub)
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.CloseAll()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			log.Warn().Err(err).Msg("Failed to release resource")
		}
	}

	log.Info().Msg("Server exited")
}

// wireLiveAPI connects postgres and the optional S3 and AMQP backends, then
// registers the authenticated routes. It returns cleanup functions in open order.
func wireLiveAPI(ctx context.Context, e *echo.Echo, cfg *config.Config, hub *websocket.Hub) []func() error {
	var closers []func() error

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	closers = append(closers, func() error { pool.Close(); return nil })
	log.Info().Msg("Connected to database")

	userRepo := postgres.NewUserRepository(pool)
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	goalRepo := postgres.NewGoalRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	preferencesRepo := postgres.NewPreferencesRepository(pool)

	authService := service.NewAuthService(userRepo, workspaceRepo)
	profileService := service.NewProfileService(userRepo)
	preferencesService := service.NewPreferencesService(preferencesRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	notificationService.SetEventPublisher(hub)

	// Alerts go through the broker when one is configured; the alert worker
	// stores them. Otherwise they are stored in-process.
	var alertPublisher service.AlertPublisher = notificationService
	if cfg.AMQP.Enabled() {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		closers = append(closers, client.Close)
		alertPublisher = client
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Publishing alerts to AMQP")
	}
	alertService := service.NewAlertService(alertPublisher, preferencesService)
	alertService.SetEventPublisher(hub)

	var receiptStore storage.ObjectStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3ReceiptStore(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	}

	receiptService := service.NewReceiptService(receiptStore, transactionRepo)

	data := newDataHandlers(dataRepos{
		accounts:      accountRepo,
		transactions:  transactionRepo,
		budgets:       budgetRepo,
		goals:         goalRepo,
		notifications: notificationRepo,
	}, liveDeps{
		prefs:    preferencesService,
		alerts:   alertService,
		receipts: receiptService,
		events:   hub,
	})

	transcriptLimiter := middleware.NewRateLimiter()
	closers = append(closers, func() error { transcriptLimiter.Stop(); return nil })
	data.TranscriptLimit = middleware.RateLimitMiddleware(transcriptLimiter, middleware.WorkspaceKey)

	authMiddleware, err := middleware.NewAuthMiddleware(cfg.AuthDomain, cfg.AuthAudience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	wsValidator, err := websocket.NewJWTValidator(cfg.AuthDomain, cfg.AuthAudience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create websocket token validator")
	}

	handler.RegisterRoutes(e, authMiddleware, data, &handler.AccountHandlers{
		Auth:         handler.NewAuthHandler(authService),
		Profile:      handler.NewProfileHandler(profileService),
		Preferences:  handler.NewPreferencesHandler(preferencesService),
		Notification: handler.NewNotificationHandler(notificationService),
		Receipt:      handler.NewReceiptHandler(receiptService),
		WebSocket:    handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
	})
	return closers
}
