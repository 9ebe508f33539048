package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/salao-caixa/caixa-backend/internal/broker"
	"github.com/salao-caixa/caixa-backend/internal/config"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/handler"
	"github.com/salao-caixa/caixa-backend/internal/middleware"
	"github.com/salao-caixa/caixa-backend/internal/repository/postgres"
	"github.com/salao-caixa/caixa-backend/internal/repository/sqlite"
	"github.com/salao-caixa/caixa-backend/internal/repository/storage"
	"github.com/salao-caixa/caixa-backend/internal/service"
	"github.com/salao-caixa/caixa-backend/internal/websocket"
	"golang.org/x/sync/errgroup"
)

// @title Caixa API
// @version 1.0
// @description Cash ledger, service catalog and reports for a salon point of sale.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.TimeZone).Msg("Failed to load time zone")
	}

	ctx := context.Background()

	// Open storage
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("Failed to open storage")
	}
	defer store.close()
	log.Info().Str("backend", cfg.StorageBackend).Msg("Connected to storage")

	// Initialize services
	ledger := service.NewLedgerService(store.movements)
	ledger.SetClock(func() time.Time { return time.Now().In(loc) })
	if err := ledger.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	catalog := service.NewCatalogService(store.services)
	if cfg.SeedServices {
		if _, err := catalog.Seed(ctx, service.DefaultServices()); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed service catalog")
		}
	}

	cashBook := service.NewCashBookService(ledger, catalog)

	// Live updates: websocket clients plus an optional AMQP exchange
	hub := websocket.NewHub()
	publishers := websocket.MultiPublisher{hub}

	var amqpPublisher *broker.Publisher
	if cfg.AMQP.Enabled() {
		amqpPublisher, err = broker.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Publishing events to AMQP")
	}

	ledger.SetEventPublisher(publishers)
	catalog.SetEventPublisher(publishers)

	// Snapshot backups (optional)
	var backups domain.BackupRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3BackupRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 backups")
		}
		backups = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Ledger backups enabled")
	}

	flushWorker := service.NewFlushWorker(ledger, catalog, store.flusher, backups, log.Logger, service.FlushWorkerConfig{
		Interval:     cfg.FlushInterval,
		BackupPrefix: cfg.S3.BackupPrefix,
	})

	// Initialize handlers
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	handlers := handler.Handlers{
		Movement:  handler.NewMovementHandler(cashBook, loc),
		Service:   handler.NewServiceHandler(catalog),
		Report:    handler.NewReportHandler(cashBook, loc),
		WebSocket: handler.NewWebSocketHandler(hub, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{echo.HeaderContentDisposition, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(middleware.RequestLogger(log.Logger))

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		if err := store.ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, handlers, rateLimiter)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Not tied to runCtx so Stop below owns the final flush
	flushWorker.Start(ctx)

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	if amqpPublisher != nil {
		g.Go(func() error {
			return amqpPublisher.Run(gctx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	// Final flush before the storage handle closes
	flushWorker.Stop()

	log.Info().Msg("Server exited")
}

// store bundles the repositories of the selected storage backend
type store struct {
	movements domain.MovementRepository
	services  domain.ServiceRepository
	flusher   domain.Flusher
	ping      func(ctx context.Context) error
	close     func()
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &store{
			movements: postgres.NewMovementRepository(pool),
			services:  postgres.NewServiceRepository(pool),
			flusher:   postgres.NewFlusher(pool),
			ping:      pool.Ping,
			close:     pool.Close,
		}, nil
	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{
			movements: db.Movements(),
			services:  db.Services(),
			flusher:   db,
			ping:      db.Ping,
			close: func() {
				if err := db.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close database")
				}
			},
		}, nil
	}
}
