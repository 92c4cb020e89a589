package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	crmapp "github.com/Replicator56/mini-crm/internal/application/crm"
	identityapp "github.com/Replicator56/mini-crm/internal/application/identity"
	"github.com/Replicator56/mini-crm/internal/infrastructure/auth"
	"github.com/Replicator56/mini-crm/internal/infrastructure/config"
	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/Replicator56/mini-crm/internal/infrastructure/telemetry"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.ForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting mini CRM",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Location().String()),
	)

	// Tracing is a no-op provider unless enabled
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with the zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
		log.Info("Schema auto-migrated")
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBSystem:   dbSystem,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Session store
	var store session.Store
	switch cfg.Session.Store {
	case "memory":
		store = session.NewMemoryStore()
		log.Warn("Using in-memory session store, sessions are lost on restart")
	default:
		redisStore, err := session.NewRedisStore(context.Background(), session.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		store = redisStore
		log.Info("Redis session store connected", zap.String("addr", cfg.Redis.Addr()))
	}

	signer := auth.NewCookieSigner(cfg.Session.Secret, cfg.App.Name)
	sessions := session.NewManager(store, signer, session.ManagerConfig{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.Secure,
	})
	notices := flash.NewStore(signer, cfg.Session.NoticeCookie, cfg.Session.Secure)

	// Repositories and services
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	appointmentRepo := persistence.NewGormAppointmentRepository(db.DB)

	authService := identityapp.NewAuthService(userRepo, log)
	clientService := crmapp.NewClientService(clientRepo, log)
	appointmentService := crmapp.NewAppointmentService(appointmentRepo, clientRepo, cfg.App.Location(), log)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := router.New(router.Dependencies{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Sessions:     sessions,
		Notices:      notices,
		Auth:         authService,
		Clients:      clientService,
		Appointments: appointmentService,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}
	defer r.Close()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Handler(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
