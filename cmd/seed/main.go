package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Replicator56/mini-crm/internal/infrastructure/config"
	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		reset    bool
		logLevel string
	)
	flag.BoolVar(&reset, "reset", false, "Delete all users, clients and appointments before seeding")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load(config.WithoutSessionSecret())
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to prepare schema", zap.Error(err))
		}
	}

	ctx := context.Background()
	s := newSeeder(db, cfg.App.Location(), log)
	if reset {
		if err := s.reset(ctx); err != nil {
			log.Fatal("Reset failed", zap.Error(err))
		}
		log.Info("Tables cleared")
	}
	if _, err := s.run(ctx); err != nil {
		log.Fatal("Seed failed", zap.Error(err))
	}
	log.Info("Seeded users can log in", zap.String("password", DefaultPassword))
}
