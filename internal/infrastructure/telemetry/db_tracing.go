package telemetry

import (
	"errors"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL includes query variables in spans. Development only.
	LogFullSQL bool
	// DBSystem is reported as db.system, "postgresql" when empty.
	DBSystem string
}

// RegisterDBTracing installs otelgorm so every statement becomes a child
// span of the request, then tags those spans with the CRM table name and
// row count.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to install otelgorm: %w", err)
	}
	if err := registerTableAttributes(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
	)
	return nil
}

// registerTableAttributes runs tagSpan after each of gorm's statement kinds.
func registerTableAttributes(db *gorm.DB) error {
	cb := db.Callback()
	steps := []func() error{
		func() error { return cb.Create().After("gorm:create").Register("crm_trace:create", tagSpan) },
		func() error { return cb.Query().After("gorm:query").Register("crm_trace:query", tagSpan) },
		func() error { return cb.Update().After("gorm:update").Register("crm_trace:update", tagSpan) },
		func() error { return cb.Delete().After("gorm:delete").Register("crm_trace:delete", tagSpan) },
		func() error { return cb.Row().After("gorm:row").Register("crm_trace:row", tagSpan) },
		func() error { return cb.Raw().After("gorm:raw").Register("crm_trace:raw", tagSpan) },
	}
	for _, register := range steps {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register trace callback: %w", err)
		}
	}
	return nil
}

func tagSpan(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{attribute.Int64("db.rows_affected", db.Statement.RowsAffected)}
	if table := db.Statement.Table; table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", table))
	}
	span.SetAttributes(attrs...)

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
	}
}
