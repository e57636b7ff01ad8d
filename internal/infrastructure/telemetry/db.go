package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type startKey struct{}

// InstrumentDB adds spans (otelgorm), slow query logging and connection pool
// gauges to db. Query parameters stay out of spans unless DBLogFullSQL.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Enabled && cfg.DBTraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("failed to register otelgorm: %w", err)
		}
	}

	if cfg.DBSlowQueryThresh > 0 {
		if err := registerSlowQueryLog(db, cfg.DBSlowQueryThresh, logger); err != nil {
			return err
		}
	}

	if meter != nil {
		if err := registerPoolGauges(db, meter); err != nil {
			return err
		}
	}
	return nil
}

func registerSlowQueryLog(db *gorm.DB, threshold time.Duration, logger *zap.Logger) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, startKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		if tx.Statement.Context == nil {
			return
		}
		start, ok := tx.Statement.Context.Value(startKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed >= threshold {
			logger.Warn("slow query",
				zap.String("table", tx.Statement.Table),
				zap.Duration("elapsed", elapsed),
				zap.Int64("rows", tx.RowsAffected),
			)
		}
	}

	cb := db.Callback()
	hooks := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"create", wrap(cb.Create().Before("gorm:create"), before), wrap(cb.Create().After("gorm:create"), after)},
		{"query", wrap(cb.Query().Before("gorm:query"), before), wrap(cb.Query().After("gorm:query"), after)},
		{"update", wrap(cb.Update().Before("gorm:update"), before), wrap(cb.Update().After("gorm:update"), after)},
		{"delete", wrap(cb.Delete().Before("gorm:delete"), before), wrap(cb.Delete().After("gorm:delete"), after)},
		{"raw", wrap(cb.Raw().Before("gorm:raw"), before), wrap(cb.Raw().After("gorm:raw"), after)},
		{"row", wrap(cb.Row().Before("gorm:row"), before), wrap(cb.Row().After("gorm:row"), after)},
	}
	for _, h := range hooks {
		if err := h.before("telemetry:start_" + h.name); err != nil {
			return err
		}
		if err := h.after("telemetry:slow_" + h.name); err != nil {
			return err
		}
	}
	return nil
}

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func wrap(r callbackRegistrar, fn func(*gorm.DB)) func(string) error {
	return func(name string) error {
		return r.Register(name, fn)
	}
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	open, err := meter.Int64ObservableGauge("db.pool.open_connections",
		metric.WithDescription("Open database connections"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("db.pool.in_use",
		metric.WithDescription("Connections currently in use"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Total waits for a free connection"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(open, int64(s.OpenConnections))
		o.ObserveInt64(inUse, int64(s.InUse))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, open, inUse, waits)
	return err
}
