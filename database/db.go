package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/resilience"
)

// DB wraps a GORM database with riv logging.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// Open connects with retries and configures the connection pool. Waits
// between attempts grow from RetryBackoff and are cut short by ctx.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("database")

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, parseDuration(cfg.SlowQueryThreshold, 200*time.Millisecond), parseLogLevel(cfg.LogLevel)),
	}
	policy := resilience.Policy{
		Attempts:   cfg.MaxRetries,
		Backoff:    parseDuration(cfg.RetryBackoff, time.Second),
		MaxBackoff: 30 * time.Second,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			log.Warn("Database connection attempt failed, retrying", logger.Fields(
				"attempt", attempt,
				logger.FieldError, err.Error(),
				"backoff", wait.String(),
			))
		},
	}

	attempts := 0
	db, err := resilience.Retry(ctx, policy, func(ctx context.Context) (*gorm.DB, error) {
		attempts++
		db, err := gorm.Open(dialector, gormCfg)
		if err != nil {
			return nil, err
		}
		if err := configurePool(ctx, db, cfg); err != nil {
			closeGorm(db)
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.IO(errors.IOKindInterrupted, "database connection canceled").WithCause(ctx.Err())
		}
		appErr := FromDatabase(err, "database")
		appErr.Message = fmt.Sprintf("failed to connect to %s database after %d attempts: %s", cfg.Driver, attempts, appErr.Message)
		return nil, appErr
	}

	if cfg.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			closeGorm(db)
			return nil, errors.General("install tracing plugin: " + err.Error()).WithCause(err)
		}
	}
	log.Info("Database connection established", logger.Fields(
		"driver", cfg.Driver,
		"attempt", attempts,
	))
	return &DB{GormDB: db, log: log, cfg: cfg}, nil
}

func configurePool(ctx context.Context, db *gorm.DB, cfg Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, parseDuration(cfg.DialTimeout, 10*time.Second))
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return err
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == DriverSQLite {
		// one writer; the sqlite driver serializes anyway
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(cfg.MaxIdleConns, maxOpen))
	sqlDB.SetConnMaxLifetime(parseDuration(cfg.ConnMaxLifetime, time.Hour))
	sqlDB.SetConnMaxIdleTime(parseDuration(cfg.ConnMaxIdleTime, 5*time.Minute))
	return nil
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Driver returns the configured driver name.
func (d *DB) Driver() string { return d.cfg.Driver }

// Close closes the underlying sql.DB connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return FromDatabase(err, "database")
	}
	d.log.Debug("Closing database connection")
	if err := sqlDB.Close(); err != nil {
		return FromDatabase(err, "database")
	}
	return nil
}

// PingContext verifies the database connection is alive, respecting the context.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to the given context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// TransactionFunc defines a function that runs within a transaction.
type TransactionFunc func(tx *gorm.DB) error

// WithTransaction executes fn within a transaction with panic recovery.
func (d *DB) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx := d.GormDB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			d.log.Error("Transaction rolled back due to panic", logger.Fields(
				"panic", fmt.Sprintf("%v", r),
			))
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
