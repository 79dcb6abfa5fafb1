package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/helixir/property-service/internal/config"
)

// slowQueryThreshold is the duration above which gorm logs a query as slow.
const slowQueryThreshold = 200 * time.Millisecond

// MySQL is a gorm connection to the MySQL property store.
type MySQL struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	logger zerolog.Logger
}

// OpenMySQL opens and verifies a gorm connection using cfg.
func OpenMySQL(ctx context.Context, cfg *config.MySQLConfig, logger zerolog.Logger) (*MySQL, error) {
	gormLog := logger.With().Str("component", "gorm").Logger()

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(&gormLog, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access mysql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("mysql connection pool established")

	return &MySQL{db: db, sqlDB: sqlDB, logger: logger}, nil
}

// Gorm returns the gorm handle.
func (m *MySQL) Gorm() *gorm.DB {
	return m.db
}

// Ping verifies the connection is alive.
func (m *MySQL) Ping(ctx context.Context) error {
	return m.sqlDB.PingContext(ctx)
}

// Health returns connection pool health in the same shape as DB.Health.
func (m *MySQL) Health(ctx context.Context) HealthStatus {
	stats := m.sqlDB.Stats()
	health := HealthStatus{
		TotalConns:    int32(stats.OpenConnections),
		AcquiredConns: int32(stats.InUse),
		IdleConns:     int32(stats.Idle),
		MaxConns:      int32(stats.MaxOpenConnections),
	}

	pingCtx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()
	if err := m.sqlDB.PingContext(pingCtx); err != nil {
		health.Status = StatusUnhealthy
		health.Error = err.Error()
	} else {
		health.Status = StatusHealthy
	}
	return health
}

// Close closes the underlying connection pool.
func (m *MySQL) Close() {
	if m.sqlDB == nil {
		return
	}
	if err := m.sqlDB.Close(); err != nil {
		m.logger.Error().Err(err).Msg("failed to close mysql connection pool")
		return
	}
	m.logger.Info().Msg("mysql connection pool closed")
}
