package database

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"go-vaccination-booking/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the libpq connection string for cfg. Sessions run in UTC so
// schedule dates compare the same way regardless of server locale.
func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)
}

// URL builds the pgx5 URL form of cfg used by the migrator
func URL(cfg config.DBConfig) string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}
	return u.String()
}

func NewPostgresConnection(cfg config.DBConfig, log *logrus.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Successfully connected to PostgreSQL database")

	return db, nil
}
