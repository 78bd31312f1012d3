package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"card-bank-api/config"
	"card-bank-api/logger"

	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// dataSourceName builds a lib/pq keyword DSN. With redact set the password
// is omitted so the result can be logged.
func dataSourceName(cfg config.DatabaseConfig, redact bool) string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode)
	if !redact && cfg.Password != "" {
		dsn += fmt.Sprintf(" password='%s'", dsnEscaper.Replace(cfg.Password))
	}
	return dsn
}

// Connect opens the PostgreSQL pool described by config.AppConfig.Database
// and verifies it with a ping.
func Connect() (*sql.DB, error) {
	cfg := config.AppConfig.Database

	logger.Log.WithField("connection", dataSourceName(cfg, true)).Info("Attempting to connect to the database")

	db, err := sql.Open("postgres", dataSourceName(cfg, false))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		logger.Log.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, nil
}
