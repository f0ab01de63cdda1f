package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"reverie-revival/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// DriverName is the database/sql driver registered by pgx
const DriverName = "pgx"

var ErrNotConfigured = errors.New("database is not configured")

// Service owns the connection pool
type Service struct {
	db *sqlx.DB
}

// New opens the pool described by cfg. It returns ErrNotConfigured when cfg
// carries neither DATABASE_URL nor DB_USER, so callers can run without a database.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Service, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, ErrNotConfigured
	}

	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Service{db: db}, nil
}

func (s *Service) DB() *sqlx.DB {
	return s.db
}

// Health returns pool statistics and the ping result
func (s *Service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := map[string]string{}
	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)

	return stats
}

func (s *Service) Close() error {
	return s.db.Close()
}
