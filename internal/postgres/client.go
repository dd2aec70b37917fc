package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/orderly-com/wish-insights/internal/config"
	"github.com/orderly-com/wish-insights/internal/logger"
)

// Client wraps the Postgres connection pool used by the client, team and
// cycle summary repositories
type Client struct {
	DB     *sql.DB
	logger *logger.Logger
}

// NewClient opens and pings a connection pool
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	db, err := sql.Open("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"dbname", cfg.Postgres.DBName,
	)
	return &Client{DB: db, logger: log}, nil
}

// Close closes the pool
func (c *Client) Close() error {
	return c.DB.Close()
}
