package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/orderly-com/wish-insights/internal/config"
	"github.com/orderly-com/wish-insights/internal/logger"
)

// ClickHouseStore wraps the native ClickHouse connection used by the
// purchase event repository
type ClickHouseStore struct {
	conn driver.Conn
}

// NewClickHouseStore opens and pings a native-protocol connection
func NewClickHouseStore(cfg *config.Configuration, log *logger.Logger) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.ClickHouse.Address},
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		},
		Protocol: clickhouse.Native,
		Settings: clickhouse.Settings{
			"max_execution_time": 600,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	log.Infow("connected to clickhouse",
		"address", cfg.ClickHouse.Address,
		"database", cfg.ClickHouse.Database,
	)
	return &ClickHouseStore{conn: conn}, nil
}

// GetConn returns the underlying native connection
func (s *ClickHouseStore) GetConn() driver.Conn {
	return s.conn
}

// Close closes the connection
func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}
