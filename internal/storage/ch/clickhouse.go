package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"readinglist/internal/storage"
	"readinglist/migrations"
)

var _ storage.Slot = (*ClickHouseSlot)(nil)

// ClickHouseSlot keeps snapshots in a ReplacingMergeTree table.
// Every Set inserts a new row; reads pick the newest row of a key.
type ClickHouseSlot struct {
	conn clickhouse.Conn
}

func options(host string, port int, database, user, password string, useTLS bool) *clickhouse.Options {
	opts := &clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", host, port)},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	}

	if useTLS {
		opts.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}
	return opts
}

// NewClickHouseSlot creates a new ClickHouse connection
func NewClickHouseSlot(host string, port int, database, user, password string, useTLS bool) (*ClickHouseSlot, error) {
	conn, err := clickhouse.Open(options(host, port, database, user, password, useTLS))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseSlot{conn: conn}, nil
}

// Migrate applies the embedded ClickHouse migrations through a database/sql handle
func Migrate(host string, port int, database, user, password string, useTLS bool) error {
	db := clickhouse.OpenDB(options(host, port, database, user, password, useTLS))
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return migrations.Up(db, "clickhouse")
}

// Get returns the most recent value written under key
func (s *ClickHouseSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data string
	err := s.conn.QueryRow(ctx,
		`SELECT data FROM snapshots FINAL WHERE key = ? ORDER BY updated_at DESC LIMIT 1`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return []byte(data), true, nil
}

// Set inserts a new version of key. A single-row insert is atomic in ClickHouse.
func (s *ClickHouseSlot) Set(ctx context.Context, key string, data []byte) error {
	err := s.conn.Exec(ctx, `INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)`,
		key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *ClickHouseSlot) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
