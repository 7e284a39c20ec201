// Package migrations embeds the SQL schema of every database-backed snapshot slot.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed clickhouse/*.sql sqlite/*.sql postgres/*.sql
var FS embed.FS

// goose keeps its dialect and filesystem in package state
var mu sync.Mutex

var dialects = map[string]string{
	"clickhouse": "clickhouse",
	"sqlite":     "sqlite3",
	"postgres":   "postgres",
}

// Dialect returns the goose dialect of a backend directory
func Dialect(backend string) (string, error) {
	dialect, ok := dialects[backend]
	if !ok {
		return "", fmt.Errorf("no migrations for backend %q", backend)
	}
	return dialect, nil
}

// Up applies every pending migration of backend to db
func Up(db *sql.DB, backend string) error {
	return Run(db, backend, "up")
}

// Run executes a goose command against the embedded migrations of backend.
// Supported commands are up, down, status and version.
func Run(db *sql.DB, backend, command string) error {
	dialect, err := Dialect(backend)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch command {
	case "up":
		err = goose.Up(db, backend)
	case "down":
		err = goose.Down(db, backend)
	case "status":
		err = goose.Status(db, backend)
	case "version":
		var version int64
		version, err = goose.GetDBVersion(db)
		if err == nil {
			fmt.Printf("Current migration version: %d\n", version)
		}
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
