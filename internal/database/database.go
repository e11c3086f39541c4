package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const (
	memoryDSN = ":memory:"

	// sqlitePragmas is applied by the modernc driver to every new connection.
	sqlitePragmas = "_pragma=foreign_keys(1)"
)

// Target is a database URL resolved to a driver and its data source name.
type Target struct {
	Dialect Dialect
	Driver  string
	DSN     string
}

// Resolve maps a database URL to the driver that serves it.
//
//	sqlite:///relative/app.db   -> relative/app.db
//	sqlite:////abs/app.db       -> /abs/app.db
//	sqlite:// or sqlite:///:memory: -> in-memory database
//	postgresql://...            -> pgx
func Resolve(url string) (Target, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" || path == memoryDSN {
			path = memoryDSN
		}
		return Target{Dialect: SQLite, Driver: "sqlite", DSN: path}, nil
	case strings.HasPrefix(url, "postgresql://"):
		return Target{Dialect: Postgres, Driver: "pgx", DSN: url}, nil
	default:
		return Target{}, fmt.Errorf("unsupported database url scheme in %q", Redact(url))
	}
}

// Open connects to the database behind url and pings it before returning.
func Open(ctx context.Context, url string) (*sqlx.DB, Dialect, error) {
	target, err := Resolve(url)
	if err != nil {
		return nil, "", err
	}

	if target.Dialect == SQLite && target.DSN != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(target.DSN), 0o755); err != nil {
			return nil, "", fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := target.DSN
	if target.Dialect == SQLite {
		dsn += "?" + sqlitePragmas
	}

	db, err := sqlx.ConnectContext(ctx, target.Driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("connect to database: %w", err)
	}

	if target.Dialect == SQLite {
		db.SetMaxOpenConns(1)
	}
	return db, target.Dialect, nil
}

// Redact hides the password of a URL so it can be logged.
func Redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return url
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return url
	}
	return scheme + "://" + user + ":***@" + host
}
