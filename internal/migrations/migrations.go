package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"clinic/m/internal/database"
)

// schema is written with a {{pk}} placeholder for the dialect's
// auto-incrementing primary key.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id {{pk}},
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS injectable_stock (
            id {{pk}},
            name TEXT NOT NULL,
            unit TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_injectable_stock_name ON injectable_stock (LOWER(name));`,
	`CREATE TABLE IF NOT EXISTS injectable_lots (
            id {{pk}},
            stock_id BIGINT NOT NULL REFERENCES injectable_stock(id),
            code TEXT NOT NULL,
            expiry_date DATE,
            quantity INTEGER NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(stock_id, code)
        );`,
	`CREATE TABLE IF NOT EXISTS specialties (
            id {{pk}},
            name TEXT NOT NULL UNIQUE
        );`,
	`CREATE TABLE IF NOT EXISTS drug_catalog (
            id {{pk}},
            name TEXT NOT NULL UNIQUE,
            category TEXT NOT NULL
        );`,
}

func primaryKey(dialect database.Dialect) string {
	if dialect == database.Postgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Statements returns the schema rendered for dialect.
func Statements(dialect database.Dialect) []string {
	out := make([]string, len(schema))
	for i, stmt := range schema {
		out[i] = strings.ReplaceAll(stmt, "{{pk}}", primaryKey(dialect))
	}
	return out
}

// Run creates the tables the clinic core reads and seeds. Existing tables are left alone.
func Run(ctx context.Context, db *sqlx.DB, dialect database.Dialect) error {
	for _, stmt := range Statements(dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
