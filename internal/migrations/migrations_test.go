package migrations

import (
	"context"
	"strings"
	"testing"

	"clinic/m/internal/database"
)

func TestStatements_Dialect(t *testing.T) {
	for _, stmt := range Statements(database.Postgres) {
		if strings.Contains(stmt, "AUTOINCREMENT") || strings.Contains(stmt, "{{pk}}") {
			t.Errorf("postgres statement not rendered: %s", stmt)
		}
	}
	for _, stmt := range Statements(database.SQLite) {
		if strings.Contains(stmt, "BIGSERIAL") || strings.Contains(stmt, "{{pk}}") {
			t.Errorf("sqlite statement not rendered: %s", stmt)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := database.Open(ctx, "sqlite://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := Run(ctx, db, dialect); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	var tables []string
	if err := db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`); err != nil {
		t.Fatalf("list tables: %v", err)
	}
	want := []string{"drug_catalog", "injectable_lots", "injectable_stock", "specialties", "users"}
	if strings.Join(tables, ",") != strings.Join(want, ",") {
		t.Errorf("tables = %v, want %v", tables, want)
	}
}

func TestRun_StockNameUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := database.Open(ctx, "sqlite://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := Run(ctx, db, dialect); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO injectable_stock (name, unit) VALUES ('Benzetacil', 'unidade')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO injectable_stock (name, unit) VALUES ('BENZETACIL', 'unidade')`); err == nil {
		t.Error("expected unique violation for name differing only in case")
	}
}
