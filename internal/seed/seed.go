// Package seed fills an empty clinic database with its reference rows: the
// administrator account, the injectables stock with an opening lot per item,
// the specialties and the drug catalog. Every step is safe to repeat.
package seed

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"clinic/m/domain"
	"clinic/m/internal/auth"
)

// Report counts the rows inserted by one Run.
type Report struct {
	AdminCreated bool
	StockItems   int
	Lots         int
	Specialties  int
	Catalog      int
}

// Run executes the four seed steps in order, committing after each one.
// The first error aborts the run.
func Run(ctx context.Context, db *sqlx.DB, data Data, log zerolog.Logger) (Report, error) {
	var report Report

	steps := []struct {
		name string
		run  func(tx *sqlx.Tx) error
	}{
		{"admin", func(tx *sqlx.Tx) (err error) {
			report.AdminCreated, err = seedAdmin(ctx, tx, data.Admin)
			return err
		}},
		{"injectables", func(tx *sqlx.Tx) (err error) {
			report.StockItems, report.Lots, err = seedInjectables(ctx, tx, data)
			return err
		}},
		{"specialties", func(tx *sqlx.Tx) (err error) {
			report.Specialties, err = seedSpecialties(ctx, tx, data.Specialties)
			return err
		}},
		{"catalog", func(tx *sqlx.Tx) (err error) {
			report.Catalog, err = seedCatalog(ctx, tx, data.Catalog)
			return err
		}},
	}

	for _, step := range steps {
		if err := inTx(ctx, db, step.run); err != nil {
			return report, fmt.Errorf("seed %s: %w", step.name, err)
		}
		log.Debug().Str("step", step.name).Msg("seed step committed")
	}

	log.Info().
		Bool("admin_created", report.AdminCreated).
		Int("stock_items", report.StockItems).
		Int("lots", report.Lots).
		Int("specialties", report.Specialties).
		Int("catalog", report.Catalog).
		Msg("seed complete")
	return report, nil
}

// seedAdmin creates the administrator unless any account exists.
func seedAdmin(ctx context.Context, tx *sqlx.Tx, admin Admin) (bool, error) {
	_, created, err := ensureRow(ctx, tx, keyedRow{
		table:   "users",
		where:   "1 = 1",
		columns: []string{"username", "password", "role"},
		build: func() ([]any, error) {
			hashed, err := auth.HashPassword(admin.Password)
			if err != nil {
				return nil, err
			}
			return []any{admin.Username, hashed, domain.RoleAdmin}, nil
		},
	})
	return created, err
}

// seedInjectables ensures a stock item per name, matched ignoring case, and
// an opening lot for each of them.
func seedInjectables(ctx context.Context, tx *sqlx.Tx, data Data) (items, lots int, err error) {
	for _, name := range data.StockNames() {
		stockID, created, err := ensureRow(ctx, tx, keyedRow{
			table:   "injectable_stock",
			where:   "LOWER(name) = LOWER(?)",
			keyArgs: []any{name},
			columns: []string{"name", "unit"},
			build:   values(name, data.Stock.Unit),
		})
		if err != nil {
			return items, lots, err
		}
		if created {
			items++
		}

		_, created, err = ensureRow(ctx, tx, keyedRow{
			table:   "injectable_lots",
			where:   "stock_id = ? AND code = ?",
			keyArgs: []any{stockID, data.Stock.LotCode},
			columns: []string{"stock_id", "code", "expiry_date", "quantity"},
			build:   values(stockID, data.Stock.LotCode, nil, data.Stock.LotQuantity),
		})
		if err != nil {
			return items, lots, err
		}
		if created {
			lots++
		}
	}
	return items, lots, nil
}

// seedSpecialties inserts the specialty list only when the table is empty.
// A partially filled table is left as it is.
func seedSpecialties(ctx context.Context, tx *sqlx.Tx, names []string) (int, error) {
	exists, err := anyRow(ctx, tx, "specialties")
	if err != nil || exists {
		return 0, err
	}
	inserted := 0
	for _, name := range names {
		_, created, err := ensureRow(ctx, tx, keyedRow{
			table:   "specialties",
			where:   "name = ?",
			keyArgs: []any{name},
			columns: []string{"name"},
			build:   values(name),
		})
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}

// seedCatalog inserts every catalog entry whose exact name is missing.
func seedCatalog(ctx context.Context, tx *sqlx.Tx, items []CatalogItem) (int, error) {
	inserted := 0
	for _, item := range items {
		_, created, err := ensureRow(ctx, tx, keyedRow{
			table:   "drug_catalog",
			where:   "name = ?",
			keyArgs: []any{item.Name},
			columns: []string{"name", "category"},
			build:   values(item.Name, item.Category),
		})
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}
