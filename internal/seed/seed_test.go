package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"clinic/m/domain"
	"clinic/m/internal/auth"
	"clinic/m/internal/database"
	"clinic/m/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := database.Open(ctx, "sqlite://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(ctx, db, dialect); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func defaultData(t *testing.T) Data {
	t.Helper()
	data, err := Defaults(Admin{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return data
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

type counts struct {
	users, stock, lots, specialties, catalog int
}

func snapshot(t *testing.T, db *sqlx.DB) counts {
	return counts{
		users:       count(t, db, "users"),
		stock:       count(t, db, "injectable_stock"),
		lots:        count(t, db, "injectable_lots"),
		specialties: count(t, db, "specialties"),
		catalog:     count(t, db, "drug_catalog"),
	}
}

func TestRun_FreshDatabase(t *testing.T) {
	db := newTestDB(t)
	data := defaultData(t)

	report, err := Run(context.Background(), db, data, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := snapshot(t, db)
	want := counts{users: 1, stock: 80, lots: 80, specialties: 5, catalog: 75}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
	if !report.AdminCreated || report.StockItems != 80 || report.Lots != 80 || report.Specialties != 5 || report.Catalog != 75 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := newTestDB(t)
	data := defaultData(t)
	ctx := context.Background()

	if _, err := Run(ctx, db, data, zerolog.Nop()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := snapshot(t, db)

	report, err := Run(ctx, db, data, zerolog.Nop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second := snapshot(t, db); second != first {
		t.Errorf("counts changed: first %+v, second %+v", first, second)
	}
	if report != (Report{}) {
		t.Errorf("second run inserted rows: %+v", report)
	}
}

func TestRun_AdminAccount(t *testing.T) {
	db := newTestDB(t)
	data := defaultData(t)
	data.Admin = Admin{Username: "root", Password: "s3cret"}

	if _, err := Run(context.Background(), db, data, zerolog.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var users []domain.User
	if err := db.Select(&users, `SELECT id, username, password, role FROM users`); err != nil {
		t.Fatalf("select users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
	u := users[0]
	if u.Username != "root" || !u.IsAdmin() {
		t.Errorf("unexpected admin %+v", u)
	}
	if u.Password == "s3cret" || !auth.CheckPassword(u.Password, "s3cret") {
		t.Error("expected stored password to be a matching hash")
	}
}

func TestRun_AdminSkippedWhenAnyUserExists(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Exec(`INSERT INTO users (username, password, role) VALUES ('maria', 'x', ?)`, domain.RoleReception); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	report, err := Run(context.Background(), db, defaultData(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.AdminCreated {
		t.Error("admin must not be created when an account exists")
	}
	if n := count(t, db, "users"); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestRun_StockMatchedIgnoringCase(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	data := defaultData(t)
	data.Catalog = nil
	data.Injectables = []string{"Dipirona injetavel"}

	if _, err := Run(ctx, db, data, zerolog.Nop()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	data.Injectables = []string{"DIPIRONA INJETAVEL"}
	report, err := Run(ctx, db, data, zerolog.Nop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if n := count(t, db, "injectable_stock"); n != 1 {
		t.Errorf("expected 1 stock item, got %d", n)
	}
	if n := count(t, db, "injectable_lots"); n != 1 {
		t.Errorf("expected 1 lot, got %d", n)
	}
	if report.StockItems != 0 || report.Lots != 0 {
		t.Errorf("unexpected report %+v", report)
	}

	var name string
	if err := db.Get(&name, `SELECT name FROM injectable_stock`); err != nil {
		t.Fatalf("select: %v", err)
	}
	if name != "Dipirona injetavel" {
		t.Errorf("original name must be kept, got %q", name)
	}
}

func TestRun_OpeningLot(t *testing.T) {
	db := newTestDB(t)
	if _, err := Run(context.Background(), db, defaultData(t), zerolog.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var lots []domain.InjectableLot
	if err := db.Select(&lots, `SELECT id, stock_id, code, expiry_date, quantity, created_at FROM injectable_lots`); err != nil {
		t.Fatalf("select lots: %v", err)
	}
	seen := make(map[int64]bool)
	for _, lot := range lots {
		if lot.Code != "INI-001" || lot.Quantity != 20 || lot.ExpiryDate != nil {
			t.Errorf("unexpected lot %+v", lot)
		}
		if seen[lot.StockID] {
			t.Errorf("duplicate lot for stock %d", lot.StockID)
		}
		seen[lot.StockID] = true
	}
	if len(seen) != count(t, db, "injectable_stock") {
		t.Errorf("expected one lot per stock item, got %d lots", len(seen))
	}
}

func TestRun_LotAddedToExistingStock(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Exec(`INSERT INTO injectable_stock (name, unit) VALUES ('BENZETACIL', 'ampola')`); err != nil {
		t.Fatalf("insert stock: %v", err)
	}
	data := defaultData(t)
	data.Catalog = nil
	data.Injectables = []string{"Benzetacil"}

	report, err := Run(context.Background(), db, data, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.StockItems != 0 || report.Lots != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	var unit string
	if err := db.Get(&unit, `SELECT unit FROM injectable_stock`); err != nil {
		t.Fatalf("select: %v", err)
	}
	if unit != "ampola" {
		t.Errorf("existing stock must not be updated, got unit %q", unit)
	}
}

func TestRun_SpecialtiesAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Exec(`INSERT INTO specialties (name) VALUES ('Pediatria')`); err != nil {
		t.Fatalf("insert specialty: %v", err)
	}

	report, err := Run(context.Background(), db, defaultData(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := count(t, db, "specialties"); n != 1 {
		t.Errorf("expected specialties untouched, got %d rows", n)
	}
	if report.Specialties != 0 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestRun_CatalogExactNames(t *testing.T) {
	db := newTestDB(t)
	data := defaultData(t)
	data.Catalog = append(data.Catalog, data.Catalog[0], CatalogItem{Name: "paracetamol", Category: "Outros"})

	report, err := Run(context.Background(), db, data, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// the lowercase duplicate is a distinct exact name
	if report.Catalog != 76 {
		t.Errorf("expected 76 catalog rows, got %d", report.Catalog)
	}
}

func TestRun_ErrorAborts(t *testing.T) {
	ctx := context.Background()
	db, _, err := database.Open(ctx, "sqlite://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_, err = Run(ctx, db, defaultData(t), zerolog.Nop())
	if err == nil {
		t.Fatal("expected error without schema")
	}
	if !strings.Contains(err.Error(), "seed admin") {
		t.Errorf("expected error to name the failing step, got %v", err)
	}
}
