package seed

import (
	"sort"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	items, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 75 {
		t.Errorf("expected 75 catalog entries, got %d", len(items))
	}

	names := make(map[string]bool)
	categories := make(map[string]bool)
	for _, item := range items {
		if names[item.Name] {
			t.Errorf("duplicate catalog name %q", item.Name)
		}
		names[item.Name] = true
		categories[item.Category] = true
	}
	if len(categories) != 10 {
		t.Errorf("expected 10 categories, got %d", len(categories))
	}
	if !names["Ácido fólico"] || !names["Codeína + Paracetamol"] {
		t.Error("expected accented and compound names to survive parsing")
	}
}

func TestLoadCatalog(t *testing.T) {
	in := "name,category\nParacetamol,Analgésicos\n ,Vazio\n\"Amoxicilina, 500mg\",Antibióticos\n"
	items, err := LoadCatalog(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[1].Name != "Amoxicilina, 500mg" || items[1].Category != "Antibióticos" {
		t.Errorf("unexpected item %+v", items[1])
	}
}

func TestLoadCatalog_Malformed(t *testing.T) {
	if _, err := LoadCatalog(strings.NewReader("name,category\nonly-one-field\n")); err == nil {
		t.Fatal("expected error for short row")
	}
	if _, err := LoadCatalog(strings.NewReader("")); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestStockNames(t *testing.T) {
	data, err := Defaults(Admin{})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	names := data.StockNames()

	// Hidrocortisona is both an injectable and a catalog entry.
	if len(names) != 80 {
		t.Errorf("expected 80 stock names, got %d", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Error("stock names must be sorted")
	}
}
