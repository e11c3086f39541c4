package seed

import (
	"fmt"
	"sort"
)

// Admin holds the credentials of the account created on an empty database.
type Admin struct {
	Username string
	Password string
}

// Stock describes how injectable stock items and their opening lot are created.
type Stock struct {
	Unit        string
	LotCode     string
	LotQuantity int64
}

// Data is everything the seeder writes. Build it with Defaults and adjust
// fields before calling Run.
type Data struct {
	Admin       Admin
	Injectables []string
	Stock       Stock
	Specialties []string
	Catalog     []CatalogItem
}

// Defaults returns the reference data a fresh clinic database starts with.
func Defaults(admin Admin) (Data, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return Data{}, fmt.Errorf("load bundled catalog: %w", err)
	}
	return Data{
		Admin: admin,
		Injectables: []string{
			"Dipirona injetavel",
			"Diclofenaco injetavel",
			"Dexametasona injetavel",
			"Ceftriaxona injetavel",
			"Benzetacil",
			"Hidrocortisona",
		},
		Stock: Stock{
			Unit:        "unidade",
			LotCode:     "INI-001",
			LotQuantity: 20,
		},
		Specialties: []string{
			"Clinico",
			"Dermatologia",
			"Psiquiatria",
			"Injetaveis",
			"Outros",
		},
		Catalog: catalog,
	}, nil
}

// StockNames is the sorted union of the injectable names and every catalog
// name. Duplicates are matched exactly.
func (d Data) StockNames() []string {
	set := make(map[string]struct{}, len(d.Injectables)+len(d.Catalog))
	for _, name := range d.Injectables {
		set[name] = struct{}{}
	}
	for _, item := range d.Catalog {
		set[item.Name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
