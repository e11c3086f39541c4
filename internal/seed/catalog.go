package seed

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

//go:embed catalog.csv
var catalogCSV string

// CatalogItem is one (name, category) pair of the reference drug catalog.
type CatalogItem struct {
	Name     string
	Category string
}

// LoadCatalog parses a two column name,category CSV with a header row.
// Rows with an empty name are skipped.
func LoadCatalog(r io.Reader) ([]CatalogItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	var items []CatalogItem
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		items = append(items, CatalogItem{Name: name, Category: strings.TrimSpace(record[1])})
	}
	return items, nil
}

// DefaultCatalog returns the bundled catalog.
func DefaultCatalog() ([]CatalogItem, error) {
	return LoadCatalog(strings.NewReader(catalogCSV))
}
