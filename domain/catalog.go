package domain

// CatalogEntry is one row of the reference drug catalog used by prescriptions.
type CatalogEntry struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
}
