package domain

import "time"

// InjectableStock is a stock item of the injectables room. Names are unique
// regardless of case.
type InjectableStock struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Unit      string `db:"unit" json:"unit"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type InjectableLot struct {
	ID         int64      `db:"id" json:"id"`
	StockID    int64      `db:"stock_id" json:"stock_id"`
	Code       string     `db:"code" json:"code"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	Quantity   int64      `db:"quantity" json:"quantity"`
	CreatedAt  string     `db:"created_at" json:"created_at"`
}

// InjectableBalance is a stock item together with the quantity summed over its lots.
type InjectableBalance struct {
	InjectableStock
	Lots     int64 `db:"lots" json:"lots"`
	Quantity int64 `db:"quantity" json:"quantity"`
}
