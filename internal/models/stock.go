package models

import "math"

// Upper bounds for stock rows. Quantities are stored as INTEGER.
const (
	MaxStockQuantity       = math.MaxInt32
	MaxPricePerUnit  int64 = 1_000_000_000_000
)

// Stock is an inventory item. The same name may be stocked at several
// prices; (name, price_per_unit) is unique.
type Stock struct {
	Base
	Name         string `gorm:"size:255;not null;uniqueIndex:idx_stocks_name_price" json:"name"`
	Quantity     int    `gorm:"not null;default:0" json:"quantity"`
	PricePerUnit int64  `gorm:"type:bigint;not null;default:0;uniqueIndex:idx_stocks_name_price" json:"price_per_unit"`
	QuantitySold int    `gorm:"not null;default:0" json:"quantity_sold"`
}
