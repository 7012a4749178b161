package models

// Sale records one transaction against a Stock item. Name is copied from
// the stock at sale time so history survives the stock being removed.
type Sale struct {
	Base
	Name     string  `gorm:"size:255;not null;index" json:"name"`
	Quantity int     `gorm:"not null;default:0" json:"quantity"`
	Amount   int     `gorm:"not null;default:1" json:"amount"`
	Total    int64   `gorm:"type:bigint;not null;default:0" json:"total"`
	StockID  *string `gorm:"type:uuid;index" json:"item"`

	// Relationships
	Stock *Stock `gorm:"foreignKey:StockID;constraint:OnDelete:SET NULL" json:"-"`
}
