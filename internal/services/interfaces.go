package services

import (
	"context"

	"gorm.io/gorm"

	"stockroom/internal/models"
	"stockroom/internal/pagination"
)

// UserServicer defines the contract for staff account logic.
type UserServicer interface {
	CreateUser(ctx context.Context, username, password string, isStaff bool) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AttemptLogin(ctx context.Context, username, password string) (*models.User, error)
	SetPassword(ctx context.Context, username, password string, isStaff bool) (*models.User, error)
}

// StockServicer is the inventory store: lookups by name and price, plus the
// guarded quantity adjustment used by sale reconciliation.
type StockServicer interface {
	CreateStock(ctx context.Context, name string, quantity int, pricePerUnit int64) (*models.Stock, error)
	GetStockByID(ctx context.Context, id string) (*models.Stock, error)
	ListStocks(ctx context.Context, page pagination.PageRequest, name string) (*pagination.PageResponse[models.Stock], error)
	FindByName(ctx context.Context, name string) ([]models.Stock, error)
	FindByNameAndPrice(ctx context.Context, name string, pricePerUnit int64) (*models.Stock, error)

	// ResolveForSale and AdjustStock run inside the caller's transaction.
	ResolveForSale(tx *gorm.DB, name string, price *int64) (*models.Stock, error)
	LockStock(tx *gorm.DB, id string) (*models.Stock, error)
	AdjustStock(tx *gorm.DB, stock *models.Stock, sold int) error
}

// CreateSaleParams carries the input of a new sale. Price is only consulted
// when more than one stock row shares Name.
type CreateSaleParams struct {
	Name     string
	Quantity int
	Price    *int64
}

// SaleQuery holds the raw list filters as received from the caller.
// Dates are YYYY-MM-DD; an empty Date means today.
type SaleQuery struct {
	Date    string
	EndDate string
	Name    string
}

// SaleServicer defines the contract for the sale ledger and its
// reconciliation against stock.
type SaleServicer interface {
	CreateSale(ctx context.Context, params CreateSaleParams) (*models.Sale, error)
	GetSaleByID(ctx context.Context, id string) (*models.Sale, error)
	ListSales(ctx context.Context, query SaleQuery) ([]models.Sale, error)
	EditSale(ctx context.Context, id string, newQuantity *int) (*models.Sale, error)
	DeleteSale(ctx context.Context, id string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
