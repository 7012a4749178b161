package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "stockroom/internal/errors"
	"stockroom/internal/models"
	"stockroom/internal/pagination"
)

// stockService handles inventory lookups and quantity adjustments.
type stockService struct {
	db *gorm.DB
}

// NewStockService creates a new StockServicer.
func NewStockService(db *gorm.DB) StockServicer {
	return &stockService{db: db}
}

// CreateStock registers a new item at a given price.
func (s *stockService) CreateStock(ctx context.Context, name string, quantity int, pricePerUnit int64) (*models.Stock, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must be provided.")
	}
	if quantity < 0 || quantity > models.MaxStockQuantity {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("quantity must be between 0 and %d", models.MaxStockQuantity))
	}
	if pricePerUnit < 0 || pricePerUnit > models.MaxPricePerUnit {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("price_per_unit must be between 0 and %d", models.MaxPricePerUnit))
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Stock{}).
		Where("name = ? AND price_per_unit = ?", name, pricePerUnit).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateStock
	}

	stock := &models.Stock{
		Name:         name,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
	}
	if err := db.Create(stock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stock, nil
}

// GetStockByID retrieves a stock item by ID
func (s *stockService) GetStockByID(ctx context.Context, id string) (*models.Stock, error) {
	var stock models.Stock
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStockNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stock, nil
}

// ListStocks returns a page of stock items, optionally filtered by a
// case-insensitive name fragment.
func (s *stockService) ListStocks(ctx context.Context, page pagination.PageRequest, name string) (*pagination.PageResponse[models.Stock], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Stock{})
	if name != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	base = base.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var stocks []models.Stock
	if err := base.Scopes(pagination.Paginate(page)).
		Order("name ASC, price_per_unit ASC").
		Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(stocks, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// FindByName returns every stock row with exactly this name, cheapest first.
func (s *stockService) FindByName(ctx context.Context, name string) ([]models.Stock, error) {
	return findByName(s.db.WithContext(ctx), name)
}

// FindByNameAndPrice returns the stock row for a name/price pair.
func (s *stockService) FindByNameAndPrice(ctx context.Context, name string, pricePerUnit int64) (*models.Stock, error) {
	var stock models.Stock
	if err := s.db.WithContext(ctx).
		Where("name = ? AND price_per_unit = ?", name, pricePerUnit).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stock, nil
}

// ResolveForSale picks the stock row a sale of name is made against and
// locks it for the rest of tx. A single match wins regardless of price;
// several matches need a non-zero price to tell them apart.
func (s *stockService) ResolveForSale(tx *gorm.DB, name string, price *int64) (*models.Stock, error) {
	matches, err := findByName(tx.Clauses(clause.Locking{Strength: "UPDATE"}), name)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, apperrors.ErrItemNotFound
	case 1:
		return &matches[0], nil
	}

	if price == nil || *price == 0 {
		return nil, apperrors.ErrPriceRequired
	}
	for i := range matches {
		if matches[i].PricePerUnit == *price {
			return &matches[i], nil
		}
	}
	return nil, apperrors.ErrItemNotFound
}

// LockStock loads a stock row by ID with a row lock held until tx ends.
func (s *stockService) LockStock(tx *gorm.DB, id string) (*models.Stock, error) {
	var stock models.Stock
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStockNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stock, nil
}

// AdjustStock moves sold units from on-hand to sold; a negative value moves
// them back. The update only applies while enough units are on hand, so
// quantity never drops below zero even if another writer got there first.
func (s *stockService) AdjustStock(tx *gorm.DB, stock *models.Stock, sold int) error {
	result := tx.Model(&models.Stock{}).
		Where("id = ? AND quantity >= ?", stock.ID, sold).
		Updates(map[string]interface{}{
			"quantity":      gorm.Expr("quantity - ?", sold),
			"quantity_sold": gorm.Expr("quantity_sold + ?", sold),
		})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrQuantityTooHigh
	}

	stock.Quantity -= sold
	stock.QuantitySold += sold
	return nil
}

func findByName(db *gorm.DB, name string) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := db.Where("name = ?", name).Order("price_per_unit ASC").Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stocks, nil
}
