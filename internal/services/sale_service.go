package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "stockroom/internal/errors"
	"stockroom/internal/logger"
	"stockroom/internal/models"
)

// DateLayout is the only date format accepted by sale listing filters.
const DateLayout = "2006-01-02"

// saleService records sales and keeps stock quantities in step with them.
type saleService struct {
	db           *gorm.DB
	stockService StockServicer
	now          func() time.Time
}

// NewSaleService creates a new SaleServicer.
func NewSaleService(db *gorm.DB, stockService StockServicer) SaleServicer {
	return &saleService{
		db:           db,
		stockService: stockService,
		now:          time.Now,
	}
}

// CreateSale records a sale against the matching stock row and takes the
// sold units out of stock in the same transaction.
func (s *saleService) CreateSale(ctx context.Context, params CreateSaleParams) (*models.Sale, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must be provided.")
	}
	if params.Quantity == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be provided.")
	}
	if params.Quantity < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
	}

	var sale *models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := s.stockService.ResolveForSale(tx, name, params.Price)
		if err != nil {
			return err
		}
		if stock.Quantity == 0 {
			return apperrors.ErrOutOfStock
		}
		if stock.Quantity < params.Quantity {
			return apperrors.ErrQuantityTooHigh
		}

		total, err := saleTotal(stock.PricePerUnit, params.Quantity)
		if err != nil {
			return err
		}

		stockID := stock.ID
		sale = &models.Sale{
			Name:     stock.Name,
			Quantity: params.Quantity,
			Amount:   1,
			Total:    total,
			StockID:  &stockID,
		}
		if err := tx.Create(sale).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.stockService.AdjustStock(tx, stock, params.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSaleByID retrieves a sale by ID
func (s *saleService) GetSaleByID(ctx context.Context, id string) (*models.Sale, error) {
	return findSale(s.db.WithContext(ctx), id)
}

// ListSales returns the sales made on a calendar day, or across an inclusive
// range of days, oldest first. Days are in the server's local time zone.
func (s *saleService) ListSales(ctx context.Context, query SaleQuery) ([]models.Sale, error) {
	now := s.now()
	loc := now.Location()

	dateStr := query.Date
	if dateStr == "" {
		dateStr = now.Format(DateLayout)
	}

	var end time.Time
	if query.EndDate != "" {
		parsed, err := time.ParseInLocation(DateLayout, query.EndDate, loc)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidDate, "Invalid end date format. Use YYYY-MM-DD.")
		}
		end = parsed
	}

	start, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}

	if query.EndDate == "" {
		end = start
	} else if end.Before(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	q := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end.AddDate(0, 0, 1))
	if query.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query.Name)+"%")
	}

	sales := []models.Sale{}
	if err := q.Order("created_at ASC").Find(&sales).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sales, nil
}

// EditSale changes the quantity of a recorded sale. The old quantity is
// handed back to stock before the new one is taken, and the total is
// recomputed at the stock's current price. A nil or zero quantity leaves
// the sale untouched.
func (s *saleService) EditSale(ctx context.Context, id string, newQuantity *int) (*models.Sale, error) {
	sale, err := s.GetSaleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if newQuantity == nil || *newQuantity == 0 {
		return sale, nil
	}
	if *newQuantity < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := findSale(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if locked.StockID == nil {
			return apperrors.ErrStockMissing
		}

		stock, err := s.stockService.LockStock(tx, *locked.StockID)
		if err != nil {
			if errors.Is(err, apperrors.ErrStockNotFound) {
				return apperrors.Wrap(apperrors.ErrStockMissing, err)
			}
			return err
		}

		if *newQuantity > stock.Quantity+locked.Quantity {
			return apperrors.ErrQuantityTooHigh
		}
		total, err := saleTotal(stock.PricePerUnit, *newQuantity)
		if err != nil {
			return err
		}
		if err := s.stockService.AdjustStock(tx, stock, *newQuantity-locked.Quantity); err != nil {
			return err
		}

		if err := tx.Model(locked).Updates(map[string]interface{}{
			"quantity": *newQuantity,
			"total":    total,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		locked.Quantity = *newQuantity
		locked.Total = total

		sale = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// DeleteSale removes a sale and returns its units to stock. When the stock
// row is already gone there is nothing to restore; the sale is still
// deleted and the gap is logged.
func (s *saleService) DeleteSale(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := findSale(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}

		if sale.StockID == nil {
			logger.FromContext(ctx).Warnw("deleting sale without stock reference, skipping stock adjustment",
				"sale_id", sale.ID, "name", sale.Name, "quantity", sale.Quantity)
		} else {
			stock, err := s.stockService.LockStock(tx, *sale.StockID)
			switch {
			case err == nil:
				if err := s.stockService.AdjustStock(tx, stock, -sale.Quantity); err != nil {
					return err
				}
			case errors.Is(err, apperrors.ErrStockNotFound):
				logger.FromContext(ctx).Warnw("stock for sale no longer exists, skipping stock adjustment",
					"sale_id", sale.ID, "stock_id", *sale.StockID, "quantity", sale.Quantity)
			default:
				return err
			}
		}

		if err := tx.Delete(sale).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// saleTotal prices quantity units, refusing totals that do not fit in int64.
func saleTotal(pricePerUnit int64, quantity int) (int64, error) {
	if quantity > 0 && pricePerUnit > math.MaxInt64/int64(quantity) {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "sale total is too large")
	}
	return pricePerUnit * int64(quantity), nil
}

func findSale(db *gorm.DB, id string) (*models.Sale, error) {
	var sale models.Sale
	if err := db.Where("id = ?", id).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sale, nil
}
