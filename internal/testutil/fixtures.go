package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"stockroom/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with a unique username.
func CreateTestUser(t *testing.T, db *gorm.DB, isStaff bool) *models.User {
	t.Helper()
	return CreateTestUserWithUsername(t, db, fmt.Sprintf("user%d", nextID()), isStaff)
}

// CreateTestUserWithUsername creates an active user with the given username.
func CreateTestUserWithUsername(t *testing.T, db *gorm.DB, username string, isStaff bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hash),
		IsStaff:  isStaff,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestStock creates a stock row for name at pricePerUnit.
func CreateTestStock(t *testing.T, db *gorm.DB, name string, quantity int, pricePerUnit int64) *models.Stock {
	t.Helper()

	stock := &models.Stock{
		Name:         name,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("failed to create test stock: %v", err)
	}
	return stock
}

// CreateTestSale inserts a sale against stock without touching the stock
// quantities. A zero createdAt means now.
func CreateTestSale(t *testing.T, db *gorm.DB, stock *models.Stock, quantity int, createdAt time.Time) *models.Sale {
	t.Helper()

	stockID := stock.ID
	sale := &models.Sale{
		Name:     stock.Name,
		Quantity: quantity,
		Amount:   1,
		Total:    stock.PricePerUnit * int64(quantity),
		StockID:  &stockID,
	}
	sale.CreatedAt = createdAt
	if err := db.Create(sale).Error; err != nil {
		t.Fatalf("failed to create test sale: %v", err)
	}
	return sale
}

// ReloadStock reads the current state of a stock row, including soft-deleted rows.
func ReloadStock(t *testing.T, db *gorm.DB, id string) *models.Stock {
	t.Helper()

	var stock models.Stock
	if err := db.Unscoped().Where("id = ?", id).First(&stock).Error; err != nil {
		t.Fatalf("failed to reload stock %s: %v", id, err)
	}
	return &stock
}
