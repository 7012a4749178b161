package testutil

import (
	"errors"
	"testing"

	apperrors "stockroom/internal/errors"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertStockLevels checks the on-hand and sold counts of a stock row.
func AssertStockLevels(t *testing.T, db *gorm.DB, id string, quantity, sold int) {
	t.Helper()

	stock := ReloadStock(t, db, id)
	if stock.Quantity != quantity {
		t.Errorf("expected stock quantity %d, got %d", quantity, stock.Quantity)
	}
	if stock.QuantitySold != sold {
		t.Errorf("expected quantity sold %d, got %d", sold, stock.QuantitySold)
	}
}
