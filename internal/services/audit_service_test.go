package services

import (
	"context"
	"testing"

	"stockroom/internal/logger"
	"stockroom/internal/models"
	"stockroom/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db, true)
	stock := testutil.CreateTestStock(t, db, "Coke", 5, 100)

	svc.Log(context.Background(), user.ID, "CREATE_STOCK", "stock", stock.ID, "127.0.0.1",
		map[string]interface{}{"name": "Coke"})

	var entries []models.AuditLog
	if err := db.Where("user_id = ?", user.ID).Find(&entries).Error; err != nil {
		t.Fatalf("failed to read audit log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Action != "CREATE_STOCK" || entry.ResourceType != "stock" || entry.ResourceID != stock.ID {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Changes != `{"name":"Coke"}` {
		t.Errorf("unexpected changes %s", entry.Changes)
	}
	if entry.RequestID != "" {
		t.Errorf("expected no request ID, got %q", entry.RequestID)
	}
}

func TestAuditLog_RequestID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db, true)

	ctx := logger.WithRequestID(context.Background(), "0190f5a4-0000-7000-8000-0000000000aa")
	svc.Log(ctx, user.ID, "LOGIN", "user", user.ID, "127.0.0.1", nil)

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("failed to read audit log: %v", err)
	}
	if entry.RequestID != "0190f5a4-0000-7000-8000-0000000000aa" {
		t.Errorf("expected request ID on audit entry, got %q", entry.RequestID)
	}
	if entry.Changes != "" {
		t.Errorf("expected no changes, got %q", entry.Changes)
	}
}
