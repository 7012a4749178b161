package services

import (
	"context"
	"testing"

	"stockroom/internal/models"
	"stockroom/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser(ctx, " Alice ", "s3cret", true)
		testutil.AssertNoError(t, err)

		if user.Username != "alice" {
			t.Errorf("expected normalized username alice, got %q", user.Username)
		}
		if user.Password == "s3cret" {
			t.Error("password must be stored hashed")
		}
		if !user.IsStaff || !user.IsActive {
			t.Errorf("expected active staff user, got %+v", user)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser(ctx, "alice", "s3cret", false)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateUser(ctx, "ALICE", "other", false)
		testutil.AssertAppError(t, err, "DUPLICATE_USERNAME")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser(ctx, "", "s3cret", false)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateUser(ctx, "alice", "", false)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAttemptLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		created := testutil.CreateTestUserWithUsername(t, db, "clerk", false)

		user, err := svc.AttemptLogin(ctx, "Clerk", testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
		if user.LastLoginAt == nil {
			t.Error("expected last_login_at to be set")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestUserWithUsername(t, db, "clerk", false)

		_, err := svc.AttemptLogin(ctx, "clerk", "nope")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin(ctx, "ghost", testutil.TestPassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("inactive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUserWithUsername(t, db, "clerk", false)
		db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false)

		_, err := svc.AttemptLogin(ctx, "clerk", testutil.TestPassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	created, err := svc.SetPassword(ctx, "admin", "first", false)
	testutil.AssertNoError(t, err)

	updated, err := svc.SetPassword(ctx, "admin", "second", true)
	testutil.AssertNoError(t, err)
	if updated.ID != created.ID {
		t.Errorf("expected the same user to be updated")
	}
	if !updated.IsStaff {
		t.Error("expected staff flag to be granted")
	}

	_, err = svc.AttemptLogin(ctx, "admin", "first")
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	_, err = svc.AttemptLogin(ctx, "admin", "second")
	testutil.AssertNoError(t, err)
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	created := testutil.CreateTestUser(t, db, false)

	user, err := svc.GetUserByID(ctx, created.ID)
	testutil.AssertNoError(t, err)
	if user.Username != created.Username {
		t.Errorf("expected %s, got %s", created.Username, user.Username)
	}

	_, err = svc.GetUserByID(ctx, "0190f5a4-0000-7000-8000-000000000000")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
