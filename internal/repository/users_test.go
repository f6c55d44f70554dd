package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tricket/backend/internal/models"

	"github.com/shopspring/decimal"
)

// TestCreateUserWithReferrer verifies create user with referrer behavior.
func TestCreateUserWithReferrer(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	referrerID, referrerCode, err := insertPurchaseTestUser(ctx, pool, "regref")
	if err != nil {
		t.Fatalf("insert referrer: %v", err)
	}

	suffix := time.Now().UnixNano()
	user, err := repo.CreateUser(ctx, models.RegisterUserParams{
		FirstName:    "New",
		Email:        fmt.Sprintf("new-%d@test.local", suffix),
		PasswordHash: "x",
		ReferralCode: fmt.Sprintf("newcode-%d", suffix),
		ReferrerCode: referrerCode,
	})
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, referrerID)
	})

	if !user.RegisterCoupon {
		t.Fatalf("expected new user to get register coupon")
	}

	var points decimal.Decimal
	if err := pool.QueryRow(ctx, `SELECT points FROM users WHERE id = $1`, referrerID).Scan(&points); err != nil {
		t.Fatalf("referrer points: %v", err)
	}
	if !points.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected referrer points 10000, got %s", points)
	}
}

// TestCreateUserUnknownReferrer verifies create user unknown referrer behavior.
func TestCreateUserUnknownReferrer(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	suffix := time.Now().UnixNano()
	_, err := repo.CreateUser(ctx, models.RegisterUserParams{
		FirstName:    "New",
		Email:        fmt.Sprintf("orphan-%d@test.local", suffix),
		PasswordHash: "x",
		ReferralCode: fmt.Sprintf("orphancode-%d", suffix),
		ReferrerCode: "no-such-referrer",
	})
	if !errors.Is(err, ErrReferredUserNotFound) {
		t.Fatalf("expected ErrReferredUserNotFound, got %v", err)
	}
}

// TestCreateUserDuplicateEmail verifies create user duplicate email behavior.
func TestCreateUserDuplicateEmail(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("dup-%d@test.local", suffix)
	first, err := repo.CreateUser(ctx, models.RegisterUserParams{
		FirstName:    "First",
		Email:        email,
		PasswordHash: "x",
		ReferralCode: fmt.Sprintf("dupcode-a-%d", suffix),
	})
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, first.ID)
	})

	_, err = repo.CreateUser(ctx, models.RegisterUserParams{
		FirstName:    "Second",
		Email:        email,
		PasswordHash: "x",
		ReferralCode: fmt.Sprintf("dupcode-b-%d", suffix),
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
