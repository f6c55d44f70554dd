package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"tricket/backend/internal/db"
	"tricket/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := db.NewPool(context.Background(), dsn)
	if err != nil {
		t.Fatalf("db connection: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func insertPurchaseTestUser(ctx context.Context, pool *pgxpool.Pool, tag string) (int64, string, error) {
	email := fmt.Sprintf("buyer-%s-%d@test.local", tag, time.Now().UnixNano())
	code := fmt.Sprintf("ref-%s-%d", tag, time.Now().UnixNano())
	var id int64
	err := pool.QueryRow(ctx, `
INSERT INTO users (first_name, email, password_hash, referral_code)
VALUES ($1, $2, 'x', $3)
RETURNING id;`, "Test "+tag, email, code).Scan(&id)
	return id, code, err
}

func insertPurchaseTestEvent(ctx context.Context, pool *pgxpool.Pool, tag string) (int64, int64, error) {
	email := fmt.Sprintf("org-%s-%d@test.local", tag, time.Now().UnixNano())
	var organizerID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO organizers (name, email, password_hash)
VALUES ($1, $2, 'x')
RETURNING id;`, "Org "+tag, email).Scan(&organizerID); err != nil {
		return 0, 0, err
	}
	var eventID int64
	err := pool.QueryRow(ctx, `
INSERT INTO events (organizer_id, name, show_time, is_paid_event)
VALUES ($1, $2, now() + interval '30 days', true)
RETURNING id;`, organizerID, "Event "+tag).Scan(&eventID)
	return eventID, organizerID, err
}

func insertPurchaseTestTicket(ctx context.Context, pool *pgxpool.Pool, eventID int64, price int64, remaining int) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
INSERT INTO tickets (event_id, name, price, remaining_amount)
VALUES ($1, 'Regular', $2, $3)
RETURNING id;`, eventID, price, remaining).Scan(&id)
	return id, err
}

func paymentTypeID(ctx context.Context, pool *pgxpool.Pool, instant bool) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `SELECT id FROM payment_types WHERE instant_settlement = $1 ORDER BY id LIMIT 1`, instant).Scan(&id)
	return id, err
}

func cleanupPurchaseFixtures(ctx context.Context, pool *pgxpool.Pool, eventID, organizerID int64, userIDs ...int64) {
	_, _ = pool.Exec(ctx, `DELETE FROM transaction_items WHERE ticket_id IN (SELECT id FROM tickets WHERE event_id = $1)`, eventID)
	_, _ = pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = ANY($1)`, userIDs)
	_, _ = pool.Exec(ctx, `DELETE FROM promos_date WHERE event_id = $1`, eventID)
	_, _ = pool.Exec(ctx, `DELETE FROM promos_referral WHERE event_id = $1`, eventID)
	_, _ = pool.Exec(ctx, `DELETE FROM tickets WHERE event_id = $1`, eventID)
	_, _ = pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	_, _ = pool.Exec(ctx, `DELETE FROM organizers WHERE id = $1`, organizerID)
	_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = ANY($1)`, userIDs)
}

func ticketRemaining(ctx context.Context, t *testing.T, pool *pgxpool.Pool, ticketID int64) int {
	t.Helper()
	var remaining int
	if err := pool.QueryRow(ctx, `SELECT remaining_amount FROM tickets WHERE id = $1`, ticketID).Scan(&remaining); err != nil {
		t.Fatalf("remaining_amount: %v", err)
	}
	return remaining
}

// TestCreatePurchaseWithDatePromo verifies create purchase with date promo behavior.
func TestCreatePurchaseWithDatePromo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	userID, _, err := insertPurchaseTestUser(ctx, pool, "datepromo")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "datepromo")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, userID) })

	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 100000, 5)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	var promoID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO promos_date (event_id, discount_percent, starts_at, ends_at)
VALUES ($1, 10, now() - interval '1 day', now() + interval '1 day')
RETURNING id;`, eventID).Scan(&promoID); err != nil {
		t.Fatalf("insert promo: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, true)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	detail, err := repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:        userID,
		TicketID:      ticketID,
		Quantity:      2,
		PaymentTypeID: paymentID,
		DatePromoID:   &promoID,
	})
	if err != nil {
		t.Fatalf("CreatePurchase(): %v", err)
	}

	if !detail.Transaction.Total.Equal(decimal.NewFromInt(190000)) {
		t.Fatalf("expected total 190000, got %s", detail.Transaction.Total)
	}
	if detail.Transaction.Status != models.TransactionStatusPaid {
		t.Fatalf("expected status PAID, got %s", detail.Transaction.Status)
	}
	if len(detail.Items) != 1 || detail.Items[0].Quantity != 2 {
		t.Fatalf("expected one item with quantity 2, got %+v", detail.Items)
	}
	if remaining := ticketRemaining(ctx, t, pool, ticketID); remaining != 3 {
		t.Fatalf("expected remaining 3, got %d", remaining)
	}
}

// TestCreatePurchaseSoldOut verifies create purchase sold out behavior.
func TestCreatePurchaseSoldOut(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	userID, _, err := insertPurchaseTestUser(ctx, pool, "soldout")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "soldout")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, userID) })

	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 50000, 0)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, false)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	_, err = repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:        userID,
		TicketID:      ticketID,
		Quantity:      1,
		PaymentTypeID: paymentID,
	})
	if !errors.Is(err, ErrNotEnoughTickets) {
		t.Fatalf("expected ErrNotEnoughTickets, got %v", err)
	}
	if remaining := ticketRemaining(ctx, t, pool, ticketID); remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", remaining)
	}
}

// TestCreatePurchasePointsNotDebited verifies create purchase points not debited behavior.
func TestCreatePurchasePointsNotDebited(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	userID, _, err := insertPurchaseTestUser(ctx, pool, "points")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "points")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, userID) })

	if _, err := pool.Exec(ctx, `UPDATE users SET points = 5000 WHERE id = $1`, userID); err != nil {
		t.Fatalf("set points: %v", err)
	}
	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 20000, 10)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, true)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	detail, err := repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:        userID,
		TicketID:      ticketID,
		Quantity:      1,
		PaymentTypeID: paymentID,
		UsePoints:     true,
	})
	if err != nil {
		t.Fatalf("CreatePurchase(): %v", err)
	}
	if !detail.Transaction.Total.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected total 15000, got %s", detail.Transaction.Total)
	}

	var points decimal.Decimal
	if err := pool.QueryRow(ctx, `SELECT points FROM users WHERE id = $1`, userID).Scan(&points); err != nil {
		t.Fatalf("points: %v", err)
	}
	if !points.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected points untouched at 5000, got %s", points)
	}
}

// TestCreatePurchaseExpiredDatePromo verifies create purchase expired date promo behavior.
func TestCreatePurchaseExpiredDatePromo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	userID, _, err := insertPurchaseTestUser(ctx, pool, "expired")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "expired")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, userID) })

	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 100000, 5)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	var promoID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO promos_date (event_id, discount_percent, starts_at, ends_at)
VALUES ($1, 10, now() - interval '10 days', now() - interval '1 day')
RETURNING id;`, eventID).Scan(&promoID); err != nil {
		t.Fatalf("insert promo: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, true)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	_, err = repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:        userID,
		TicketID:      ticketID,
		Quantity:      1,
		PaymentTypeID: paymentID,
		DatePromoID:   &promoID,
	})
	if !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got %v", err)
	}
	if remaining := ticketRemaining(ctx, t, pool, ticketID); remaining != 5 {
		t.Fatalf("expected remaining 5, got %d", remaining)
	}
}

// TestCreatePurchaseUnknownReferralCode verifies create purchase unknown referral code behavior.
func TestCreatePurchaseUnknownReferralCode(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	userID, _, err := insertPurchaseTestUser(ctx, pool, "refunknown")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "refunknown")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, userID) })

	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 100000, 5)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, true)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	_, err = repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:        userID,
		TicketID:      ticketID,
		Quantity:      1,
		PaymentTypeID: paymentID,
		ReferralCode:  "no-such-code",
	})
	if !errors.Is(err, ErrReferredUserNotFound) {
		t.Fatalf("expected ErrReferredUserNotFound, got %v", err)
	}
}

// TestCreatePurchaseReferralAwardsPoints verifies create purchase referral awards points behavior.
func TestCreatePurchaseReferralAwardsPoints(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	buyerID, _, err := insertPurchaseTestUser(ctx, pool, "refbuyer")
	if err != nil {
		t.Fatalf("insert buyer: %v", err)
	}
	referrerID, referrerCode, err := insertPurchaseTestUser(ctx, pool, "referrer")
	if err != nil {
		t.Fatalf("insert referrer: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "refaward")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, buyerID, referrerID) })

	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 100000, 5)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	var promoID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO promos_referral (event_id, discount_percent)
VALUES ($1, 20)
RETURNING id;`, eventID).Scan(&promoID); err != nil {
		t.Fatalf("insert referral promo: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, true)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	detail, err := repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:          buyerID,
		TicketID:        ticketID,
		Quantity:        1,
		PaymentTypeID:   paymentID,
		ReferralCode:    referrerCode,
		ReferralPromoID: &promoID,
	})
	if err != nil {
		t.Fatalf("CreatePurchase(): %v", err)
	}
	if !detail.Transaction.Total.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected total 80000, got %s", detail.Transaction.Total)
	}
	if detail.Items[0].ReferringUserID == nil || *detail.Items[0].ReferringUserID != referrerID {
		t.Fatalf("expected referring user %d on item, got %+v", referrerID, detail.Items[0].ReferringUserID)
	}

	var points decimal.Decimal
	var expiresAt *time.Time
	if err := pool.QueryRow(ctx, `SELECT points, points_expires_at FROM users WHERE id = $1`, referrerID).Scan(&points, &expiresAt); err != nil {
		t.Fatalf("referrer points: %v", err)
	}
	if !points.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected referrer points 10000, got %s", points)
	}
	if expiresAt == nil || !expiresAt.After(time.Now().AddDate(0, 7, 0)) {
		t.Fatalf("expected points expiry about 8 months out, got %v", expiresAt)
	}
}

// TestCreatePurchaseConcurrentNoOversell verifies create purchase concurrent no oversell behavior.
func TestCreatePurchaseConcurrentNoOversell(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)

	userID, _, err := insertPurchaseTestUser(ctx, pool, "concurrent")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "concurrent")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, userID) })

	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 10000, 3)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, true)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	const attempts = 6
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreatePurchase(ctx, models.PurchaseParams{
				UserID:        userID,
				TicketID:      ticketID,
				Quantity:      1,
				PaymentTypeID: paymentID,
			})
		}(i)
	}
	wg.Wait()

	succeeded, stockFailures := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrNotEnoughTickets):
			stockFailures++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 {
		t.Fatalf("expected 3 successful purchases, got %d", succeeded)
	}
	if stockFailures != attempts-3 {
		t.Fatalf("expected %d stock failures, got %d", attempts-3, stockFailures)
	}
	if remaining := ticketRemaining(ctx, t, pool, ticketID); remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", remaining)
	}
}

// TestCreatePurchaseRollsBackOnCommitFailure verifies create purchase rolls back on commit failure behavior.
func TestCreatePurchaseRollsBackOnCommitFailure(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := New(pool)
	injected := errors.New("injected failure")
	repo.purchaseCommitHook = func(pgx.Tx) error { return injected }

	userID, _, err := insertPurchaseTestUser(ctx, pool, "rollback")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	eventID, organizerID, err := insertPurchaseTestEvent(ctx, pool, "rollback")
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() { cleanupPurchaseFixtures(ctx, pool, eventID, organizerID, userID) })

	ticketID, err := insertPurchaseTestTicket(ctx, pool, eventID, 10000, 5)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	paymentID, err := paymentTypeID(ctx, pool, true)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}

	_, err = repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:        userID,
		TicketID:      ticketID,
		Quantity:      2,
		PaymentTypeID: paymentID,
	})
	if !errors.Is(err, injected) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	if remaining := ticketRemaining(ctx, t, pool, ticketID); remaining != 5 {
		t.Fatalf("expected decrement rolled back to 5, got %d", remaining)
	}
	var txnCount int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE user_id = $1`, userID).Scan(&txnCount); err != nil {
		t.Fatalf("transaction count: %v", err)
	}
	if txnCount != 0 {
		t.Fatalf("expected no transactions after rollback, got %d", txnCount)
	}
}

// TestCreatePurchaseQuantityOutOfRange verifies create purchase quantity out of range behavior.
func TestCreatePurchaseQuantityOutOfRange(t *testing.T) {
	repo := New(nil)
	_, err := repo.CreatePurchase(context.Background(), models.PurchaseParams{
		UserID:        1,
		TicketID:      1,
		Quantity:      11,
		PaymentTypeID: 1,
	})
	if !errors.Is(err, ErrQuantityOutOfRange) {
		t.Fatalf("expected ErrQuantityOutOfRange, got %v", err)
	}
}
