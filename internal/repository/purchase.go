package repository

import (
	"context"
	"errors"
	"time"

	"tricket/backend/internal/models"
	"tricket/backend/internal/pricing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrPromoNotFound         = errors.New("promotion not found")
	ErrReferralPromoNotFound = errors.New("referral promotion not found")
	ErrReferredUserNotFound  = errors.New("referred user not found")
	ErrPaymentTypeNotFound   = errors.New("payment type not found")
	ErrQuantityOutOfRange    = errors.New("quantity out of range")
	ErrNotEnoughTickets      = errors.New("not enough tickets available")
)

// Referral reward granted to the referring user on every purchase that
// resolved their code.
var referralRewardPoints = decimal.NewFromInt(10000)

const referralRewardTTLMonths = 8

// CreatePurchase runs the whole purchase in one transaction: resolve
// discounts, price the line, write the ledger, decrement stock, credit the
// referrer, burn the coupon. Any failure rolls everything back.
func (r *Repository) CreatePurchase(ctx context.Context, params models.PurchaseParams) (models.TransactionDetail, error) {
	if params.Quantity < 1 || params.Quantity > pricing.MaxQuantityPerPurchase {
		return models.TransactionDetail{}, ErrQuantityOutOfRange
	}

	var out models.TransactionDetail
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		return r.createPurchaseTx(ctx, tx, params, &out)
	})
	if err != nil {
		return models.TransactionDetail{}, err
	}
	return out, nil
}

func (r *Repository) createPurchaseTx(ctx context.Context, tx pgx.Tx, params models.PurchaseParams, out *models.TransactionDetail) error {
	var instantSettlement bool
	if err := tx.QueryRow(ctx, `
SELECT instant_settlement
FROM payment_types
WHERE id = $1;`, params.PaymentTypeID).Scan(&instantSettlement); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPaymentTypeNotFound
		}
		return err
	}

	var (
		eventID   int64
		unitPrice decimal.Decimal
		remaining int
		archived  bool
	)
	if err := tx.QueryRow(ctx, `
SELECT event_id, price, remaining_amount, archived
FROM tickets
WHERE id = $1
FOR UPDATE;`, params.TicketID).Scan(&eventID, &unitPrice, &remaining, &archived); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTicketNotFound
		}
		return err
	}
	if archived {
		return ErrTicketNotFound
	}

	switch pricing.CheckAvailability(params.Quantity, remaining) {
	case pricing.ReasonOK:
	case pricing.ReasonBadQuantity:
		return ErrQuantityOutOfRange
	default:
		return ErrNotEnoughTickets
	}

	now := time.Now().UTC()
	discounts := make([]pricing.Discount, 0, 4)

	if params.DatePromoID != nil {
		var (
			percent       decimal.Decimal
			startsAt      time.Time
			endsAt        time.Time
			promoArchived bool
		)
		if err := tx.QueryRow(ctx, `
SELECT discount_percent, starts_at, ends_at, archived
FROM promos_date
WHERE id = $1 AND event_id = $2;`, *params.DatePromoID, eventID).Scan(&percent, &startsAt, &endsAt, &promoArchived); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPromoNotFound
			}
			return err
		}
		if !pricing.DatePromoActive(now, startsAt, endsAt, promoArchived) {
			return ErrPromoNotFound
		}
		discounts = append(discounts, pricing.Discount{
			Kind:   pricing.DiscountDatePromo,
			Amount: pricing.PercentOf(unitPrice, percent),
		})
	}

	var referringUserID *int64
	if params.ReferralCode != "" {
		var id int64
		if err := tx.QueryRow(ctx, `
SELECT id
FROM users
WHERE referral_code = $1 AND archived = false;`, params.ReferralCode).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrReferredUserNotFound
			}
			return err
		}
		referringUserID = &id
	}

	if params.ReferralPromoID != nil {
		if referringUserID == nil {
			return ErrReferredUserNotFound
		}
		var (
			percent       decimal.Decimal
			promoArchived bool
		)
		if err := tx.QueryRow(ctx, `
SELECT discount_percent, archived
FROM promos_referral
WHERE id = $1 AND event_id = $2;`, *params.ReferralPromoID, eventID).Scan(&percent, &promoArchived); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrReferralPromoNotFound
			}
			return err
		}
		if promoArchived {
			return ErrReferralPromoNotFound
		}
		discounts = append(discounts, pricing.Discount{
			Kind:   pricing.DiscountReferralPromo,
			Amount: pricing.PercentOf(unitPrice, percent),
		})
	}

	couponApplied := false
	if params.UsePoints || params.UseRegisterCoupon {
		var (
			points decimal.Decimal
			coupon bool
		)
		if err := tx.QueryRow(ctx, `
SELECT points, register_coupon
FROM users
WHERE id = $1;`, params.UserID).Scan(&points, &coupon); err != nil {
			return err
		}
		if params.UsePoints && points.IsPositive() {
			discounts = append(discounts, pricing.Discount{
				Kind:   pricing.DiscountPoints,
				Amount: points,
			})
		}
		if params.UseRegisterCoupon && coupon {
			discounts = append(discounts, pricing.Discount{
				Kind:   pricing.DiscountCoupon,
				Amount: pricing.CouponDiscount(unitPrice, params.Quantity),
			})
			couponApplied = true
		}
	}

	quote := pricing.LineTotal(unitPrice, params.Quantity, discounts)

	status := models.TransactionStatusUnpaid
	if instantSettlement {
		status = models.TransactionStatusPaid
	}

	var txn models.Transaction
	txn.UserID = params.UserID
	txn.PaymentTypeID = params.PaymentTypeID
	txn.Total = quote.Total
	txn.Status = status
	if err := tx.QueryRow(ctx, `
INSERT INTO transactions (user_id, payment_type_id, total, status)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at;`,
		params.UserID, params.PaymentTypeID, quote.Total, status,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
		return err
	}

	var item models.TransactionItem
	item.TransactionID = txn.ID
	item.TicketID = params.TicketID
	item.Quantity = params.Quantity
	item.UnitPrice = unitPrice
	item.PromoDateID = params.DatePromoID
	item.PromoReferralID = params.ReferralPromoID
	item.ReferringUserID = referringUserID
	item.DiscountTotal = quote.DiscountTotal
	item.LineTotal = quote.Total
	if err := tx.QueryRow(ctx, `
INSERT INTO transaction_items (transaction_id, ticket_id, quantity, unit_price, promo_date_id, promo_referral_id, referring_user_id, discount_total, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at;`,
		txn.ID, params.TicketID, params.Quantity, unitPrice,
		nullInt64Ptr(params.DatePromoID), nullInt64Ptr(params.ReferralPromoID), nullInt64Ptr(referringUserID),
		quote.DiscountTotal, quote.Total,
	).Scan(&item.ID, &item.CreatedAt); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `
UPDATE tickets
SET remaining_amount = remaining_amount - $2,
	updated_at = now()
WHERE id = $1 AND remaining_amount >= $2;`, params.TicketID, params.Quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotEnoughTickets
	}

	if r.purchaseCommitHook != nil {
		if err := r.purchaseCommitHook(tx); err != nil {
			return err
		}
	}

	if referringUserID != nil {
		expiresAt := now.AddDate(0, referralRewardTTLMonths, 0)
		if _, err := tx.Exec(ctx, `
UPDATE users
SET points = points + $2,
	points_expires_at = $3,
	updated_at = now()
WHERE id = $1;`, *referringUserID, referralRewardPoints, expiresAt); err != nil {
			return err
		}
	}

	if couponApplied {
		if _, err := tx.Exec(ctx, `
UPDATE users
SET register_coupon = false,
	updated_at = now()
WHERE id = $1;`, params.UserID); err != nil {
			return err
		}
	}

	out.Transaction = txn
	out.Items = []models.TransactionItem{item}
	return nil
}
