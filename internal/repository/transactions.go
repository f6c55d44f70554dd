package repository

import (
	"context"
	"errors"

	"tricket/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

var ErrTransactionNotFound = errors.New("transaction not found")

const transactionColumns = `id, user_id, payment_type_id, total, status, archived, created_at, updated_at`
const transactionItemColumns = `id, transaction_id, ticket_id, quantity, unit_price, promo_date_id, promo_referral_id, referring_user_id, discount_total, line_total, archived, created_at`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var out models.Transaction
	err := row.Scan(
		&out.ID, &out.UserID, &out.PaymentTypeID, &out.Total, &out.Status,
		&out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func scanTransactionItem(row pgx.Row) (models.TransactionItem, error) {
	var out models.TransactionItem
	err := row.Scan(
		&out.ID, &out.TransactionID, &out.TicketID, &out.Quantity, &out.UnitPrice,
		&out.PromoDateID, &out.PromoReferralID, &out.ReferringUserID,
		&out.DiscountTotal, &out.LineTotal, &out.Archived, &out.CreatedAt,
	)
	return out, err
}

func (r *Repository) ListTransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+transactionColumns+`
FROM transactions
WHERE user_id = $1 AND archived = false
ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, txn)
	}
	return items, rows.Err()
}

func (r *Repository) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND archived = false`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return txn, err
}

func (r *Repository) ListTransactionItems(ctx context.Context, transactionID int64) ([]models.TransactionItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+transactionItemColumns+`
FROM transaction_items
WHERE transaction_id = $1 AND archived = false
ORDER BY id;`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.TransactionItem, 0)
	for rows.Next() {
		item, err := scanTransactionItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) UpdateTransaction(ctx context.Context, id int64, patch models.TransactionPatch) (models.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE transactions
SET status = COALESCE($2, status),
	updated_at = now()
WHERE id = $1 AND archived = false
RETURNING `+transactionColumns+`;`, id, patch.Status)
	txn, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return txn, err
}

func (r *Repository) ArchiveTransaction(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE transactions
SET archived = true,
	updated_at = now()
WHERE id = $1 AND archived = false;`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
