package repository

import (
	"context"

	"tricket/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const datePromoColumns = `id, event_id, name, discount_percent, starts_at, ends_at, archived, created_at, updated_at`
const referralPromoColumns = `id, event_id, name, discount_percent, archived, created_at, updated_at`

func scanDatePromo(row pgx.Row) (models.DatePromo, error) {
	var out models.DatePromo
	var name *string
	err := row.Scan(
		&out.ID, &out.EventID, &name, &out.DiscountPercent,
		&out.StartsAt, &out.EndsAt, &out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	if name != nil {
		out.Name = *name
	}
	return out, err
}

func scanReferralPromo(row pgx.Row) (models.ReferralPromo, error) {
	var out models.ReferralPromo
	var name *string
	err := row.Scan(
		&out.ID, &out.EventID, &name, &out.DiscountPercent,
		&out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	if name != nil {
		out.Name = *name
	}
	return out, err
}

func (r *Repository) ListDatePromos(ctx context.Context, eventID int64) ([]models.DatePromo, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+datePromoColumns+`
FROM promos_date
WHERE event_id = $1 AND archived = false
ORDER BY starts_at;`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.DatePromo, 0)
	for rows.Next() {
		promo, err := scanDatePromo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, promo)
	}
	return items, rows.Err()
}

func (r *Repository) CreateDatePromo(ctx context.Context, organizerID int64, eventID int64, in models.DatePromoInput) (models.DatePromo, error) {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return models.DatePromo{}, err
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO promos_date (event_id, name, discount_percent, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+datePromoColumns+`;`,
		eventID, nullString(in.Name), in.DiscountPercent, in.StartsAt, in.EndsAt,
	)
	return scanDatePromo(row)
}

func (r *Repository) ArchiveDatePromo(ctx context.Context, organizerID int64, eventID int64, promoID int64) error {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE promos_date
SET archived = true,
	updated_at = now()
WHERE id = $1 AND event_id = $2 AND archived = false;`, promoID, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPromoNotFound
	}
	return nil
}

func (r *Repository) ListReferralPromos(ctx context.Context, eventID int64) ([]models.ReferralPromo, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+referralPromoColumns+`
FROM promos_referral
WHERE event_id = $1 AND archived = false
ORDER BY id;`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ReferralPromo, 0)
	for rows.Next() {
		promo, err := scanReferralPromo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, promo)
	}
	return items, rows.Err()
}

func (r *Repository) CreateReferralPromo(ctx context.Context, organizerID int64, eventID int64, in models.ReferralPromoInput) (models.ReferralPromo, error) {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return models.ReferralPromo{}, err
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO promos_referral (event_id, name, discount_percent)
VALUES ($1, $2, $3)
RETURNING `+referralPromoColumns+`;`,
		eventID, nullString(in.Name), in.DiscountPercent,
	)
	return scanReferralPromo(row)
}

func (r *Repository) ArchiveReferralPromo(ctx context.Context, organizerID int64, eventID int64, promoID int64) error {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE promos_referral
SET archived = true,
	updated_at = now()
WHERE id = $1 AND event_id = $2 AND archived = false;`, promoID, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrReferralPromoNotFound
	}
	return nil
}
