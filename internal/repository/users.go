package repository

import (
	"context"
	"errors"
	"time"

	"tricket/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const userColumns = `id, first_name, last_name, email, phone, address, referral_code, points, points_expires_at, register_coupon, is_admin, archived, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var out models.User
	var lastName, phone, address *string
	err := row.Scan(
		&out.ID, &out.FirstName, &lastName, &out.Email, &phone, &address,
		&out.ReferralCode, &out.Points, &out.PointsExpiresAt, &out.RegisterCoupon,
		&out.IsAdmin, &out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	if lastName != nil {
		out.LastName = *lastName
	}
	if phone != nil {
		out.Phone = *phone
	}
	if address != nil {
		out.Address = *address
	}
	return out, err
}

// CreateUser registers a user. When a referrer code resolves to an existing
// user, the referrer is credited and the new account gets the one-time
// registration coupon. An unknown referrer code fails the registration.
func (r *Repository) CreateUser(ctx context.Context, params models.RegisterUserParams) (models.User, error) {
	var out models.User
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var referrerID *int64
		if params.ReferrerCode != "" {
			var id int64
			if err := tx.QueryRow(ctx, `
SELECT id
FROM users
WHERE referral_code = $1 AND archived = false;`, params.ReferrerCode).Scan(&id); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrReferredUserNotFound
				}
				return err
			}
			referrerID = &id
		}

		row := tx.QueryRow(ctx, `
INSERT INTO users (first_name, last_name, email, password_hash, phone, address, referral_code, register_coupon)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+userColumns+`;`,
			params.FirstName, nullString(params.LastName), params.Email, params.PasswordHash,
			nullString(params.Phone), nullString(params.Address), params.ReferralCode, referrerID != nil,
		)
		user, err := scanUser(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrEmailTaken
			}
			return err
		}

		if referrerID != nil {
			expiresAt := time.Now().UTC().AddDate(0, referralRewardTTLMonths, 0)
			if _, err := tx.Exec(ctx, `
UPDATE users
SET points = points + $2,
	points_expires_at = $3,
	updated_at = now()
WHERE id = $1;`, *referrerID, referralRewardPoints, expiresAt); err != nil {
				return err
			}
		}

		out = user
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return out, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND archived = false`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserCredentials returns the user plus the stored password hash for a
// login check.
func (r *Repository) GetUserCredentials(ctx context.Context, email string) (models.User, string, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE email = $1 AND archived = false`, email)
	var out models.User
	var lastName, phone, address *string
	var passwordHash string
	err := row.Scan(
		&out.ID, &out.FirstName, &lastName, &out.Email, &phone, &address,
		&out.ReferralCode, &out.Points, &out.PointsExpiresAt, &out.RegisterCoupon,
		&out.IsAdmin, &out.Archived, &out.CreatedAt, &out.UpdatedAt,
		&passwordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, "", ErrUserNotFound
	}
	if err != nil {
		return models.User{}, "", err
	}
	if lastName != nil {
		out.LastName = *lastName
	}
	if phone != nil {
		out.Phone = *phone
	}
	if address != nil {
		out.Address = *address
	}
	return out, passwordHash, nil
}

func (r *Repository) ListUsers(ctx context.Context, page, limit int) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
WHERE archived = false
ORDER BY id
LIMIT $1 OFFSET $2;`, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, user)
	}
	return items, rows.Err()
}

func (r *Repository) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE users
SET first_name = COALESCE($2, first_name),
	last_name = COALESCE($3, last_name),
	phone = COALESCE($4, phone),
	address = COALESCE($5, address),
	points = COALESCE($6, points),
	updated_at = now()
WHERE id = $1 AND archived = false
RETURNING `+userColumns+`;`,
		id, patch.FirstName, patch.LastName, patch.Phone, patch.Address, decimalPtrOrNil(patch.Points),
	)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *Repository) ArchiveUser(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE users
SET archived = true,
	updated_at = now()
WHERE id = $1 AND archived = false;`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func decimalPtrOrNil(val *decimal.Decimal) interface{} {
	if val == nil {
		return nil
	}
	return *val
}
