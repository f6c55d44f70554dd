package repository

import (
	"context"
	"errors"

	"tricket/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrOrganizerNotFound = errors.New("organizer not found")

const organizerColumns = `id, name, email, phone, address, archived, created_at, updated_at`

func scanOrganizer(row pgx.Row) (models.Organizer, error) {
	var out models.Organizer
	var phone, address *string
	err := row.Scan(&out.ID, &out.Name, &out.Email, &phone, &address, &out.Archived, &out.CreatedAt, &out.UpdatedAt)
	if phone != nil {
		out.Phone = *phone
	}
	if address != nil {
		out.Address = *address
	}
	return out, err
}

func (r *Repository) CreateOrganizer(ctx context.Context, params models.RegisterOrganizerParams) (models.Organizer, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO organizers (name, email, password_hash, phone, address)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+organizerColumns+`;`,
		params.Name, params.Email, params.PasswordHash, nullString(params.Phone), nullString(params.Address),
	)
	organizer, err := scanOrganizer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Organizer{}, ErrEmailTaken
		}
		return models.Organizer{}, err
	}
	return organizer, nil
}

func (r *Repository) GetOrganizerByID(ctx context.Context, id int64) (models.Organizer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE id = $1 AND archived = false`, id)
	organizer, err := scanOrganizer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Organizer{}, ErrOrganizerNotFound
	}
	return organizer, err
}

// GetOrganizerCredentials returns the organizer plus the stored password hash
// for a login check.
func (r *Repository) GetOrganizerCredentials(ctx context.Context, email string) (models.Organizer, string, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+organizerColumns+`, password_hash FROM organizers WHERE email = $1 AND archived = false`, email)
	var out models.Organizer
	var phone, address *string
	var passwordHash string
	err := row.Scan(&out.ID, &out.Name, &out.Email, &phone, &address, &out.Archived, &out.CreatedAt, &out.UpdatedAt, &passwordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Organizer{}, "", ErrOrganizerNotFound
	}
	if err != nil {
		return models.Organizer{}, "", err
	}
	if phone != nil {
		out.Phone = *phone
	}
	if address != nil {
		out.Address = *address
	}
	return out, passwordHash, nil
}

func (r *Repository) ListOrganizers(ctx context.Context, page, limit int) ([]models.Organizer, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+organizerColumns+`
FROM organizers
WHERE archived = false
ORDER BY id
LIMIT $1 OFFSET $2;`, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Organizer, 0)
	for rows.Next() {
		organizer, err := scanOrganizer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, organizer)
	}
	return items, rows.Err()
}

func (r *Repository) UpdateOrganizer(ctx context.Context, id int64, patch models.OrganizerPatch) (models.Organizer, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE organizers
SET name = COALESCE($2, name),
	phone = COALESCE($3, phone),
	address = COALESCE($4, address),
	updated_at = now()
WHERE id = $1 AND archived = false
RETURNING `+organizerColumns+`;`,
		id, patch.Name, patch.Phone, patch.Address,
	)
	organizer, err := scanOrganizer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Organizer{}, ErrOrganizerNotFound
	}
	return organizer, err
}

func (r *Repository) ArchiveOrganizer(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE organizers
SET archived = true,
	updated_at = now()
WHERE id = $1 AND archived = false;`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrganizerNotFound
	}
	return nil
}
