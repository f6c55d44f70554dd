package repository

import (
	"context"
	"errors"

	"tricket/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, event_id, name, description, price, remaining_amount, archived, created_at, updated_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var out models.Ticket
	var description *string
	err := row.Scan(
		&out.ID, &out.EventID, &out.Name, &description, &out.Price,
		&out.RemainingAmount, &out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	if description != nil {
		out.Description = *description
	}
	return out, err
}

func (r *Repository) ListTicketsByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+ticketColumns+`
FROM tickets
WHERE event_id = $1 AND archived = false
ORDER BY price;`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ticket)
	}
	return items, rows.Err()
}

func (r *Repository) GetTicketByID(ctx context.Context, id int64) (models.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND archived = false`, id)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, ErrTicketNotFound
	}
	return ticket, err
}

func (r *Repository) CreateTicket(ctx context.Context, organizerID int64, eventID int64, in models.TicketInput) (models.Ticket, error) {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return models.Ticket{}, err
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO tickets (event_id, name, description, price, remaining_amount)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+ticketColumns+`;`,
		eventID, in.Name, nullString(in.Description), in.Price, in.RemainingAmount,
	)
	return scanTicket(row)
}

func (r *Repository) UpdateTicket(ctx context.Context, organizerID int64, eventID int64, ticketID int64, patch models.TicketPatch) (models.Ticket, error) {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return models.Ticket{}, err
	}
	row := r.pool.QueryRow(ctx, `
UPDATE tickets
SET name = COALESCE($3, name),
	description = COALESCE($4, description),
	price = COALESCE($5, price),
	remaining_amount = COALESCE($6, remaining_amount),
	updated_at = now()
WHERE id = $1 AND event_id = $2 AND archived = false
RETURNING `+ticketColumns+`;`,
		ticketID, eventID, patch.Name, patch.Description, decimalPtrOrNil(patch.Price), patch.RemainingAmount,
	)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, ErrTicketNotFound
	}
	return ticket, err
}

func (r *Repository) ArchiveTicket(ctx context.Context, organizerID int64, eventID int64, ticketID int64) error {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE tickets
SET archived = true,
	updated_at = now()
WHERE id = $1 AND event_id = $2 AND archived = false;`, ticketID, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}
