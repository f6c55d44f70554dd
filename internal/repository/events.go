package repository

import (
	"context"
	"errors"
	"fmt"

	"tricket/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotEventOwner = errors.New("event belongs to another organizer")
)

const eventColumns = `e.id, e.organizer_id, e.name, e.description, e.show_time, e.location, e.is_paid_event, e.banner_url, e.archived, e.created_at, e.updated_at`

func scanEvent(row pgx.Row) (models.Event, error) {
	var out models.Event
	var description, location, bannerURL *string
	err := row.Scan(
		&out.ID, &out.OrganizerID, &out.Name, &description, &out.ShowTime,
		&location, &out.IsPaidEvent, &bannerURL, &out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	if description != nil {
		out.Description = *description
	}
	if location != nil {
		out.Location = *location
	}
	if bannerURL != nil {
		out.BannerURL = *bannerURL
	}
	return out, err
}

// ListEvents returns the public event listing with optional name/location
// substring filters and a show-time range, newest first.
func (r *Repository) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
SELECT ` + eventColumns + `, o.name
FROM events e
JOIN organizers o ON o.id = e.organizer_id
WHERE e.archived = false`
	args := []interface{}{}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		query += fmt.Sprintf("\n\tAND e.name ILIKE $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		query += fmt.Sprintf("\n\tAND e.location ILIKE $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf("\n\tAND e.show_time >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf("\n\tAND e.show_time <= $%d", len(args))
	}
	args = append(args, limit, (page-1)*limit)
	query += fmt.Sprintf("\nORDER BY e.show_time DESC\nLIMIT $%d OFFSET $%d;", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		var description, location, bannerURL *string
		if err := rows.Scan(
			&event.ID, &event.OrganizerID, &event.Name, &description, &event.ShowTime,
			&location, &event.IsPaidEvent, &bannerURL, &event.Archived, &event.CreatedAt, &event.UpdatedAt,
			&event.OrganizerName,
		); err != nil {
			return nil, err
		}
		if description != nil {
			event.Description = *description
		}
		if location != nil {
			event.Location = *location
		}
		if bannerURL != nil {
			event.BannerURL = *bannerURL
		}
		items = append(items, event)
	}
	return items, rows.Err()
}

// GetEventDetail returns an event plus its non-archived tickets.
func (r *Repository) GetEventDetail(ctx context.Context, id int64) (models.EventDetail, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+eventColumns+`
FROM events e
WHERE e.id = $1 AND e.archived = false;`, id)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.EventDetail{}, ErrEventNotFound
	}
	if err != nil {
		return models.EventDetail{}, err
	}

	tickets, err := r.ListTicketsByEvent(ctx, id)
	if err != nil {
		return models.EventDetail{}, err
	}
	return models.EventDetail{Event: event, Tickets: tickets}, nil
}

func (r *Repository) ListEventsByOrganizer(ctx context.Context, organizerID int64) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
FROM events e
WHERE e.organizer_id = $1 AND e.archived = false
ORDER BY e.show_time DESC;`, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, event)
	}
	return items, rows.Err()
}

func (r *Repository) CreateEvent(ctx context.Context, organizerID int64, in models.EventInput) (models.Event, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO events (organizer_id, name, description, show_time, location, is_paid_event, banner_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+eventColumns+`;`,
		organizerID, in.Name, nullString(in.Description), in.ShowTime,
		nullString(in.Location), in.IsPaidEvent, nullString(in.BannerURL),
	)
	return scanEvent(row)
}

// requireEventOwner loads the event's organizer and checks ownership.
func (r *Repository) requireEventOwner(ctx context.Context, eventID int64, organizerID int64) error {
	var owner int64
	err := r.pool.QueryRow(ctx, `SELECT organizer_id FROM events WHERE id = $1 AND archived = false`, eventID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if owner != organizerID {
		return ErrNotEventOwner
	}
	return nil
}

func (r *Repository) UpdateEvent(ctx context.Context, organizerID int64, eventID int64, patch models.EventPatch) (models.Event, error) {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return models.Event{}, err
	}
	row := r.pool.QueryRow(ctx, `
UPDATE events e
SET name = COALESCE($2, name),
	description = COALESCE($3, description),
	show_time = COALESCE($4, show_time),
	location = COALESCE($5, location),
	is_paid_event = COALESCE($6, is_paid_event),
	banner_url = COALESCE($7, banner_url),
	updated_at = now()
WHERE e.id = $1 AND e.archived = false
RETURNING `+eventColumns+`;`,
		eventID, patch.Name, patch.Description, patch.ShowTime, patch.Location, patch.IsPaidEvent, patch.BannerURL,
	)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

func (r *Repository) ArchiveEvent(ctx context.Context, organizerID int64, eventID int64) error {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE events
SET archived = true,
	updated_at = now()
WHERE id = $1 AND archived = false;`, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// SetEventBanner stores the public URL of an uploaded banner image.
func (r *Repository) SetEventBanner(ctx context.Context, organizerID int64, eventID int64, bannerURL string) (models.Event, error) {
	if err := r.requireEventOwner(ctx, eventID, organizerID); err != nil {
		return models.Event{}, err
	}
	row := r.pool.QueryRow(ctx, `
UPDATE events e
SET banner_url = $2,
	updated_at = now()
WHERE e.id = $1 AND e.archived = false
RETURNING `+eventColumns+`;`, eventID, bannerURL)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}
