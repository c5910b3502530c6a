package postgres

import (
	"context"
	"database/sql"

	"programscheduler/internal/domain"
)

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{DB: db}
}

const venueColumns = `id, event_day_id, name, display_name, capacity, color, sort_order, is_active, created_at, updated_at`

func scanVenue(row interface{ Scan(...any) error }) (*domain.Venue, error) {
	v := &domain.Venue{}
	err := row.Scan(&v.ID, &v.EventDayID, &v.Name, &v.DisplayName, &v.Capacity, &v.Color, &v.SortOrder, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (event_day_id, name, display_name, capacity, color, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		v.EventDayID, v.Name, v.DisplayName, v.Capacity, v.Color, v.SortOrder, v.IsActive, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	return translate(err)
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	v, err := scanVenue(conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

func (r *venueRepository) ListByDayID(ctx context.Context, dayID string) ([]*domain.Venue, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE event_day_id = $1 ORDER BY sort_order, name`, dayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *venueRepository) CountSessions(ctx context.Context, venueID string) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM program_sessions WHERE venue_id = $1`, venueID).Scan(&n)
	return n, err
}

func (r *venueRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}
