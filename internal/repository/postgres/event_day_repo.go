package postgres

import (
	"context"
	"database/sql"

	"programscheduler/internal/domain"
)

type eventDayRepository struct {
	DB *sql.DB
}

func NewEventDayRepository(db *sql.DB) domain.EventDayRepository {
	return &eventDayRepository{DB: db}
}

const eventDayColumns = `id, event_id, date, title, sort_order, is_active, created_at, updated_at`

func scanEventDay(row interface{ Scan(...any) error }) (*domain.EventDay, error) {
	d := &domain.EventDay{}
	if err := row.Scan(&d.ID, &d.EventID, &d.Date, &d.Title, &d.SortOrder, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *eventDayRepository) Create(ctx context.Context, d *domain.EventDay) error {
	query := `
		INSERT INTO event_days (event_id, date, title, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		d.EventID, d.Date, d.Title, d.SortOrder, d.IsActive, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	return translate(err)
}

func (r *eventDayRepository) CreateMany(ctx context.Context, days []*domain.EventDay) error {
	return withTx(ctx, r.DB, func(ctx context.Context) error {
		for _, d := range days {
			if err := r.Create(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *eventDayRepository) GetByID(ctx context.Context, id string) (*domain.EventDay, error) {
	query := `SELECT ` + eventDayColumns + ` FROM event_days WHERE id = $1`
	d, err := scanEventDay(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (r *eventDayRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventDay, error) {
	query := `SELECT ` + eventDayColumns + ` FROM event_days WHERE event_id = $1 ORDER BY sort_order, date`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.EventDay
	for rows.Next() {
		d, err := scanEventDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *eventDayRepository) RenumberByDate(ctx context.Context, eventID string) error {
	query := `
		UPDATE event_days d
		SET sort_order = o.n, updated_at = NOW()
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY date) AS n
			FROM event_days
			WHERE event_id = $1
		) o
		WHERE d.id = o.id AND d.sort_order <> o.n
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, eventID)
	return err
}

func (r *eventDayRepository) CountSessions(ctx context.Context, dayID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM program_sessions s
		JOIN venues v ON v.id = s.venue_id
		WHERE v.event_day_id = $1
	`
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, dayID).Scan(&n)
	return n, err
}

func (r *eventDayRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(ctx context.Context) error {
		q := conn(ctx, r.DB)
		if _, err := q.ExecContext(ctx, `DELETE FROM venues WHERE event_day_id = $1`, id); err != nil {
			return translate(err)
		}
		res, err := q.ExecContext(ctx, `DELETE FROM event_days WHERE id = $1`, id)
		if err != nil {
			return translate(err)
		}
		return expectOne(res)
	})
}
