package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"programscheduler/internal/domain"
)

type programSessionRepository struct {
	DB *sql.DB
}

func NewProgramSessionRepository(db *sql.DB) domain.ProgramSessionRepository {
	return &programSessionRepository{DB: db}
}

const sessionColumns = `s.id, s.venue_id, s.title, s.description, s.start_time, s.end_time, s.session_type,
	s.is_break, s.is_featured, s.sponsor_id, s.category_ids, s.moderator_ids, s.sort_order, s.created_at, s.updated_at`

func scanSession(row interface{ Scan(...any) error }) (*domain.ProgramSession, error) {
	s := &domain.ProgramSession{}
	var sponsor sql.NullString
	err := row.Scan(
		&s.ID, &s.VenueID, &s.Title, &s.Description, &s.StartTime, &s.EndTime, &s.Type,
		&s.IsBreak, &s.IsFeatured, &sponsor, pq.Array(&s.CategoryIDs), pq.Array(&s.ModeratorIDs),
		&s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.SponsorID = stringPtr(sponsor)
	return s, nil
}

// WithVenueLock takes a row lock on the venue for the duration of fn. Writers
// targeting the same venue queue behind it, so their conflict checks see each
// other's bookings.
func (r *programSessionRepository) WithVenueLock(ctx context.Context, venueID string, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.DB, func(ctx context.Context) error {
		var id string
		err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT id FROM venues WHERE id = $1 FOR UPDATE`, venueID).Scan(&id)
		if err != nil {
			return notFound(err)
		}
		return fn(ctx)
	})
}

func (r *programSessionRepository) Create(ctx context.Context, s *domain.ProgramSession) error {
	query := `
		INSERT INTO program_sessions (venue_id, title, description, start_time, end_time, session_type,
			is_break, is_featured, sponsor_id, category_ids, moderator_ids, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		s.VenueID, s.Title, s.Description, s.StartTime, s.EndTime, s.Type,
		s.IsBreak, s.IsFeatured, nullString(s.SponsorID), pq.Array(s.CategoryIDs), pq.Array(s.ModeratorIDs),
		s.SortOrder, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	return sessionWriteError(err, s)
}

func (r *programSessionRepository) Update(ctx context.Context, s *domain.ProgramSession) error {
	query := `
		UPDATE program_sessions
		SET venue_id = $2, title = $3, description = $4, start_time = $5, end_time = $6, session_type = $7,
			is_break = $8, is_featured = $9, sponsor_id = $10, category_ids = $11, moderator_ids = $12,
			sort_order = $13, updated_at = $14
		WHERE id = $1
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		s.ID, s.VenueID, s.Title, s.Description, s.StartTime, s.EndTime, s.Type,
		s.IsBreak, s.IsFeatured, nullString(s.SponsorID), pq.Array(s.CategoryIDs), pq.Array(s.ModeratorIDs),
		s.SortOrder, s.UpdatedAt,
	)
	if err != nil {
		return sessionWriteError(err, s)
	}
	return expectOne(res)
}

// sessionWriteError maps the exclusion constraint to a scheduling conflict.
// It only fires when a writer bypassed the venue lock.
func sessionWriteError(err error, s *domain.ProgramSession) error {
	if err == nil {
		return nil
	}
	if pqCode(err) == codeExclusionViolation {
		return fmt.Errorf("%w: %s overlaps an existing booking in venue %s", domain.ErrSchedulingConflict, s.Range(), s.VenueID)
	}
	return translate(err)
}

func (r *programSessionRepository) GetByID(ctx context.Context, id string) (*domain.ProgramSession, error) {
	s, err := scanSession(conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM program_sessions s WHERE s.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *programSessionRepository) ListByVenueID(ctx context.Context, venueID string) ([]*domain.ProgramSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM program_sessions s WHERE s.venue_id = $1 ORDER BY s.start_time, s.sort_order`
	return r.list(ctx, query, venueID)
}

func (r *programSessionRepository) ListByDayID(ctx context.Context, dayID string) ([]*domain.ProgramSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM program_sessions s
		JOIN venues v ON v.id = s.venue_id
		WHERE v.event_day_id = $1
		ORDER BY s.start_time, s.sort_order
	`
	return r.list(ctx, query, dayID)
}

func (r *programSessionRepository) list(ctx context.Context, query string, arg any) ([]*domain.ProgramSession, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProgramSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *programSessionRepository) CountPresentations(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM presentations WHERE session_id = $1`, sessionID).Scan(&n)
	return n, err
}

func (r *programSessionRepository) CountPresentationsBySessionIDs(ctx context.Context, sessionIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT session_id, COUNT(*)
		FROM presentations
		WHERE session_id::text = ANY($1)
		GROUP BY session_id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(sessionIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *programSessionRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM program_sessions WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}
