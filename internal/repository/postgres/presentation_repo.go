package postgres

import (
	"context"
	"database/sql"
	"sort"

	"github.com/lib/pq"

	"programscheduler/internal/domain"
)

type presentationRepository struct {
	DB *sql.DB
}

func NewPresentationRepository(db *sql.DB) domain.PresentationRepository {
	return &presentationRepository{DB: db}
}

const presentationColumns = `id, session_id, title, abstract, presentation_type, start_time, end_time, sponsor_id, sort_order, created_at, updated_at`

func scanPresentation(row interface{ Scan(...any) error }) (*domain.Presentation, error) {
	p := &domain.Presentation{}
	var abstract, sponsor sql.NullString
	err := row.Scan(&p.ID, &p.SessionID, &p.Title, &abstract, &p.Type, &p.StartTime, &p.EndTime, &sponsor, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Abstract = stringPtr(abstract)
	p.SponsorID = stringPtr(sponsor)
	p.Speakers = []domain.SpeakerAssignment{}
	return p, nil
}

// Create inserts the presentation and its speaker links in one transaction.
func (r *presentationRepository) Create(ctx context.Context, p *domain.Presentation) error {
	return withTx(ctx, r.DB, func(ctx context.Context) error {
		query := `
			INSERT INTO presentations (session_id, title, abstract, presentation_type, start_time, end_time, sponsor_id, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		err := conn(ctx, r.DB).QueryRowContext(ctx, query,
			p.SessionID, p.Title, nullString(p.Abstract), p.Type, p.StartTime, p.EndTime, nullString(p.SponsorID), p.SortOrder, p.CreatedAt, p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return translate(err)
		}
		return r.insertSpeakers(ctx, p)
	})
}

// Update rewrites the presentation row and replaces its speaker links.
func (r *presentationRepository) Update(ctx context.Context, p *domain.Presentation) error {
	return withTx(ctx, r.DB, func(ctx context.Context) error {
		q := conn(ctx, r.DB)
		query := `
			UPDATE presentations
			SET title = $2, abstract = $3, presentation_type = $4, start_time = $5, end_time = $6,
				sponsor_id = $7, sort_order = $8, updated_at = $9
			WHERE id = $1
		`
		res, err := q.ExecContext(ctx, query,
			p.ID, p.Title, nullString(p.Abstract), p.Type, p.StartTime, p.EndTime, nullString(p.SponsorID), p.SortOrder, p.UpdatedAt,
		)
		if err != nil {
			return translate(err)
		}
		if err := expectOne(res); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM presentation_speakers WHERE presentation_id = $1`, p.ID); err != nil {
			return err
		}
		return r.insertSpeakers(ctx, p)
	})
}

func (r *presentationRepository) insertSpeakers(ctx context.Context, p *domain.Presentation) error {
	q := conn(ctx, r.DB)
	for _, s := range p.Speakers {
		_, err := q.ExecContext(ctx,
			`INSERT INTO presentation_speakers (presentation_id, participant_id, role, sort_order) VALUES ($1, $2, $3, $4)`,
			p.ID, s.ParticipantID, s.Role, s.SortOrder,
		)
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

func (r *presentationRepository) GetByID(ctx context.Context, id string) (*domain.Presentation, error) {
	p, err := scanPresentation(conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+presentationColumns+` FROM presentations WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.loadSpeakers(ctx, map[string]*domain.Presentation{p.ID: p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *presentationRepository) ListBySessionID(ctx context.Context, sessionID string) ([]*domain.Presentation, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT `+presentationColumns+` FROM presentations WHERE session_id = $1 ORDER BY start_time, sort_order`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Presentation
	byID := map[string]*domain.Presentation{}
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := r.loadSpeakers(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *presentationRepository) loadSpeakers(ctx context.Context, byID map[string]*domain.Presentation) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	query := `
		SELECT presentation_id, participant_id, role, sort_order
		FROM presentation_speakers
		WHERE presentation_id::text = ANY($1)
		ORDER BY presentation_id, sort_order
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var presentationID string
		var s domain.SpeakerAssignment
		if err := rows.Scan(&presentationID, &s.ParticipantID, &s.Role, &s.SortOrder); err != nil {
			return err
		}
		if p, ok := byID[presentationID]; ok {
			p.Speakers = append(p.Speakers, s)
		}
	}
	return rows.Err()
}

func (r *presentationRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM presentations WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}
