package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"programscheduler/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

func (r *participantRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, organization_id, first_name, last_name, email
		FROM participants
		WHERE id::text = ANY($1)
		ORDER BY last_name, first_name
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Participant
	for rows.Next() {
		p := &domain.Participant{}
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.FirstName, &p.LastName, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type sponsorRepository struct {
	DB *sql.DB
}

func NewSponsorRepository(db *sql.DB) domain.SponsorRepository {
	return &sponsorRepository{DB: db}
}

func (r *sponsorRepository) GetByID(ctx context.Context, id string) (*domain.Sponsor, error) {
	s := &domain.Sponsor{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT id, organization_id, name FROM sponsors WHERE id = $1`, id).
		Scan(&s.ID, &s.OrganizationID, &s.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}
