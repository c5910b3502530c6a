package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"programscheduler/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

const categoryColumns = `id, event_id, name, color, sort_order, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*domain.ProgramSessionCategory, error) {
	c := &domain.ProgramSessionCategory{}
	if err := row.Scan(&c.ID, &c.EventID, &c.Name, &c.Color, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.ProgramSessionCategory) error {
	query := `
		INSERT INTO program_session_categories (event_id, name, color, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, c.EventID, c.Name, c.Color, c.SortOrder, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	return translate(err)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.ProgramSessionCategory, error) {
	c, err := scanCategory(conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM program_session_categories WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *categoryRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.ProgramSessionCategory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+categoryColumns+` FROM program_session_categories WHERE id::text = ANY($1) ORDER BY sort_order, name`, pq.Array(ids))
}

func (r *categoryRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.ProgramSessionCategory, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM program_session_categories WHERE event_id = $1 ORDER BY sort_order, name`, eventID)
}

func (r *categoryRepository) list(ctx context.Context, query string, arg any) ([]*domain.ProgramSessionCategory, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProgramSessionCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoryRepository) CountSessions(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM program_sessions WHERE $1 = ANY(category_ids)`, categoryID).Scan(&n)
	return n, err
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM program_session_categories WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}
