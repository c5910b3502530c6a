package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"programscheduler/internal/domain"
)

var categoryCols = []string{"id", "event_id", "name", "color", "sort_order", "created_at", "updated_at"}

func TestCategoryRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO program_session_categories`).
					WithArgs("ev-1", "AI", "#ff0000", 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-1"))
			},
		},
		{
			name: "duplicate name",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO program_session_categories`).WillReturnError(&pq.Error{Code: codeUniqueViolation})
			},
			wantErr: domain.ErrDuplicate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			c := &domain.ProgramSessionCategory{EventID: "ev-1", Name: "AI", Color: "#ff0000", SortOrder: 1, CreatedAt: time.Now(), UpdatedAt: time.Now()}
			err = NewCategoryRepository(db).Create(context.Background(), c)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "cat-1", c.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_ListAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM program_session_categories WHERE id::text = ANY\(\$1\)`).
		WithArgs(pq.Array([]string{"cat-1", "cat-2"})).
		WillReturnRows(sqlmock.NewRows(categoryCols).AddRow("cat-1", "ev-1", "AI", "#f00", 1, now, now))
	mock.ExpectQuery(`FROM program_session_categories WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(categoryCols).
			AddRow("cat-1", "ev-1", "AI", "#f00", 1, now, now).
			AddRow("cat-3", "ev-1", "Cloud", "#0f0", 2, now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM program_sessions WHERE \$1 = ANY\(category_ids\)`).
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	repo := NewCategoryRepository(db)
	byIDs, err := repo.ListByIDs(context.Background(), []string{"cat-1", "cat-2"})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	byEvent, err := repo.ListByEventID(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, byEvent, 2)

	n, err := repo.CountSessions(context.Background(), "cat-1")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	none, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, none)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM program_session_categories WHERE id = \$1`).WithArgs("cat-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewCategoryRepository(db).Delete(context.Background(), "cat-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
