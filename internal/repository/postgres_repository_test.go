package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

// newSQLMock создаёт sqlmock с точным сравнением запросов
func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewPostgresStatsRepository_NilDB(t *testing.T) {
	_, err := NewPostgresStatsRepository(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewPostgresStoreRepository(nil, zap.NewNop())
	assert.Error(t, err)
}

func TestPostgresStatsRepository_Increments(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		query       string
		call        func(r *PostgresStatsRepository) error
		execErr     error
		expectedErr bool
	}{
		{
			name:  "Views success",
			query: queryIncrementViews,
			call:  func(r *PostgresStatsRepository) error { return r.IncrementViews(ctx, "deal1") },
		},
		{
			name:  "Clicks success",
			query: queryIncrementClicks,
			call:  func(r *PostgresStatsRepository) error { return r.IncrementPurchaseClicks(ctx, "deal1") },
		},
		{
			name:        "Views database error",
			query:       queryIncrementViews,
			call:        func(r *PostgresStatsRepository) error { return r.IncrementViews(ctx, "deal1") },
			execErr:     errors.New("connection reset"),
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMock(t)
			repo, err := NewPostgresStatsRepository(db, zap.NewNop())
			require.NoError(t, err)

			exp := mock.ExpectExec(tt.query).WithArgs("deal1")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err = tt.call(repo)
			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStatsRepository_ToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("Like added", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

		mock.ExpectBegin()
		expectStatsLock(mock)
		mock.ExpectExec(queryDeleteLike).WithArgs("deal1", "user:1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(queryInsertLike).WithArgs("deal1", "user:1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(queryAdjustLikes).WithArgs("deal1", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(int64(3)))
		mock.ExpectCommit()

		liked, likes, err := repo.ToggleLike(ctx, "deal1", "user:1")
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(3), likes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Like removed", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

		mock.ExpectBegin()
		expectStatsLock(mock)
		mock.ExpectExec(queryDeleteLike).WithArgs("deal1", "user:1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(queryAdjustLikes).WithArgs("deal1", int64(-1)).
			WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(int64(2)))
		mock.ExpectCommit()

		liked, likes, err := repo.ToggleLike(ctx, "deal1", "user:1")
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, int64(2), likes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Concurrent insert counted once", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

		mock.ExpectBegin()
		expectStatsLock(mock)
		mock.ExpectExec(queryDeleteLike).WithArgs("deal1", "user:1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(queryInsertLike).WithArgs("deal1", "user:1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(queryAdjustLikes).WithArgs("deal1", int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(int64(1)))
		mock.ExpectCommit()

		liked, likes, err := repo.ToggleLike(ctx, "deal1", "user:1")
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), likes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

		mock.ExpectBegin()
		expectStatsLock(mock)
		mock.ExpectExec(queryDeleteLike).WithArgs("deal1", "user:1").WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		_, _, err := repo.ToggleLike(ctx, "deal1", "user:1")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Row lock precedes like change", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec(queryEnsureStats).WithArgs("deal1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(queryLockStats).WithArgs("deal1").WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		_, _, err := repo.ToggleLike(ctx, "deal1", "user:1")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// expectStatsLock ожидает блокировку строки deal_stats в начале переключения
func expectStatsLock(mock sqlmock.Sqlmock) {
	mock.ExpectExec(queryEnsureStats).WithArgs("deal1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(queryLockStats).WithArgs("deal1").
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(int64(2)))
}

func TestPostgresStatsRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Existing deal", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

		mock.ExpectQuery(querySelectStats).WithArgs("deal1").
			WillReturnRows(sqlmock.NewRows([]string{"views", "likes", "purchase_clicks"}).AddRow(10, 2, 4))
		mock.ExpectQuery(querySelectLikers).WithArgs("deal1").
			WillReturnRows(sqlmock.NewRows([]string{"actor_key"}).AddRow("guest:a").AddRow("user:b"))

		stats, err := repo.Get(ctx, "deal1")
		require.NoError(t, err)
		assert.Equal(t, models.DealStats{
			DealID:         "deal1",
			Views:          10,
			Likes:          2,
			PurchaseClicks: 4,
			LikedBy:        []string{"guest:a", "user:b"},
		}, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown deal", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

		mock.ExpectQuery(querySelectStats).WithArgs("deal404").WillReturnError(sql.ErrNoRows)

		stats, err := repo.Get(ctx, "deal404")
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Views)
		assert.Empty(t, stats.LikedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStatsRepository_Delete(t *testing.T) {
	db, mock := newSQLMock(t)
	repo, _ := NewPostgresStatsRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(queryDeleteLikes).WithArgs("deal1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(queryDeleteStats).WithArgs("deal1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), "deal1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreRepository(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := models.Store{ID: "s1", Name: "Acme", Slug: "acme", OwnerKey: "user:1", CreatedAt: created}

	tests := []struct {
		name        string
		affected    int64
		expectedErr error
	}{
		{name: "Create success", affected: 1},
		{name: "Slug conflict", affected: 0, expectedErr: ErrStoreExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMock(t)
			repo, err := NewPostgresStoreRepository(db, zap.NewNop())
			require.NoError(t, err)

			mock.ExpectExec(queryInsertStore).
				WithArgs(store.ID, store.Name, store.Slug, store.OwnerKey, store.CreatedAt).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err = repo.Create(ctx, store)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("ExistsBySlug", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo, _ := NewPostgresStoreRepository(db, zap.NewNop())

		mock.ExpectQuery(queryStoreExists).WithArgs("acme").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsBySlug(ctx, "acme")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
