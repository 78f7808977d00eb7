package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

func TestCommentsDialector(t *testing.T) {
	d, err := CommentsDialector("postgres://localhost/dealhub", "")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = CommentsDialector("", "comments.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = CommentsDialector("", "")
	assert.Error(t, err)
}

func TestGormCommentRepository(t *testing.T) {
	ctx := context.Background()
	dialector, err := CommentsDialector("", filepath.Join(t.TempDir(), "comments.db"))
	require.NoError(t, err)

	repo, err := NewGormCommentRepository(dialector, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()

	var _ CommentRepository = repo

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, models.Comment{ID: "c1", DealID: "deal1", ActorKey: "user:1", Body: "nice", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, models.Comment{ID: "c2", DealID: "deal1", ActorKey: "user:2", Body: "cheap", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, models.Comment{ID: "c3", DealID: "deal2", ActorKey: "user:2", Body: "ok", CreatedAt: now}))

	// Тест 1: Неодобренные комментарии не считаются
	n, err := repo.CountApproved(ctx, "deal1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Тест 2: Одобрение
	require.NoError(t, repo.Approve(ctx, "c1"))
	require.NoError(t, repo.Approve(ctx, "c2"))
	require.NoError(t, repo.Approve(ctx, "c3"))
	assert.ErrorIs(t, repo.Approve(ctx, "missing"), ErrCommentNotFound)

	n, err = repo.CountApproved(ctx, "deal1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Тест 3: Удаление комментариев сделки
	require.NoError(t, repo.DeleteByDeal(ctx, "deal1"))
	n, err = repo.CountApproved(ctx, "deal1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.CountApproved(ctx, "deal2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
