package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStatsRepository_Contract(t *testing.T) {
	runStatsContract(t, func(t *testing.T) StatsRepository {
		repo, err := NewFileStatsRepository(filepath.Join(t.TempDir(), "stats.jsonl"), zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestFileStatsRepository(t *testing.T) {
	ctx := context.Background()
	// Создаём временную директорию для теста
	tempFile := filepath.Join(t.TempDir(), "stats.jsonl")

	repo, err := NewFileStatsRepository(tempFile, zap.NewNop())
	require.NoError(t, err, "Failed to create file repository")

	// Тест 1: Запись событий
	assert.NoError(t, repo.IncrementViews(ctx, "deal1"))
	assert.NoError(t, repo.IncrementViews(ctx, "deal1"))
	assert.NoError(t, repo.IncrementPurchaseClicks(ctx, "deal1"))
	_, _, err = repo.ToggleLike(ctx, "deal1", "user:1")
	assert.NoError(t, err)
	_, _, err = repo.ToggleLike(ctx, "deal1", "user:2")
	assert.NoError(t, err)
	_, _, err = repo.ToggleLike(ctx, "deal1", "user:1")
	assert.NoError(t, err)
	assert.NoError(t, repo.IncrementViews(ctx, "deal2"))
	assert.NoError(t, repo.Delete(ctx, "deal2"))
	require.NoError(t, repo.Close())

	// Тест 2: Восстановление данных проигрыванием журнала
	repo2, err := NewFileStatsRepository(tempFile, zap.NewNop())
	require.NoError(t, err, "Failed to reopen file repository")
	defer repo2.Close()

	stats, err := repo2.Get(ctx, "deal1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.Views, "Restored views mismatch")
	assert.Equal(t, int64(1), stats.PurchaseClicks, "Restored clicks mismatch")
	assert.Equal(t, int64(1), stats.Likes, "Restored likes mismatch")
	assert.Equal(t, []string{"user:2"}, stats.LikedBy)

	stats, err = repo2.Get(ctx, "deal2")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.Views, "Purged deal should stay purged")
}

func TestFileStatsRepository_InvalidLines(t *testing.T) {
	ctx := context.Background()
	tempFile := filepath.Join(t.TempDir(), "stats.jsonl")

	// Тест 3: Обработка некорректного JSON и неизвестных событий
	content := "invalid json\n" +
		`{"deal_id":"deal1","event":"view"}` + "\n" +
		`{"deal_id":"deal1","event":"teleport"}` + "\n"
	require.NoError(t, os.WriteFile(tempFile, []byte(content), 0644))

	repo, err := NewFileStatsRepository(tempFile, zap.NewNop())
	require.NoError(t, err, "Should handle invalid JSON lines")
	defer repo.Close()

	stats, err := repo.Get(ctx, "deal1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.Views)
}

func TestFileStatsRepository_NonExistentDir(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "subdir", "stats.jsonl")

	repo, err := NewFileStatsRepository(tempFile, zap.NewNop())
	require.NoError(t, err, "Failed to create repository in non-existent dir")
	defer repo.Close()

	assert.NoError(t, repo.IncrementViews(context.Background(), "deal1"))
	_, err = os.Stat(tempFile)
	assert.NoError(t, err, "Journal file should be created")
}
