package repository

import (
	"context"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// BenchmarkMemoryStatsRepository_IncrementViews измеряет производительность инкремента в памяти
func BenchmarkMemoryStatsRepository_IncrementViews(b *testing.B) {
	ctx := context.Background()
	repo := NewMemoryStatsRepository()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := repo.IncrementViews(ctx, "deal-"+strconv.Itoa(i%100)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMemoryStatsRepository_ToggleLike_Parallel измеряет переключение лайков под конкуренцией
func BenchmarkMemoryStatsRepository_ToggleLike_Parallel(b *testing.B) {
	ctx := context.Background()
	repo := NewMemoryStatsRepository()
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			actor := "user:" + strconv.FormatInt(i%1000, 10)
			if _, _, err := repo.ToggleLike(ctx, "deal-hot", actor); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkMemoryStatsRepository_Get измеряет чтение статистики с большим likedBy
func BenchmarkMemoryStatsRepository_Get(b *testing.B) {
	ctx := context.Background()
	repo := NewMemoryStatsRepository()

	// Подготавливаем данные
	for i := 0; i < 1000; i++ {
		_, _, _ = repo.ToggleLike(ctx, "deal-hot", "user:"+strconv.Itoa(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.Get(ctx, "deal-hot"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFileStatsRepository_IncrementViews измеряет запись в журнал
func BenchmarkFileStatsRepository_IncrementViews(b *testing.B) {
	ctx := context.Background()
	repo, err := NewFileStatsRepository(filepath.Join(b.TempDir(), "bench.jsonl"), zap.NewNop())
	if err != nil {
		b.Fatal(err)
	}
	defer repo.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := repo.IncrementViews(ctx, "deal-"+strconv.Itoa(i%100)); err != nil {
			b.Fatal(err)
		}
	}
}
