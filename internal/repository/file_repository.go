package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

// Типы событий журнала
const (
	eventView          = "view"
	eventPurchaseClick = "purchase_click"
	eventLike          = "like"
	eventUnlike        = "unlike"
	eventPurge         = "purge"
)

// EventRecord представляет строку журнала событий в JSON-файле
type EventRecord struct {
	DealID   string `json:"deal_id"`
	Event    string `json:"event"`
	ActorKey string `json:"actor_key,omitempty"`
}

// FileStatsRepository реализует StatsRepository поверх журнала событий.
// Состояние держится в памяти и восстанавливается проигрыванием файла при старте.
type FileStatsRepository struct {
	mem      *MemoryStatsRepository
	filePath string
	file     *os.File
	logger   *zap.Logger
	mutex    sync.Mutex
}

// NewFileStatsRepository открывает журнал и проигрывает его
func NewFileStatsRepository(filePath string, logger *zap.Logger) (*FileStatsRepository, error) {
	repo := &FileStatsRepository{
		mem:      NewMemoryStatsRepository(),
		filePath: filePath,
		logger:   logger,
	}

	// Создаём директорию, если не существует
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	if err := repo.replay(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	repo.file = file
	return repo, nil
}

// replay читает журнал построчно и применяет события к памяти
func (r *FileStatsRepository) replay() error {
	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	applied := 0
	for scanner.Scan() {
		var record EventRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			// Пропускаем некорректные строки
			r.logger.Warn("Skipping invalid JSON line", zap.String("line", scanner.Text()), zap.Error(err))
			continue
		}
		r.apply(record)
		applied++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	r.logger.Info("Stats journal replayed", zap.String("path", r.filePath), zap.Int("events", applied))
	return nil
}

// apply применяет событие к состоянию в памяти
func (r *FileStatsRepository) apply(record EventRecord) {
	ctx := context.Background()
	switch record.Event {
	case eventView:
		_ = r.mem.IncrementViews(ctx, record.DealID)
	case eventPurchaseClick:
		_ = r.mem.IncrementPurchaseClicks(ctx, record.DealID)
	case eventLike, eventUnlike:
		want := record.Event == eventLike
		r.mem.mu.Lock()
		r.mem.setLike(record.DealID, record.ActorKey, &want)
		r.mem.mu.Unlock()
	case eventPurge:
		_ = r.mem.Delete(ctx, record.DealID)
	default:
		r.logger.Warn("Skipping unknown journal event", zap.String("event", record.Event))
	}
}

// append дописывает событие в журнал. Вызывать под mutex.
func (r *FileStatsRepository) append(record EventRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := r.file.Write(data); err != nil {
		r.logger.Error("Failed to write stats journal", zap.String("deal_id", record.DealID), zap.Error(err))
		return err
	}
	return nil
}

// IncrementViews записывает просмотр
func (r *FileStatsRepository) IncrementViews(ctx context.Context, dealID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.append(EventRecord{DealID: dealID, Event: eventView}); err != nil {
		return err
	}
	return r.mem.IncrementViews(ctx, dealID)
}

// IncrementPurchaseClicks записывает клик «купить»
func (r *FileStatsRepository) IncrementPurchaseClicks(ctx context.Context, dealID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.append(EventRecord{DealID: dealID, Event: eventPurchaseClick}); err != nil {
		return err
	}
	return r.mem.IncrementPurchaseClicks(ctx, dealID)
}

// ToggleLike переключает лайк и записывает итоговое состояние в журнал
func (r *FileStatsRepository) ToggleLike(ctx context.Context, dealID, actorKey string) (bool, int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, err := r.mem.Get(ctx, dealID)
	if err != nil {
		return false, 0, err
	}
	liked := true
	for _, a := range current.LikedBy {
		if a == actorKey {
			liked = false
			break
		}
	}
	event := eventUnlike
	if liked {
		event = eventLike
	}
	if err := r.append(EventRecord{DealID: dealID, Event: event, ActorKey: actorKey}); err != nil {
		return false, 0, err
	}
	return r.mem.ToggleLike(ctx, dealID, actorKey)
}

// Get возвращает счётчики сделки
func (r *FileStatsRepository) Get(ctx context.Context, dealID string) (models.DealStats, error) {
	return r.mem.Get(ctx, dealID)
}

// Delete удаляет сделку и фиксирует это в журнале
func (r *FileStatsRepository) Delete(ctx context.Context, dealID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.append(EventRecord{DealID: dealID, Event: eventPurge}); err != nil {
		return err
	}
	return r.mem.Delete(ctx, dealID)
}

// Close закрывает файл журнала
func (r *FileStatsRepository) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
