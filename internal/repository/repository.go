package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tempizhere/dealhub/internal/models"
)

var (
	// ErrStoreExists возвращается при попытке создать магазин с занятым slug
	ErrStoreExists = errors.New("store already exists")
	// ErrCommentNotFound возвращается, если комментарий с таким ID отсутствует
	ErrCommentNotFound = errors.New("comment not found")
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// StatsRepository определяет интерфейс хранилища счётчиков сделок.
// Все изменения выполняются атомарно средствами конкретного хранилища.
type StatsRepository interface {
	// IncrementViews увеличивает views на 1, создавая запись при необходимости
	IncrementViews(ctx context.Context, dealID string) error
	// IncrementPurchaseClicks увеличивает purchaseClicks на 1, создавая запись при необходимости
	IncrementPurchaseClicks(ctx context.Context, dealID string) error
	// ToggleLike добавляет или убирает actorKey из likedBy и возвращает новое состояние
	ToggleLike(ctx context.Context, dealID, actorKey string) (liked bool, likes int64, err error)
	// Get возвращает счётчики сделки; для неизвестной сделки возвращается нулевая запись
	Get(ctx context.Context, dealID string) (models.DealStats, error)
	// Delete удаляет запись сделки вместе с множеством лайков
	Delete(ctx context.Context, dealID string) error
}

// CommentRepository определяет интерфейс хранилища комментариев
type CommentRepository interface {
	// Create сохраняет новый комментарий
	Create(ctx context.Context, comment models.Comment) error
	// Approve помечает комментарий одобренным
	Approve(ctx context.Context, id string) error
	// CountApproved возвращает число одобренных комментариев сделки
	CountApproved(ctx context.Context, dealID string) (int64, error)
	// DeleteByDeal удаляет все комментарии сделки
	DeleteByDeal(ctx context.Context, dealID string) error
}

// StoreRepository определяет интерфейс хранилища магазинов
type StoreRepository interface {
	// Create сохраняет магазин, ErrStoreExists при занятом slug
	Create(ctx context.Context, store models.Store) error
	// ExistsBySlug проверяет, занят ли slug
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// Database определяет интерфейс для работы с базой данных
type Database interface {
	// PingContext проверяет соединение с базой данных
	PingContext(ctx context.Context) error
	// Close закрывает соединение с базой данных
	Close() error
	// ExecContext выполняет SQL-команду без возврата результатов
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	// QueryContext выполняет SQL-запрос и возвращает результаты
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	// QueryRowContext выполняет SQL-запрос и возвращает одну строку результата
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	// BeginTx начинает новую транзакцию
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
