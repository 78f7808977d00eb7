package repository

import (
	"context"
	"errors"

	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormCommentRepository реализует CommentRepository через gorm
type GormCommentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// CommentsDialector выбирает драйвер: PostgreSQL при заданном DSN, иначе SQLite-файл
func CommentsDialector(dsn, sqlitePath string) (gorm.Dialector, error) {
	switch {
	case dsn != "":
		return postgres.Open(dsn), nil
	case sqlitePath != "":
		return sqlite.Open(sqlitePath), nil
	default:
		return nil, errors.New("no comments database configured")
	}
}

// NewGormCommentRepository открывает базу и мигрирует таблицу comments
func NewGormCommentRepository(dialector gorm.Dialector, logger *zap.Logger) (*GormCommentRepository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Comment{}); err != nil {
		return nil, err
	}
	return &GormCommentRepository{db: db, logger: logger}, nil
}

// Create сохраняет комментарий
func (r *GormCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	if err := r.db.WithContext(ctx).Create(&comment).Error; err != nil {
		r.logger.Error("Failed to save comment", zap.String("deal_id", comment.DealID), zap.Error(err))
		return err
	}
	return nil
}

// Approve одобряет комментарий
func (r *GormCommentRepository) Approve(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("approved", true)
	if res.Error != nil {
		r.logger.Error("Failed to approve comment", zap.String("comment_id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// CountApproved считает одобренные комментарии сделки
func (r *GormCommentRepository) CountApproved(ctx context.Context, dealID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("deal_id = ? AND approved = ?", dealID, true).
		Count(&n).Error
	if err != nil {
		r.logger.Error("Failed to count comments", zap.String("deal_id", dealID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// DeleteByDeal удаляет комментарии сделки
func (r *GormCommentRepository) DeleteByDeal(ctx context.Context, dealID string) error {
	if err := r.db.WithContext(ctx).Where("deal_id = ?", dealID).Delete(&models.Comment{}).Error; err != nil {
		r.logger.Error("Failed to delete comments", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return nil
}

// Close закрывает соединение gorm
func (r *GormCommentRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
