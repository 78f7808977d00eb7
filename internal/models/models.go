// Package models содержит доменные типы и DTO сервиса статистики сделок.
package models

import "time"

// DealStats хранит счётчики одной сделки
type DealStats struct {
	DealID         string   `json:"deal_id" firestore:"dealId"`
	Views          int64    `json:"views" firestore:"views"`
	Likes          int64    `json:"likes" firestore:"likes"`
	LikedBy        []string `json:"liked_by" firestore:"likedBy"`
	PurchaseClicks int64    `json:"purchase_clicks" firestore:"purchaseClicks"`
}

// StatsView представляет ответ getStats
type StatsView struct {
	Views          int64    `json:"views"`
	Likes          int64    `json:"likes"`
	PurchaseClicks int64    `json:"purchaseClicks"`
	Comments       int64    `json:"comments"`
	LikedBy        []string `json:"likedBy"`
}

// LikeResult описывает состояние лайка после переключения
type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// SuccessResponse представляет ответ recordView и служебных операций
type SuccessResponse struct {
	Success bool `json:"success"`
}

// PurchaseClickResponse представляет ответ recordPurchaseClick
type PurchaseClickResponse struct {
	Success bool `json:"success"`
	Counted bool `json:"counted"`
}

// ErrorResponse возвращается при любой ошибке API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Comment представляет комментарий к сделке. В счётчик попадают только одобренные.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	DealID    string    `json:"deal_id" gorm:"index;size:64;not null"`
	ActorKey  string    `json:"actor_key" gorm:"size:80;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	Approved  bool      `json:"approved" gorm:"index;not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentRequest представляет тело POST /api/deals/{id}/comments
type CommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// Store представляет магазин (продавца), владельца сделок
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerKey  string    `json:"owner_key"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreRequest представляет тело POST /api/stores
type StoreRequest struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
}

// DuplicateCheckResponse представляет ответ проверки уникальности имени
type DuplicateCheckResponse struct {
	Exists bool `json:"exists"`
}
