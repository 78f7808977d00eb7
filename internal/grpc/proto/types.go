// Package proto содержит определения типов для gRPC сервиса статистики сделок
package proto

// DealRequest адресует одну сделку
type DealRequest struct {
	DealID string `json:"deal_id"`
}

// RecordViewResponse представляет ответ на учёт просмотра
type RecordViewResponse struct {
	Success bool `json:"success"`
}

// RecordPurchaseClickResponse представляет ответ на учёт клика «купить»
type RecordPurchaseClickResponse struct {
	Success bool `json:"success"`
	Counted bool `json:"counted"`
}

// ToggleLikeResponse представляет состояние лайка после переключения
type ToggleLikeResponse struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// GetStatsResponse представляет сводную статистику сделки
type GetStatsResponse struct {
	Views          int64    `json:"views"`
	Likes          int64    `json:"likes"`
	PurchaseClicks int64    `json:"purchase_clicks"`
	Comments       int64    `json:"comments"`
	LikedBy        []string `json:"liked_by"`
}

// CheckStoreNameRequest представляет запрос проверки имени магазина
type CheckStoreNameRequest struct {
	Name string `json:"name"`
}

// CheckStoreNameResponse представляет результат проверки имени
type CheckStoreNameResponse struct {
	Exists bool `json:"exists"`
}

// PurgeStatsResponse представляет ответ на очистку статистики
type PurgeStatsResponse struct {
	Success bool `json:"success"`
}

// PingRequest представляет запрос проверки состояния
type PingRequest struct{}

// PingResponse представляет ответ проверки состояния
type PingResponse struct {
	DatabaseAvailable bool `json:"database_available"`
}
