package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/tempizhere/dealhub/internal/repository"
)

// schema создаёт таблицы счётчиков, лайков и магазинов
var schema = []string{
	`CREATE TABLE IF NOT EXISTS deal_stats (
		deal_id VARCHAR(64) PRIMARY KEY,
		views BIGINT NOT NULL DEFAULT 0,
		likes BIGINT NOT NULL DEFAULT 0 CHECK (likes >= 0),
		purchase_clicks BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS deal_likes (
		deal_id VARCHAR(64) NOT NULL,
		actor_key VARCHAR(128) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (deal_id, actor_key)
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(80) NOT NULL,
		slug VARCHAR(80) NOT NULL UNIQUE,
		owner_key VARCHAR(128) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// NewDB открывает PostgreSQL и применяет схему. Пустой DSN даёт nil без ошибки.
func NewDB(ctx context.Context, dsn string) (repository.Database, error) {
	if dsn == "" {
		return nil, nil
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := Migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate выполняет операторы схемы по порядку
func Migrate(ctx context.Context, db repository.Database) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
