package util

import (
	"context"
	"time"
)

// CategoryCache интерфейс для кеша списка категорий
// Используется для dependency injection и упрощения тестирования
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []string, ttl time.Duration) error
	// GetCategories возвращает nil, nil при промахе
	GetCategories(ctx context.Context) ([]string, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}
