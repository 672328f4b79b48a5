package repository

import (
	"context"

	"storefront/reviews-service/internal/app/reviews/entity"

	"go.mongodb.org/mongo-driver/bson"
)

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, review *entity.Review) error
	GetByReviewID(ctx context.Context, reviewID string) (*entity.Review, error)
	// GetLatest возвращает отзыв с самой поздней датой
	GetLatest(ctx context.Context) (*entity.Review, error)
	List(ctx context.Context, onlyVisible bool) ([]entity.ReviewView, error)
	Update(ctx context.Context, reviewID string, set bson.M) error
	Delete(ctx context.Context, reviewID string) error
}

// SequenceRepository - атомарные счетчики в коллекции counters
type SequenceRepository interface {
	// Next атомарно увеличивает счетчик и возвращает новое значение
	Next(ctx context.Context, name string) (int64, error)
	// EnsureAtLeast поднимает счетчик до value, если он меньше
	EnsureAtLeast(ctx context.Context, name string, value int64) error
}
