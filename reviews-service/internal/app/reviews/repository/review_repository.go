package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/metrics"
	"storefront/reviews-service/internal/app/reviews/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound = errors.New("review not found")
)

const (
	serviceName       = "reviews-service"
	reviewsCollection = "reviews"
)

// reviewProjection - поля, которые отдаются в списке отзывов
var reviewProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: "reviewId", Value: 1},
	{Key: "productID", Value: 1},
	{Key: "name", Value: 1},
	{Key: "email", Value: 1},
	{Key: "rating", Value: 1},
	{Key: "comment", Value: 1},
}

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &reviewRepository{
		collection: db.Collection(reviewsCollection),
	}
}

// EnsureIndexes создает уникальный индекс по reviewId и индекс для сортировки по дате
func (r *reviewRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reviewId", Value: 1}},
			Options: options.Index().SetName("review_id_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "isVisible", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("visible_date_idx"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

// Create сохраняет новый отзыв; date проставляется здесь, если не задана
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.Date.IsZero() {
		review.Date = time.Now().UTC()
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, reviewsCollection)
	result, err := r.collection.InsertOne(ctx, review)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	// Устанавливаем ID из результата вставки
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByReviewID получает отзыв по reviewId
func (r *reviewRepository) GetByReviewID(ctx context.Context, reviewID string) (*entity.Review, error) {
	return r.findOne(ctx, bson.M{"reviewId": reviewID}, options.FindOne())
}

// GetLatest получает последний по дате отзыв
func (r *reviewRepository) GetLatest(ctx context.Context) (*entity.Review, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	return r.findOne(ctx, bson.M{}, opts)
}

// List возвращает отзывы от новых к старым
// onlyVisible=true для не-админа
func (r *reviewRepository) List(ctx context.Context, onlyVisible bool) ([]entity.ReviewView, error) {
	filter := bson.M{}
	if onlyVisible {
		filter["isVisible"] = true
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetProjection(reviewProjection)

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]entity.ReviewView, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	timer.Done(nil)
	return reviews, nil
}

// Update применяет $set к отзыву
func (r *reviewRepository) Update(ctx context.Context, reviewID string, set bson.M) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, reviewsCollection)

	result, err := r.collection.UpdateOne(ctx, bson.M{"reviewId": reviewID}, bson.M{"$set": set})
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete удаляет отзыв из MongoDB
func (r *reviewRepository) Delete(ctx context.Context, reviewID string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, reviewsCollection)

	result, err := r.collection.DeleteOne(ctx, bson.M{"reviewId": reviewID})
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)

	var review entity.Review
	err := r.collection.FindOne(ctx, filter, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrReviewNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	timer.Done(nil)
	return &review, nil
}
