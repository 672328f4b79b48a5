package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/messaging"
	"storefront/pkg/metrics"
	"storefront/reviews-service/internal/app/reviews/entity"
	"storefront/reviews-service/internal/app/reviews/repository"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound = errors.New("review not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
)

// ReviewService обрабатывает бизнес-логику отзывов
// Координирует работу репозиториев и Kafka
type ReviewService struct {
	reviewRepo   repository.ReviewRepository
	sequenceRepo repository.SequenceRepository
	publisher    messaging.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	sequenceRepo repository.SequenceRepository,
	publisher messaging.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		sequenceRepo: sequenceRepo,
		publisher:    publisher,
	}
}

// SyncSequence выравнивает счетчик reviewId по последнему отзыву
// Вызывается при старте, чтобы продолжить нумерацию существующих данных
func (s *ReviewService) SyncSequence(ctx context.Context) error {
	latest, err := s.reviewRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get latest review: %w", err)
	}

	seq, ok := ParseReviewID(latest.ReviewID)
	if !ok {
		logger.Warn().
			Str("review_id", latest.ReviewID).
			Msg("Latest review has unexpected id format, sequence not seeded")
		return nil
	}

	if err := s.sequenceRepo.EnsureAtLeast(ctx, reviewIDSequence, seq); err != nil {
		return err
	}

	logger.Info().Int64("seq", seq).Msg("Review id sequence synchronized")
	return nil
}

// CreateReview создает отзыв от имени аутентифицированного пользователя
// 1. Выделяет следующий reviewId из счетчика
// 2. Сохраняет отзыв в MongoDB
// 3. Отправляет событие REVIEW_CREATED в Kafka
func (s *ReviewService) CreateReview(ctx context.Context, identity *auth.Identity, req *entity.CreateReviewRequest) (string, error) {
	if identity == nil {
		return "", ErrUnauthorized
	}

	seq, err := s.sequenceRepo.Next(ctx, reviewIDSequence)
	if err != nil {
		return "", fmt.Errorf("failed to allocate review id: %w", err)
	}

	review := &entity.Review{
		ReviewID:  FormatReviewID(seq),
		ProductID: req.ProductID,
		Name:      identity.DisplayName(),
		Email:     identity.Email,
		Rating:    req.Rating,
		Comment:   req.Comment,
		IsVisible: true,
		Date:      time.Now().UTC(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return "", fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))

	s.publish(ctx, messaging.EventReviewCreated, review.ReviewID, identity, review)

	return review.ReviewID, nil
}

// ListReviews возвращает отзывы от новых к старым; не-админ видит только видимые
func (s *ReviewService) ListReviews(ctx context.Context, identity *auth.Identity) ([]entity.ReviewView, error) {
	reviews, err := s.reviewRepo.List(ctx, !auth.IsAdmin(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReview обновляет rating/comment; доступно автору и администратору
// rating=0 и comment="" не меняют текущие значения
func (s *ReviewService) UpdateReview(ctx context.Context, identity *auth.Identity, reviewID string, req *entity.UpdateReviewRequest) error {
	review, err := s.authorize(ctx, identity, reviewID)
	if err != nil {
		return err
	}

	// Обновляем только переданные поля
	if req.Rating != 0 {
		review.Rating = req.Rating
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}

	set := bson.M{
		"rating":  review.Rating,
		"comment": review.Comment,
	}
	if err := s.reviewRepo.Update(ctx, reviewID, set); err != nil {
		return s.mapRepoError(err, "failed to update review")
	}

	s.publish(ctx, messaging.EventReviewUpdated, reviewID, identity, set)
	return nil
}

// DeleteReview удаляет отзыв; доступно автору и администратору
func (s *ReviewService) DeleteReview(ctx context.Context, identity *auth.Identity, reviewID string) error {
	if _, err := s.authorize(ctx, identity, reviewID); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return s.mapRepoError(err, "failed to delete review")
	}

	s.publish(ctx, messaging.EventReviewDeleted, reviewID, identity, nil)
	return nil
}

// SetVisibility скрывает или показывает отзыв; только для администратора
// Права проверяются до поиска отзыва
func (s *ReviewService) SetVisibility(ctx context.Context, identity *auth.Identity, reviewID string, visible bool) error {
	if !auth.IsAdmin(identity) {
		return ErrForbidden
	}

	if err := s.reviewRepo.Update(ctx, reviewID, bson.M{"isVisible": visible}); err != nil {
		return s.mapRepoError(err, "failed to update visibility")
	}

	metrics.ReviewModerations.WithLabelValues(strconv.FormatBool(visible)).Inc()
	s.publish(ctx, messaging.EventReviewVisibilityChanged, reviewID, identity, map[string]bool{"isVisible": visible})
	return nil
}

// authorize загружает отзыв и проверяет, что вызывающий - автор или администратор
func (s *ReviewService) authorize(ctx context.Context, identity *auth.Identity, reviewID string) (*entity.Review, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	review, err := s.reviewRepo.GetByReviewID(ctx, reviewID)
	if err != nil {
		return nil, s.mapRepoError(err, "failed to get review")
	}

	if !auth.IsAdmin(identity) && !auth.IsOwner(identity, review.Email) {
		return nil, ErrForbidden
	}

	return review, nil
}

func (s *ReviewService) mapRepoError(err error, msg string) error {
	if errors.Is(err, repository.ErrReviewNotFound) {
		return ErrReviewNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// publish отправляет событие об отзыве в Kafka
// Отзыв уже сохранен, проблемы с Kafka не критичны
func (s *ReviewService) publish(ctx context.Context, eventType, reviewID string, identity *auth.Identity, payload interface{}) {
	event, err := messaging.NewEvent(eventType, messaging.EntityReview, reviewID, identity.Email, payload)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to build review event")
		return
	}

	if err := messaging.PublishEvent(ctx, s.publisher, event); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("review_id", reviewID).
			Msg("Failed to publish review event")
	}
}
