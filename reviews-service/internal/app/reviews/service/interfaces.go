package service

import (
	"context"

	"storefront/pkg/auth"
	"storefront/reviews-service/internal/app/reviews/entity"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, identity *auth.Identity, req *entity.CreateReviewRequest) (string, error)
	ListReviews(ctx context.Context, identity *auth.Identity) ([]entity.ReviewView, error)
	UpdateReview(ctx context.Context, identity *auth.Identity, reviewID string, req *entity.UpdateReviewRequest) error
	DeleteReview(ctx context.Context, identity *auth.Identity, reviewID string) error
	SetVisibility(ctx context.Context, identity *auth.Identity, reviewID string, visible bool) error
}
