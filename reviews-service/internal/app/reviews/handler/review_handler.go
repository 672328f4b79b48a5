package handler

import (
	"errors"
	"net/http"

	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/reviews-service/internal/app/reviews/entity"
	"storefront/reviews-service/internal/app/reviews/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// CreateReview обрабатывает POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	identity := auth.IdentityFromContext(c)
	if identity == nil {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	reviewID, err := h.reviewService.CreateReview(c.Request.Context(), identity, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			respondMessage(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		respondServerError(c, "Error submitting review", err)
		return
	}

	c.JSON(http.StatusOK, entity.CreateReviewResponse{
		Message:  "Review submitted successfully",
		ReviewID: reviewID,
	})
}

// GetReviews обрабатывает GET /reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), auth.IdentityFromContext(c))
	if err != nil {
		respondServerError(c, "Error fetching reviews", err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// UpdateReview обрабатывает PUT /reviews/:reviewId
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	identity := auth.IdentityFromContext(c)
	if identity == nil {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	err := h.reviewService.UpdateReview(c.Request.Context(), identity, c.Param("reviewId"), &req)
	if err != nil {
		h.respondReviewError(c, err, "Error updating review")
		return
	}

	respondMessage(c, http.StatusOK, "Review updated successfully")
}

// DeleteReview обрабатывает DELETE /reviews/:reviewId
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	identity := auth.IdentityFromContext(c)
	if identity == nil {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), identity, c.Param("reviewId")); err != nil {
		h.respondReviewError(c, err, "Error deleting review")
		return
	}

	respondMessage(c, http.StatusOK, "Review deleted successfully")
}

// ToggleVisibility обрабатывает PUT /reviews/visibility/:reviewId (только admin)
func (h *ReviewHandler) ToggleVisibility(c *gin.Context) {
	identity := auth.IdentityFromContext(c)
	if !auth.IsAdmin(identity) {
		respondMessage(c, http.StatusForbidden, "Forbidden")
		return
	}

	var req entity.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	err := h.reviewService.SetVisibility(c.Request.Context(), identity, c.Param("reviewId"), *req.IsVisible)
	if err != nil {
		h.respondReviewError(c, err, "Error updating visibility")
		return
	}

	respondMessage(c, http.StatusOK, "Review visibility updated successfully")
}

// respondReviewError переводит ошибки сервиса в HTTP статусы
func (h *ReviewHandler) respondReviewError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrReviewNotFound):
		respondMessage(c, http.StatusNotFound, "Review not found")
	case errors.Is(err, service.ErrForbidden):
		respondMessage(c, http.StatusForbidden, "Forbidden")
	default:
		respondServerError(c, message, err)
	}
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, entity.MessageResponse{Message: message})
}

func respondServerError(c *gin.Context, message string, err error) {
	logger.Error().
		Err(err).
		Str("path", c.FullPath()).
		Msg(message)
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: message, Error: err.Error()})
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
