package entity

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	ProductID string `json:"productID" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required"`
}

// UpdateReviewRequest - запрос на обновление отзыва
// Нулевые значения (rating=0, comment="") оставляют поле без изменений
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment"`
}

// VisibilityRequest - тело PUT /reviews/visibility/:reviewId
type VisibilityRequest struct {
	IsVisible *bool `json:"isVisible" validate:"required"`
}

// CreateReviewResponse - ответ на создание отзыва
type CreateReviewResponse struct {
	Message  string `json:"message"`
	ReviewID string `json:"reviewId"`
}

// MessageResponse - стандартный ответ {message}
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse - ответ об ошибке; Error заполняется только для 500
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
