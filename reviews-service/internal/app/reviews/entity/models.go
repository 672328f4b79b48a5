package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/auth"
)

// Review - отзыв покупателя о товаре (коллекция reviews)
type Review struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ReviewID  string             `json:"reviewId" bson:"reviewId"`   // REV + 6 цифр
	ProductID string             `json:"productID" bson:"productID"` // Ссылка на товар, не проверяется
	Name      string             `json:"name" bson:"name"`           // Имя автора на момент создания
	Email     string             `json:"email" bson:"email"`         // По email определяется владелец
	Rating    int                `json:"rating" bson:"rating"`       // Оценка от 1 до 5
	Comment   string             `json:"comment" bson:"comment"`
	IsVisible bool               `json:"isVisible" bson:"isVisible"` // Скрытые отзывы видит только admin
	Date      time.Time          `json:"date" bson:"date"`
}

// VisibleTo - политика видимости отзыва для вызывающего
func (r *Review) VisibleTo(admin bool) bool {
	return auth.Visible(r.IsVisible, admin)
}

// View возвращает публичное представление отзыва
func (r *Review) View() ReviewView {
	return ReviewView{
		ReviewID:  r.ReviewID,
		ProductID: r.ProductID,
		Name:      r.Name,
		Email:     r.Email,
		Rating:    r.Rating,
		Comment:   r.Comment,
	}
}

// ReviewView - элемент ответа GET /reviews (без isVisible и date)
type ReviewView struct {
	ReviewID  string `json:"reviewId" bson:"reviewId"`
	ProductID string `json:"productID" bson:"productID"`
	Name      string `json:"name" bson:"name"`
	Email     string `json:"email" bson:"email"`
	Rating    int    `json:"rating" bson:"rating"`
	Comment   string `json:"comment" bson:"comment"`
}
