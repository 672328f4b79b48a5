package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/auth"
)

// Product представляет товар в каталоге
// Ключи документа в camelCase - коллекция общая с legacy приложением
type Product struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ProductID   string             `json:"productID" bson:"productID"` // Внешний идентификатор товара
	Name        string             `json:"name" bson:"name"`
	AltNames    []string           `json:"altNames" bson:"altNames"` // Альтернативные названия для поиска
	Category    string             `json:"category" bson:"category"`
	Price       float64            `json:"price" bson:"price"`
	IsAvailable bool               `json:"isAvailable" bson:"isAvailable"` // Недоступные товары видит только admin
}

// VisibleTo - политика видимости товара для вызывающего
func (p *Product) VisibleTo(admin bool) bool {
	return auth.Visible(p.IsAvailable, admin)
}

// ProductFilter - условия для GET /products/filter
// nil означает "без ограничения"
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// AllCategories - значение category, отключающее фильтр по категории
const AllCategories = "all"

// HasCategory сообщает, нужно ли ограничивать выборку по категории
func (f ProductFilter) HasCategory() bool {
	return f.Category != "" && f.Category != AllCategories
}
