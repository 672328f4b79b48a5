package entity

import "go.mongodb.org/mongo-driver/bson"

// CreateProductRequest - тело POST /products
type CreateProductRequest struct {
	ProductID   string   `json:"productID" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	AltNames    []string `json:"altNames"`
	Category    string   `json:"category"`
	Price       float64  `json:"price" validate:"gte=0"`
	IsAvailable *bool    `json:"isAvailable"` // по умолчанию true
}

// ToProduct собирает документ товара из запроса
func (r *CreateProductRequest) ToProduct() *Product {
	isAvailable := true
	if r.IsAvailable != nil {
		isAvailable = *r.IsAvailable
	}

	altNames := r.AltNames
	if altNames == nil {
		altNames = []string{}
	}

	return &Product{
		ProductID:   r.ProductID,
		Name:        r.Name,
		AltNames:    altNames,
		Category:    r.Category,
		Price:       r.Price,
		IsAvailable: isAvailable,
	}
}

// UpdateProductRequest - частичное обновление PUT /products/:productID
// Переданные поля перезаписываются, отсутствующие (nil) не трогаются.
// Неизвестные ключи тела игнорируются.
type UpdateProductRequest struct {
	ProductID   *string  `json:"productID,omitempty"`
	Name        *string  `json:"name,omitempty"`
	AltNames    []string `json:"altNames,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
}

// SetDocument возвращает поля для $set; пустой документ означает "нечего обновлять"
func (r *UpdateProductRequest) SetDocument() bson.M {
	set := bson.M{}
	if r.ProductID != nil {
		set["productID"] = *r.ProductID
	}
	if r.Name != nil {
		set["name"] = *r.Name
	}
	if r.AltNames != nil {
		set["altNames"] = r.AltNames
	}
	if r.Category != nil {
		set["category"] = *r.Category
	}
	if r.Price != nil {
		set["price"] = *r.Price
	}
	if r.IsAvailable != nil {
		set["isAvailable"] = *r.IsAvailable
	}
	return set
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
