package repository

import (
	"context"
	"errors"

	"storefront/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository определяет методы для работы с товарами в MongoDB
// onlyAvailable=true ограничивает выборку товарами с isAvailable=true
type ProductRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, product *entity.Product) error
	GetByProductID(ctx context.Context, productID string) (*entity.Product, error)
	List(ctx context.Context, onlyAvailable bool) ([]entity.Product, error)
	Search(ctx context.Context, query string) ([]entity.Product, error)
	Filter(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	Update(ctx context.Context, productID string, set bson.M) (int64, error)
	Delete(ctx context.Context, productID string) (int64, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}
