package service

import (
	"context"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/auth"
)

type CatalogServiceInterface interface {
	CreateProduct(ctx context.Context, identity *auth.Identity, req *entity.CreateProductRequest) (*entity.Product, error)
	ListProducts(ctx context.Context, identity *auth.Identity) ([]entity.Product, error)
	GetProduct(ctx context.Context, identity *auth.Identity, productID string) (*entity.Product, error)
	UpdateProduct(ctx context.Context, identity *auth.Identity, productID string, req *entity.UpdateProductRequest) error
	DeleteProduct(ctx context.Context, identity *auth.Identity, productID string) error

	SearchProducts(ctx context.Context, query string) ([]entity.Product, error)
	FilterProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}
