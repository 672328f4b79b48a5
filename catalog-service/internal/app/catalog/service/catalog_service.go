package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/messaging"
	"storefront/pkg/metrics"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrForbidden       = errors.New("forbidden")
	ErrProductNotFound = errors.New("product not found")
)

// categoriesTTL - время жизни кеша категорий
const categoriesTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога товаров
// Координирует работу репозитория, Redis кеша и Kafka producer
type CatalogService struct {
	productRepo repository.ProductRepository // Репозиторий товаров в MongoDB
	cache       util.CategoryCache           // Кеш списка категорий
	publisher   messaging.MessagePublisher   // Producer для событий о товарах
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	publisher messaging.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		cache:       cache,
		publisher:   publisher,
	}
}

// CreateProduct создает товар; доступно только администратору
// Дубликат productID не проверяется
func (s *CatalogService) CreateProduct(ctx context.Context, identity *auth.Identity, req *entity.CreateProductRequest) (*entity.Product, error) {
	if !auth.IsAdmin(identity) {
		return nil, ErrForbidden
	}

	product := req.ToProduct()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductMutations.WithLabelValues("create").Inc()
	s.invalidateCategories(ctx)
	s.publish(ctx, messaging.EventProductCreated, product.ProductID, identity, product)

	return product, nil
}

// ListProducts возвращает товары; не-админ видит только доступные
func (s *CatalogService) ListProducts(ctx context.Context, identity *auth.Identity) ([]entity.Product, error) {
	products, err := s.productRepo.List(ctx, !auth.IsAdmin(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetProduct возвращает товар по productID
// Недоступный товар для не-админа выглядит как отсутствующий
func (s *CatalogService) GetProduct(ctx context.Context, identity *auth.Identity, productID string) (*entity.Product, error) {
	product, err := s.productRepo.GetByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if !product.VisibleTo(auth.IsAdmin(identity)) {
		return nil, ErrProductNotFound
	}

	return product, nil
}

// UpdateProduct применяет частичное обновление
// Отсутствие совпавших документов ошибкой не считается
func (s *CatalogService) UpdateProduct(ctx context.Context, identity *auth.Identity, productID string, req *entity.UpdateProductRequest) error {
	if !auth.IsAdmin(identity) {
		return ErrForbidden
	}

	set := req.SetDocument()
	if len(set) == 0 {
		return nil
	}

	matched, err := s.productRepo.Update(ctx, productID, set)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if matched == 0 {
		logger.Debug().Str("product_id", productID).Msg("Update matched no products")
	}

	metrics.ProductMutations.WithLabelValues("update").Inc()
	s.invalidateCategories(ctx)
	s.publish(ctx, messaging.EventProductUpdated, productID, identity, set)

	return nil
}

// DeleteProduct физически удаляет товар
func (s *CatalogService) DeleteProduct(ctx context.Context, identity *auth.Identity, productID string) error {
	if !auth.IsAdmin(identity) {
		return ErrForbidden
	}

	deleted, err := s.productRepo.Delete(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if deleted == 0 {
		logger.Debug().Str("product_id", productID).Msg("Delete matched no products")
	}

	metrics.ProductMutations.WithLabelValues("delete").Inc()
	s.invalidateCategories(ctx)
	s.publish(ctx, messaging.EventProductDeleted, productID, identity, nil)

	return nil
}

// SearchProducts ищет по name/altNames среди доступных товаров, для всех ролей одинаково
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]entity.Product, error) {
	metrics.ProductSearches.WithLabelValues("search").Inc()

	products, err := s.productRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// FilterProducts фильтрует доступные товары по категории и цене
func (s *CatalogService) FilterProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	metrics.ProductSearches.WithLabelValues("filter").Inc()

	products, err := s.productRepo.Filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to filter products: %w", err)
	}
	return products, nil
}

// ListCategories возвращает уникальные категории с кешированием в Redis
// Сначала проверяет кеш, если нет - загружает из БД и кеширует
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read categories from cache")
	} else if categories != nil {
		return categories, nil
	}

	categories, err = s.productRepo.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesTTL); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}

// invalidateCategories сбрасывает кеш категорий после изменения товаров
func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

// publish отправляет событие в Kafka
// Ошибка только логируется: изменение уже сохранено
func (s *CatalogService) publish(ctx context.Context, eventType, productID string, identity *auth.Identity, payload interface{}) {
	event, err := messaging.NewEvent(eventType, messaging.EntityProduct, productID, identity.Email, payload)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to build product event")
		return
	}

	if err := messaging.PublishEvent(ctx, s.publisher, event); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("product_id", productID).
			Msg("Failed to publish product event")
	}
}
