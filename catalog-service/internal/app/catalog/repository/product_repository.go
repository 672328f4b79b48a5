package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	serviceName        = "catalog-service"
	productsCollection = "products"
)

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: db.Collection(productsCollection),
	}
}

// EnsureIndexes создает индексы коллекции products
// Вызывается один раз при старте сервиса
func (r *productRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "productID", Value: 1}},
			Options: options.Index().SetName("product_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}},
			Options: options.Index().SetName("category_price_idx"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// Create сохраняет новый товар
// Повторный productID не проверяется
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, productsCollection)

	result, err := r.collection.InsertOne(ctx, product)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

// GetByProductID получает товар по внешнему идентификатору
func (r *productRepository) GetByProductID(ctx context.Context, productID string) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, productsCollection)

	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"productID": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrProductNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	timer.Done(nil)
	return &product, nil
}

// List возвращает все товары; для не-админа onlyAvailable=true
func (r *productRepository) List(ctx context.Context, onlyAvailable bool) ([]entity.Product, error) {
	filter := bson.M{}
	if onlyAvailable {
		filter["isAvailable"] = true
	}
	return r.find(ctx, filter)
}

// Search ищет подстроку в name или в любом из altNames без учета регистра
// Поиск всегда идет только по доступным товарам
func (r *productRepository) Search(ctx context.Context, query string) ([]entity.Product, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}

	filter := bson.M{
		"isAvailable": true,
		"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"altNames": pattern},
		},
	}
	return r.find(ctx, filter)
}

// Filter выбирает доступные товары по категории и диапазону цены (границы включительно)
func (r *productRepository) Filter(ctx context.Context, f entity.ProductFilter) ([]entity.Product, error) {
	filter := bson.M{"isAvailable": true}

	if f.HasCategory() {
		filter["category"] = f.Category
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	return r.find(ctx, filter)
}

// Update применяет $set к товару и возвращает число совпавших документов
// Пустой set - ничего не делаем
func (r *productRepository) Update(ctx context.Context, productID string, set bson.M) (int64, error) {
	if len(set) == 0 {
		return 0, nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, productsCollection)

	result, err := r.collection.UpdateOne(ctx, bson.M{"productID": productID}, bson.M{"$set": set})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to update product: %w", err)
	}

	return result.MatchedCount, nil
}

// Delete физически удаляет товар и возвращает число удаленных документов
func (r *productRepository) Delete(ctx context.Context, productID string) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, productsCollection)

	result, err := r.collection.DeleteOne(ctx, bson.M{"productID": productID})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}

	return result.DeletedCount, nil
}

// DistinctCategories возвращает уникальные значения category по всем товарам
func (r *productRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDistinct, productsCollection)

	values, err := r.collection.Distinct(ctx, "category", bson.M{})
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}

	return categories, nil
}

func (r *productRepository) find(ctx context.Context, filter bson.M) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, productsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]entity.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	timer.Done(nil)
	return products, nil
}
