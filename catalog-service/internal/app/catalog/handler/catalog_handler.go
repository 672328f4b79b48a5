package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/pkg/auth"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обрабатывает HTTP запросы для каталога
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// CreateProduct обрабатывает POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	_, err := h.catalogService.CreateProduct(c.Request.Context(), auth.IdentityFromContext(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			respondMessage(c, http.StatusForbidden, "Forbidden")
			return
		}
		respondServerError(c, "Error creating product", err)
		return
	}

	respondMessage(c, http.StatusOK, "Product created successfully")
}

// GetAllProducts обрабатывает GET /products
func (h *CatalogHandler) GetAllProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), auth.IdentityFromContext(c))
	if err != nil {
		respondServerError(c, "Error fetching products", err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct обрабатывает GET /products/:productID
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), auth.IdentityFromContext(c), c.Param("productID"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondMessage(c, http.StatusNotFound, "Product not found")
			return
		}
		respondServerError(c, "Error fetching product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct обрабатывает PUT /products/:productID
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.catalogService.UpdateProduct(c.Request.Context(), auth.IdentityFromContext(c), c.Param("productID"), &req)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			respondMessage(c, http.StatusForbidden, "Only admin can update products")
			return
		}
		respondServerError(c, "Error updating product", err)
		return
	}

	respondMessage(c, http.StatusOK, "Product updated successfully")
}

// DeleteProduct обрабатывает DELETE /products/:productID
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	err := h.catalogService.DeleteProduct(c.Request.Context(), auth.IdentityFromContext(c), c.Param("productID"))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			respondMessage(c, http.StatusForbidden, "Only admin can delete products")
			return
		}
		respondServerError(c, "Error deleting product", err)
		return
	}

	respondMessage(c, http.StatusOK, "Product deleted successfully")
}

// SearchProducts обрабатывает GET /products/:productID/:query
// Первый сегмент пути не используется
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	products, err := h.catalogService.SearchProducts(c.Request.Context(), c.Param("query"))
	if err != nil {
		respondServerError(c, "Error searching products", err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// FilterProducts обрабатывает GET /products/filter?category=&minPrice=&maxPrice=
func (h *CatalogHandler) FilterProducts(c *gin.Context) {
	minPrice, err := parsePrice(c.Query("minPrice"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid price filter")
		return
	}
	maxPrice, err := parsePrice(c.Query("maxPrice"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid price filter")
		return
	}

	filter := entity.ProductFilter{
		Category: c.Query("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}

	products, err := h.catalogService.FilterProducts(c.Request.Context(), filter)
	if err != nil {
		respondServerError(c, "Error filtering products", err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetCategories обрабатывает GET /products/categories/list (с кешированием)
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondServerError(c, "Error fetching categories", err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// Trending - заглушка GET /products/trending
func (h *CatalogHandler) Trending(c *gin.Context) {
	respondMessage(c, http.StatusOK, "trending products endpoint")
}

// parsePrice разбирает необязательную границу цены; пустая строка - без границы
func parsePrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	// ParseFloat принимает NaN и Inf, как границы цены они бессмысленны
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("price bound %q is not a finite number", raw)
	}
	return &value, nil
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, entity.MessageResponse{Message: message})
}

// respondServerError отдает 500 с текстом ошибки в поле error
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
