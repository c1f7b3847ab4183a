package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/global"
	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/mongo"
)

func HealthCheck(c *gin.Context) {
	db := mongo.GetDatabase()
	if err := db.Client().Ping(c, nil); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

// GetProductByID retrieves a product by id with Redis caching.
func GetProductByID(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	// Try Redis cache first
	product, err := deps.Cache.GetProduct(ctx, id)
	if err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(product))
		return
	}

	// Cache miss, check MongoDB
	product, err = deps.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "id", Message: "No product exists with this id", Code: "not_found"},
			}))
			return
		}
		logger.Get().Error("failed to fetch product", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return
	}

	// Found in MongoDB, cache it for future requests
	if cacheErr := deps.Cache.CacheProduct(ctx, product); cacheErr != nil {
		logger.Get().Warn("failed to cache product", zap.String("id", id), zap.Error(cacheErr))
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func GetProductsByCategory(c *gin.Context) {
	category := models.Category(c.Param("category"))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Unknown category", []global.ValidationError{
			{Field: "category", Message: "category is not one of the catalog sections", Code: "invalid"},
		}))
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	products, err := deps.Products.ListByCategory(c.Request.Context(), category, limit)
	if err != nil {
		logger.Get().Error("failed to list category", zap.String("category", string(category)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get products", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("q query parameter required", []global.ValidationError{
			{Field: "q", Message: "q query parameter is required", Code: "required"},
		}))
		return
	}

	category := models.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Unknown category", []global.ValidationError{
			{Field: "category", Message: "category is not one of the catalog sections", Code: "invalid"},
		}))
		return
	}

	products, err := deps.Products.Search(c.Request.Context(), query, category, c.Query("subcategory"), 50)
	if err != nil {
		logger.Get().Error("product search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Search failed", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product payload", nil))
		return
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Unknown category", []global.ValidationError{
			{Field: "category", Message: "category is not one of the catalog sections", Code: "invalid"},
		}))
		return
	}

	product, err := deps.Products.Create(c.Request.Context(), req.ToProduct())
	if err != nil {
		logger.Get().Error("failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create product", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(product))
}
