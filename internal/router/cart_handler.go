package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"freshcart.app/storefront/pkg/global"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/mongo"
	"freshcart.app/storefront/pkg/pricing"
)

func GetCart(c *gin.Context) {
	store := deps.Carts.Get(c.Request.Context(), c.GetString("sessionID"))
	c.JSON(http.StatusOK, global.SuccessResponse(store.Snapshot()))
}

// AddToCart adds one unit of a product; repeating the call bumps the
// quantity.
func AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("product_id is required", []global.ValidationError{
			{Field: "product_id", Message: "product_id is required", Code: "required"},
		}))
		return
	}

	product, err := deps.Products.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, mongo.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add to cart", nil))
		return
	}
	if !product.InStock {
		c.JSON(http.StatusConflict, global.ErrorResponse("Product is out of stock", nil))
		return
	}

	store := deps.Carts.Get(c.Request.Context(), c.GetString("sessionID"))
	store.AddItem(product)

	c.JSON(http.StatusOK, global.SuccessResponse(store.Snapshot()))
}

// UpdateCartItem sets a line's quantity; zero or below removes the line, an
// unknown product id is a no-op.
func UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid quantity payload", nil))
		return
	}

	store := deps.Carts.Get(c.Request.Context(), c.GetString("sessionID"))
	store.UpdateQuantity(c.Param("productId"), req.Quantity)

	c.JSON(http.StatusOK, global.SuccessResponse(store.Snapshot()))
}

func RemoveFromCart(c *gin.Context) {
	store := deps.Carts.Get(c.Request.Context(), c.GetString("sessionID"))
	store.RemoveItem(c.Param("productId"))

	c.JSON(http.StatusOK, global.SuccessResponse(store.Snapshot()))
}

// GetCartSummary previews the money breakdown for the current cart. The
// mini view uses the lower free-delivery threshold shown on the floating
// cart bar; the default view matches checkout.
func GetCartSummary(c *gin.Context) {
	cfg := pricing.StandardConfig()
	if c.Query("view") == "mini" {
		cfg = pricing.MiniConfig()
	}

	tip, _ := strconv.ParseInt(c.DefaultQuery("tip", "0"), 10, 64)
	discount, _ := strconv.ParseInt(c.DefaultQuery("discount", "0"), 10, 64)

	store := deps.Carts.Get(c.Request.Context(), c.GetString("sessionID"))
	breakdown, err := pricing.NewCalculator(cfg).Compute(store.TotalPrice(), discount, tip)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid summary amounts", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(breakdown))
}

func ClearCart(c *gin.Context) {
	store := deps.Carts.Get(c.Request.Context(), c.GetString("sessionID"))
	store.Clear()

	c.JSON(http.StatusOK, global.SuccessResponse(store.Snapshot()))
}
