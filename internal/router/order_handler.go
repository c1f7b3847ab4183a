package router

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/address"
	"freshcart.app/storefront/pkg/geo"
	"freshcart.app/storefront/pkg/global"
	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/mongo"
	"freshcart.app/storefront/pkg/order"
	"freshcart.app/storefront/pkg/pricing"
)

type placeOrderRequest struct {
	AddressID      string           `json:"address_id"`
	PaymentMethod  string           `json:"payment_method" binding:"required"`
	Tip            int64            `json:"tip"`
	DiscountAmount int64            `json:"discount_amount"`
	AppliedPromo   string           `json:"applied_promo"`
	PickedLocation *geo.Coordinates `json:"picked_location"`
}

// CheckoutEligibility gates opening the checkout view.
func CheckoutEligibility(c *gin.Context) {
	err := deps.Checkout.CheckEligibility(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"eligible": true}))
}

func PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order payload", nil))
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString("userID")

	var deliveryAddr *models.Address
	var err error
	if req.AddressID != "" {
		deliveryAddr, err = deps.Addresses.GetByID(ctx, userID, req.AddressID)
	} else {
		deliveryAddr, err = deps.Resolver.Resolve(ctx, userID)
	}
	if err != nil && !errors.Is(err, address.ErrNoAddress) {
		if errors.Is(err, mongo.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Address not found", nil))
			return
		}
		logger.Get().Error("address resolution failed during checkout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to resolve address", nil))
		return
	}
	// A map pin refines the delivery coordinates but never replaces a saved
	// address; the pin must be promoted into an address before checkout.
	if deliveryAddr == nil {
		msg := "save an address or pick a location on the map"
		if req.PickedLocation != nil {
			msg = "save the picked location as a delivery address first"
		}
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No delivery address", []global.ValidationError{
			{Field: "address", Message: msg, Code: "no_address"},
		}))
		return
	}

	store := deps.Carts.Get(ctx, c.GetString("sessionID"))

	placed, err := deps.Checkout.PlaceOrder(ctx, order.CheckoutInput{
		UserID:         userID,
		Cart:           store,
		Address:        deliveryAddr,
		PaymentMethod:  req.PaymentMethod,
		Tip:            req.Tip,
		DiscountAmount: req.DiscountAmount,
		AppliedPromo:   req.AppliedPromo,
		PickedLocation: req.PickedLocation,
	})
	RecordOrderOperation("place", err == nil)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(placed))
}

func ListOrders(c *gin.Context) {
	orders, err := deps.Orders.ListByUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		logger.Get().Error("failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to list orders", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func GetOrder(c *gin.Context) {
	o, err := deps.Orders.GetByID(c.Request.Context(), c.GetString("userID"), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, mongo.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		logger.Get().Error("failed to get order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get order", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(o))
}

// TrackOrder streams status changes for one order as server-sent events until
// the order reaches a terminal state or the client goes away.
func TrackOrder(c *gin.Context) {
	userID := c.GetString("userID")
	orderID := c.Param("orderId")

	current, err := deps.Orders.GetByID(c.Request.Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, mongo.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to track order", nil))
		return
	}

	updates, err := deps.Orders.WatchOrder(c.Request.Context(), orderID)
	if err != nil {
		logger.Get().Error("failed to open order watch", zap.String("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to track order", nil))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.SSEvent("status", current)
	c.Writer.Flush()
	if current.Status.Terminal() {
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case updated, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("status", updated)
			return !updated.Status.Terminal()
		case <-time.After(30 * time.Second):
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		}
	})
}

func UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("status is required", []global.ValidationError{
			{Field: "status", Message: "status is required", Code: "required"},
		}))
		return
	}

	err := deps.Checkout.Transition(c.Request.Context(), c.GetString("userID"), c.Param("orderId"), req.Status)
	RecordOrderOperation("transition", err == nil)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": req.Status}))
}

func CancelOrder(c *gin.Context) {
	err := deps.Checkout.Transition(c.Request.Context(), c.GetString("userID"), c.Param("orderId"), models.StatusCancelled)
	RecordOrderOperation("cancel", err == nil)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": models.StatusCancelled}))
}

// writeCheckoutError maps the checkout error taxonomy onto HTTP responses.
func writeCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Sign in to continue", nil))
	case errors.Is(err, order.ErrAccountBlocked):
		c.JSON(http.StatusForbidden, global.ErrorResponse("This account cannot place orders", nil))
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Cart is empty", nil))
	case errors.Is(err, address.ErrNoAddress):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No delivery address", nil))
	case errors.Is(err, address.ErrPhoneRequired), errors.Is(err, address.ErrInvalidPhone):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("A 10-digit phone number is required", []global.ValidationError{
			{Field: "phone", Message: "add a phone number to the delivery address", Code: "phone_required"},
		}))
	case errors.Is(err, pricing.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order amounts", nil))
	case errors.Is(err, order.ErrBadTransition):
		c.JSON(http.StatusConflict, global.ErrorResponse("Order cannot move to that status", nil))
	case errors.Is(err, mongo.ErrOrderNotFound), errors.Is(err, order.ErrNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
	case errors.Is(err, order.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, global.ErrorResponse("Not permitted", nil))
	case errors.Is(err, order.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, global.ErrorResponse("Service temporarily unavailable, please retry", nil))
	case errors.Is(err, order.ErrNetwork):
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Could not reach the order service, your cart is preserved", nil))
	default:
		logger.Get().Error("unclassified checkout error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Checkout failed", nil))
	}
}
