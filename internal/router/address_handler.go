package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/address"
	"freshcart.app/storefront/pkg/geo"
	"freshcart.app/storefront/pkg/global"
	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/mongo"
)

func ListAddresses(c *gin.Context) {
	addresses, err := deps.Addresses.ListByUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		logger.Get().Error("failed to list addresses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to list addresses", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(addresses))
}

// GetResolvedAddress returns the single address checkout would use right now.
func GetResolvedAddress(c *gin.Context) {
	resolved, err := deps.Resolver.Resolve(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, address.ErrNoAddress) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("No saved address", []global.ValidationError{
				{Field: "address", Message: "pick a location on the map to continue", Code: "no_address"},
			}))
			return
		}
		logger.Get().Error("address resolution failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to resolve address", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(resolved))
}

func SelectAddress(c *gin.Context) {
	userID := c.GetString("userID")
	addressID := c.Param("addressId")

	if _, err := deps.Addresses.GetByID(c.Request.Context(), userID, addressID); err != nil {
		if errors.Is(err, mongo.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Address not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to select address", nil))
		return
	}

	deps.Resolver.Choose(c.Request.Context(), userID, addressID)
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"selected": addressID}))
}

// PromoteLocation turns a map-picked location into the user's new default
// address. Full name, a 10-digit phone and a landmark are mandatory.
func PromoteLocation(c *gin.Context) {
	var loc models.SelectedLocation
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid location payload", nil))
		return
	}

	// fill in the display address from the pin; failures degrade to the
	// generic fallback text
	if loc.Address == "" && deps.Geocoder != nil {
		text, err := deps.Geocoder.ReverseGeocode(c.Request.Context(), geo.Coordinates{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
		if err != nil {
			logger.Get().Warn("reverse geocode failed for picked location", zap.Error(err))
		}
		loc.Address = text
	}

	created, err := deps.Resolver.Promote(c.Request.Context(), c.GetString("userID"), &loc)
	if err != nil {
		if field, message := locationValidationError(err); field != "" {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Location is incomplete", []global.ValidationError{
				{Field: field, Message: message, Code: "invalid"},
			}))
			return
		}
		logger.Get().Error("failed to promote location", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to save address", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

func SetDefaultAddress(c *gin.Context) {
	err := deps.Resolver.SetDefault(c.Request.Context(), c.GetString("userID"), c.Param("addressId"))
	if err != nil {
		if errors.Is(err, mongo.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Address not found", nil))
			return
		}
		logger.Get().Error("failed to set default address", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to set default address", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"default": c.Param("addressId")}))
}

// AddAddressPhone attaches a phone number to an address, unblocking checkout.
func AddAddressPhone(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("phone is required", []global.ValidationError{
			{Field: "phone", Message: "phone is required", Code: "required"},
		}))
		return
	}

	err := deps.Resolver.AddPhone(c.Request.Context(), c.GetString("userID"), c.Param("addressId"), req.Phone)
	if err != nil {
		if errors.Is(err, address.ErrInvalidPhone) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid phone number", []global.ValidationError{
				{Field: "phone", Message: "phone must be exactly 10 digits", Code: "invalid"},
			}))
			return
		}
		if errors.Is(err, mongo.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Address not found", nil))
			return
		}
		logger.Get().Error("failed to update phone", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update phone", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"updated": true}))
}

func DeleteAddress(c *gin.Context) {
	userID := c.GetString("userID")
	addressID := c.Param("addressId")

	if err := deps.Addresses.Delete(c.Request.Context(), userID, addressID); err != nil {
		if errors.Is(err, mongo.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Address not found", nil))
			return
		}
		logger.Get().Error("failed to delete address", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete address", nil))
		return
	}

	// the deleted address can no longer be the session's selection
	if deps.Selection.Chosen(userID) == addressID {
		deps.Selection.Forget(userID)
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"deleted": addressID}))
}

func locationValidationError(err error) (field, message string) {
	switch {
	case errors.Is(err, address.ErrNameRequired):
		return "full_name", "full name is required"
	case errors.Is(err, address.ErrInvalidPhone):
		return "phone", "phone must be exactly 10 digits"
	case errors.Is(err, address.ErrLandmarkRequired):
		return "landmark", "landmark is required"
	}
	return "", ""
}
