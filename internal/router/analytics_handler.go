package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/ai"
	"freshcart.app/storefront/pkg/global"
	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/mongo"
)

func GetSalesAnalytics(c *gin.Context) {
	result, err := mongo.GetSalesAnalytics(
		c.Request.Context(),
		c.Query("start_date"),
		c.Query("end_date"),
		c.DefaultQuery("group_by", "day"),
	)
	if err != nil {
		logger.Get().Error("sales analytics failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to compute sales analytics", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(result))
}

func GetBasketSegments(c *gin.Context) {
	result, err := mongo.GetBasketValueSegments(c.Request.Context())
	if err != nil {
		logger.Get().Error("basket segmentation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to compute basket segments", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(result))
}

func GenerateAISalesReport(c *gin.Context) {
	report, err := ai.GenerateSalesReport(
		c.Request.Context(),
		c.Query("start_date"),
		c.Query("end_date"),
		c.DefaultQuery("group_by", "day"),
	)
	if err != nil {
		logger.Get().Error("sales report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to generate report", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(report))
}

func GenerateAIBasketInsights(c *gin.Context) {
	report, err := ai.GenerateBasketInsights(c.Request.Context())
	if err != nil {
		logger.Get().Error("basket insights report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to generate report", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(report))
}
