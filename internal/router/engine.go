// Package router wires the HTTP surface of the storefront.
package router

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"freshcart.app/storefront/pkg/address"
	"freshcart.app/storefront/pkg/cart"
	"freshcart.app/storefront/pkg/geo"
	"freshcart.app/storefront/pkg/mongo"
	"freshcart.app/storefront/pkg/order"
	"freshcart.app/storefront/pkg/redis"
)

var Router *gin.Engine

// Dependencies holds everything the handlers need. Init must run before
// InitializeRoutes.
type Dependencies struct {
	Products  *mongo.ProductStore
	Addresses *mongo.AddressStore
	Users     *mongo.UserStore
	Orders    *mongo.OrderStore
	Cache     *redis.Cache
	Carts     *cart.Sessions
	Resolver  *address.Resolver
	Selection *address.SessionSelection
	Checkout  *order.Service
	Geocoder  geo.ReverseGeocoder
}

var deps Dependencies

func Init(d Dependencies) {
	deps = d
}

func InitEngine() {
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	Router = gin.Default()

	Router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "https://freshcart.app"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	Router.Use(PrometheusMiddleware())
}

func InitializeRoutes() {
	Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := Router.Group("/api")
	{
		api.GET("/health", HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", Register)
			auth.POST("/login", Login)
		}

		products := api.Group("/products")
		{
			products.GET("/search", SearchProducts)
			products.GET("/category/:category", GetProductsByCategory)
			products.GET("/:id", GetProductByID)
			products.POST("/", CreateProduct)
		}

		cartRoutes := api.Group("/cart")
		cartRoutes.Use(SessionMiddleware())
		{
			cartRoutes.GET("/", GetCart)
			cartRoutes.GET("/summary", GetCartSummary)
			cartRoutes.POST("/items", AddToCart)
			cartRoutes.PUT("/items/:productId", UpdateCartItem)
			cartRoutes.DELETE("/items/:productId", RemoveFromCart)
			cartRoutes.DELETE("/clear", ClearCart)
		}

		addresses := api.Group("/addresses")
		addresses.Use(AuthMiddleware())
		{
			addresses.GET("/", ListAddresses)
			addresses.GET("/resolved", GetResolvedAddress)
			addresses.POST("/select/:addressId", SelectAddress)
			addresses.POST("/promote", PromoteLocation)
			addresses.PUT("/:addressId/default", SetDefaultAddress)
			addresses.PUT("/:addressId/phone", AddAddressPhone)
			addresses.DELETE("/:addressId", DeleteAddress)
		}

		orders := api.Group("/orders")
		orders.Use(AuthMiddleware(), SessionMiddleware())
		{
			orders.GET("/eligibility", CheckoutEligibility)
			orders.POST("/", PlaceOrder)
			orders.GET("/", ListOrders)
			orders.GET("/:orderId", GetOrder)
			orders.GET("/:orderId/track", TrackOrder)
			orders.PUT("/:orderId/status", UpdateOrderStatus)
			orders.DELETE("/:orderId", CancelOrder)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/sales", GetSalesAnalytics)
			analytics.GET("/baskets", GetBasketSegments)

			aiAnalytics := analytics.Group("/ai")
			{
				aiAnalytics.GET("/sales-report", GenerateAISalesReport)
				aiAnalytics.GET("/basket-insights", GenerateAIBasketInsights)
			}
		}
	}
}
