package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"freshcart.app/storefront/internal/consumers"
	"freshcart.app/storefront/internal/router"
	"freshcart.app/storefront/pkg/address"
	"freshcart.app/storefront/pkg/ai"
	"freshcart.app/storefront/pkg/cart"
	"freshcart.app/storefront/pkg/geo"
	"freshcart.app/storefront/pkg/global"
	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/mongo"
	"freshcart.app/storefront/pkg/order"
	"freshcart.app/storefront/pkg/pricing"
	"freshcart.app/storefront/pkg/rabbitmq"
	"freshcart.app/storefront/pkg/redis"
)

// Fallback store coordinates used when neither a map pin nor device
// geolocation is available (Bengaluru).
var referenceLocation = geo.Coordinates{Latitude: 12.9716, Longitude: 77.5946}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	env := global.GetEnvOrDefault("ENV", "development")
	if err := logger.Init(env, global.GetEnvOrDefault("LOG_LEVEL", "info")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	mongo.InitMongoDB()
	mongo.EnsureIndexesOnStartup()
	ai.InitializeAIService()

	cache := redis.NewCache(redis.RedisClient())
	carts := cart.NewSessions(cache)

	products := mongo.NewProductStore()
	addresses := mongo.NewAddressStore()
	users := mongo.NewUserStore()
	orders := mongo.NewOrderStore()

	selection := address.NewSessionSelection()
	resolver := address.NewResolver(addresses, cache, selection)

	var events order.Events
	broker, err := rabbitmq.NewRabbitMQ()
	if err != nil {
		logger.Get().Warn("rabbitmq unavailable, order events disabled", zap.Error(err))
	} else {
		defer broker.Close()
		if err := broker.SetupQueues(); err != nil {
			log.Fatalf("Failed to set up queues: %v", err)
		}
		if err := consumers.StartDeliveryCheckConsumer(broker.Channel, orders); err != nil {
			log.Fatalf("Failed to start delivery check consumer: %v", err)
		}
		events = broker
	}

	checkout := order.NewService(
		orders,
		users,
		pricing.NewCalculator(pricing.StandardConfig()),
		nil, // no device geolocation server-side, checkout relies on the map pin
		events,
		referenceLocation,
	)

	router.Init(router.Dependencies{
		Products:  products,
		Addresses: addresses,
		Users:     users,
		Orders:    orders,
		Cache:     cache,
		Carts:     carts,
		Resolver:  resolver,
		Selection: selection,
		Checkout:  checkout,
		Geocoder:  geo.NewHTTPReverseGeocoder(global.GetEnvOrDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")),
	})
	router.InitEngine()
	router.InitializeRoutes()

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("Server is running on port %s", port)

	if err := router.Router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
