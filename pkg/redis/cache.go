package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"freshcart.app/storefront/pkg/models"
)

// Cart snapshots outlive browser sessions so a reload reconstructs the cart.
const (
	cartTTL            = 30 * 24 * time.Hour
	productTTL         = 24 * time.Hour
	selectedAddressTTL = 90 * 24 * time.Hour
)

// Cache wraps the Redis client used for cart snapshots, the product
// cache-aside layer, and the remembered checkout address.
type Cache struct {
	client *redisclient.Client
}

func NewCache(client *redisclient.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// SaveCart stores the cart snapshot as JSON under the cart namespace.
func (c *Cache) SaveCart(ctx context.Context, snapshot *models.CartSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal cart %s: %w", snapshot.SessionID, err)
	}
	key := fmt.Sprintf("cart:%s", snapshot.SessionID)
	if err := c.client.Set(ctx, key, payload, cartTTL).Err(); err != nil {
		return fmt.Errorf("failed to store cart %s: %w", snapshot.SessionID, err)
	}
	return nil
}

// LoadCart returns the persisted snapshot, or (nil, nil) when none exists.
func (c *Cache) LoadCart(ctx context.Context, sessionID string) (*models.CartSnapshot, error) {
	key := fmt.Sprintf("cart:%s", sessionID)
	payload, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redisclient.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot models.CartSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart %s: %w", sessionID, err)
	}
	return &snapshot, nil
}

func (c *Cache) DeleteCart(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, fmt.Sprintf("cart:%s", sessionID)).Err()
}

// CacheProduct stores a single product and registers it on its category list.
func (c *Cache) CacheProduct(ctx context.Context, product *models.Product) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID.Hex(), err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf("product:%s", product.ID.Hex()), payload, productTTL)
	categoryKey := fmt.Sprintf("category:%s", product.Category)
	pipe.LPush(ctx, categoryKey, product.ID.Hex())
	pipe.LTrim(ctx, categoryKey, 0, 199)
	pipe.Expire(ctx, categoryKey, productTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache product %s: %w", product.ID.Hex(), err)
	}
	return nil
}

// GetProduct returns the cached product or redis.Nil when absent.
func (c *Cache) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	payload, err := c.client.Get(ctx, fmt.Sprintf("product:%s", productID)).Result()
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := json.Unmarshal([]byte(payload), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product %s: %w", productID, err)
	}
	return &product, nil
}

// RememberSelectedAddress records the address a user last chose at checkout.
func (c *Cache) RememberSelectedAddress(ctx context.Context, userID, addressID string) error {
	key := fmt.Sprintf("checkout:selected_address:%s", userID)
	return c.client.Set(ctx, key, addressID, selectedAddressTTL).Err()
}

// RememberedSelectedAddress returns the remembered address id, or "" when the
// user never picked one.
func (c *Cache) RememberedSelectedAddress(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf("checkout:selected_address:%s", userID)
	addressID, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redisclient.Nil) {
		return "", nil
	}
	return addressID, err
}
