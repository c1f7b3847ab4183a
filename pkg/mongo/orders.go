package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/order"
)

// ErrOrderNotFound wraps the checkout taxonomy's not-found category so
// callers can match either sentinel.
var ErrOrderNotFound = fmt.Errorf("mongo: %w", order.ErrNotFound)

// OrderStore persists orders in the "orders" collection.
type OrderStore struct {
	col *mongo.Collection
}

func NewOrderStore() *OrderStore {
	return &OrderStore{col: GetCollection("orders")}
}

// Create inserts the order and returns the generated document id as hex.
func (s *OrderStore) Create(ctx context.Context, o *models.Order) (string, error) {
	res, err := s.col.InsertOne(ctx, o)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", errors.New("mongo: unexpected inserted id type")
	}
	return id.Hex(), nil
}

// AttachOrderID writes the hex document id into the order_id field. The id is
// only known after the insert, so every order needs this second write.
func (s *OrderStore) AttachOrderID(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = s.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "order_id", Value: id},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}

// UpdateStatus sets the order's status. The filter excludes terminal orders,
// so a late delivered update can never resurrect a cancelled order and
// repeated updates are no-ops. A zero match on an existing order is success.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	res, err := s.col.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: oid},
			{Key: "status", Value: bson.D{{Key: "$nin", Value: bson.A{
				models.StatusDelivered, models.StatusCancelled,
			}}}},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// either terminal already (fine) or missing entirely
		count, err := s.col.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrOrderNotFound
		}
	}
	return nil
}

// GetByID fetches one order scoped to its owner.
func (s *OrderStore) GetByID(ctx context.Context, userID, id string) (*models.Order, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	var o models.Order
	err = s.col.FindOne(ctx, bson.D{
		{Key: "_id", Value: oid},
		{Key: "user_id", Value: uid},
	}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.D{{Key: "user_id", Value: uid}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// WatchOrder streams status changes for a single order until ctx is done.
// Each updated document is sent on the returned channel; the channel closes
// when the stream ends.
func (s *OrderStore) WatchOrder(ctx context.Context, id string) (<-chan models.Order, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "documentKey._id", Value: oid},
			{Key: "operationType", Value: "update"},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.col.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	updates := make(chan models.Order)
	go func() {
		defer close(updates)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument models.Order `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				continue
			}
			select {
			case updates <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates, nil
}
