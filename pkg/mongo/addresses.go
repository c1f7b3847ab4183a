package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"freshcart.app/storefront/pkg/models"
)

var ErrAddressNotFound = errors.New("mongo: address not found")

// AddressStore persists a user's saved addresses in the "addresses"
// collection. It implements the checkout resolver's repository port.
type AddressStore struct {
	col *mongo.Collection
}

func NewAddressStore() *AddressStore {
	return &AddressStore{col: GetCollection("addresses")}
}

func (s *AddressStore) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.col.Find(ctx, bson.D{{Key: "user_id", Value: uid}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var addresses []models.Address
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AddressStore) GetByID(ctx context.Context, userID, addressID string) (*models.Address, error) {
	filter, err := ownedFilter(userID, addressID)
	if err != nil {
		return nil, err
	}

	var addr models.Address
	err = s.col.FindOne(ctx, filter).Decode(&addr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// ClearDefaults unsets is_default across the user's whole address set. Paired
// with Insert or MarkDefault it forms the non-atomic default swap; the brief
// window with no default is tolerated by the resolver's fallback chain.
func (s *AddressStore) ClearDefaults(ctx context.Context, userID string) error {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	_, err = s.col.UpdateMany(ctx,
		bson.D{{Key: "user_id", Value: uid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_default", Value: false},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}

func (s *AddressStore) Insert(ctx context.Context, userID string, addr *models.Address) (*models.Address, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	addr.UserID = uid
	addr.SetTimestamps()

	res, err := s.col.InsertOne(ctx, addr)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		addr.ID = id
	}
	return addr, nil
}

func (s *AddressStore) MarkDefault(ctx context.Context, userID, addressID string) error {
	return s.setFields(ctx, userID, addressID, bson.D{{Key: "is_default", Value: true}})
}

func (s *AddressStore) UpdatePhone(ctx context.Context, userID, addressID, phone string) error {
	return s.setFields(ctx, userID, addressID, bson.D{{Key: "phone", Value: phone}})
}

func (s *AddressStore) Delete(ctx context.Context, userID, addressID string) error {
	filter, err := ownedFilter(userID, addressID)
	if err != nil {
		return err
	}
	res, err := s.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (s *AddressStore) setFields(ctx context.Context, userID, addressID string, fields bson.D) error {
	filter, err := ownedFilter(userID, addressID)
	if err != nil {
		return err
	}
	fields = append(fields, bson.E{Key: "updated_at", Value: time.Now()})

	res, err := s.col.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func ownedFilter(userID, docID string) (bson.D, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	oid, err := bson.ObjectIDFromHex(docID)
	if err != nil {
		return nil, err
	}
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "user_id", Value: uid},
	}, nil
}
