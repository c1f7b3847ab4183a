package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"freshcart.app/storefront/pkg/models"
)

var (
	ErrUserNotFound = errors.New("mongo: user not found")
	ErrEmailTaken   = errors.New("mongo: email already registered")
)

// UserStore persists accounts in the "users" collection. It also implements
// the checkout eligibility port.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore() *UserStore {
	return &UserStore{col: GetCollection("users")}
}

// Create inserts a new account. The unique email index turns duplicate
// registrations into ErrEmailTaken.
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	u.SetTimestamps()
	res, err := s.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		u.ID = id
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	var u models.User
	err = s.col.FindOne(ctx, bson.D{{Key: "_id", Value: uid}}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsBanned reports whether the account is blocked from placing orders.
func (s *UserStore) IsBanned(ctx context.Context, userID string) (bool, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.IsBanned(), nil
}
