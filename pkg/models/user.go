package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a storefront account. AccountStatus gates checkout: suspended or
// banned users cannot place orders.
type User struct {
	ID            bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Email         string        `json:"email" bson:"email" validate:"required,email"`
	Password      string        `json:"-" bson:"password" validate:"required,min=6"`
	FullName      string        `json:"full_name" bson:"full_name" validate:"required,min=2,max=100"`
	Phone         string        `json:"phone,omitempty" bson:"phone,omitempty"`
	AccountStatus string        `json:"account_status" bson:"account_status" validate:"required,oneof=active suspended banned"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

func (u *User) SetTimestamps() {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// IsBanned reports whether the account is blocked from checkout.
func (u *User) IsBanned() bool {
	return u.AccountStatus == "suspended" || u.AccountStatus == "banned"
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
