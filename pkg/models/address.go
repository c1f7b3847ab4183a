package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AddressType labels a saved delivery address.
type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

func (t AddressType) Valid() bool {
	return t == AddressHome || t == AddressWork || t == AddressOther
}

// Address is a persisted delivery target owned by a user. At most one address
// per user carries IsDefault; setting a new default clears the previous one.
type Address struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"user_id" bson:"user_id"`
	Type      AddressType   `json:"type" bson:"type" validate:"required,oneof=home work other"`
	Name      string        `json:"name" bson:"name" validate:"required"`
	Line      string        `json:"line" bson:"line" validate:"required"`
	City      string        `json:"city" bson:"city"`
	State     string        `json:"state" bson:"state"`
	Pincode   string        `json:"pincode" bson:"pincode"`
	Phone     string        `json:"phone,omitempty" bson:"phone,omitempty"`
	Email     string        `json:"email,omitempty" bson:"email,omitempty"`
	Landmark  string        `json:"landmark,omitempty" bson:"landmark,omitempty"`
	Latitude  float64       `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude float64       `json:"longitude,omitempty" bson:"longitude,omitempty"`
	IsDefault bool          `json:"is_default" bson:"is_default"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

func (a *Address) SetTimestamps() {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}

// HasPhone reports whether the address carries a usable phone number.
func (a *Address) HasPhone() bool {
	return strings.TrimSpace(a.Phone) != ""
}

// SelectedLocation is an ad hoc map-picked coordinate plus its reverse-geocoded
// text. It is transient until promoted into a persisted default Address at
// order placement.
type SelectedLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	// Fields the user must supply before the location can become an Address.
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Landmark string `json:"landmark,omitempty"`
}

// NormalizePhone strips raw phone input down to ASCII digits. Non-ASCII
// digit runes are dropped, not transliterated, so the stored phone is always
// plain 0-9.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether raw input normalizes to exactly 10 digits.
func ValidPhone(raw string) bool {
	return len(NormalizePhone(raw)) == 10
}
