package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Category is one of the fixed storefront catalog sections.
type Category string

const (
	CategoryGrocery   Category = "grocery"
	CategoryFruits    Category = "fruits"
	CategoryVeggies   Category = "vegetables"
	CategoryDairy     Category = "dairy"
	CategorySnacks    Category = "snacks"
	CategoryDrinks    Category = "drinks"
	CategoryHousehold Category = "household"
)

// Categories lists every valid catalog category.
var Categories = []Category{
	CategoryGrocery, CategoryFruits, CategoryVeggies,
	CategoryDairy, CategorySnacks, CategoryDrinks, CategoryHousehold,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a catalog item. Prices are whole rupees; the cart and
// order flow treat products as immutable, catalog-owned records.
type Product struct {
	ID              bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string        `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Price           int64         `json:"price" bson:"price" validate:"required,gt=0"`
	Category        Category      `json:"category" bson:"category" validate:"required"`
	Subcategory     string        `json:"subcategory" bson:"subcategory" validate:"max=100"`
	Rating          float64       `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	InStock         bool          `json:"in_stock" bson:"in_stock"`
	DeliveryMinutes int           `json:"delivery_minutes" bson:"delivery_minutes"`
	OfferTags       []string      `json:"offer_tags,omitempty" bson:"offer_tags,omitempty"`
	ImageURL        string        `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

type CreateProductRequest struct {
	Name            string   `json:"name" binding:"required,min=2,max=200"`
	Price           int64    `json:"price" binding:"required,gt=0"`
	Category        Category `json:"category" binding:"required"`
	Subcategory     string   `json:"subcategory"`
	Rating          float64  `json:"rating" binding:"gte=0,lte=5"`
	InStock         bool     `json:"in_stock"`
	DeliveryMinutes int      `json:"delivery_minutes"`
	OfferTags       []string `json:"offer_tags"`
	ImageURL        string   `json:"image_url"`
}

func (req *CreateProductRequest) ToProduct() *Product {
	product := &Product{
		ID:              bson.NewObjectID(),
		Name:            req.Name,
		Price:           req.Price,
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Rating:          req.Rating,
		InStock:         req.InStock,
		DeliveryMinutes: req.DeliveryMinutes,
		OfferTags:       req.OfferTags,
		ImageURL:        req.ImageURL,
	}
	product.SetTimestamps()
	return product
}
