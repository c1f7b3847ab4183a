package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"freshcart.app/storefront/pkg/models"
)

var ErrProductNotFound = errors.New("mongo: product not found")

// ProductStore reads and writes the catalog in the "products" collection.
type ProductStore struct {
	col *mongo.Collection
}

func NewProductStore() *ProductStore {
	return &ProductStore{col: GetCollection("products")}
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.SetTimestamps()
	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		p.ID = id
	}
	return p, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = s.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCategory returns in-stock products for one catalog section, best
// rated first.
func (s *ProductStore) ListByCategory(ctx context.Context, category models.Category, limit int64) ([]models.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.D{
		{Key: "category", Value: category},
		{Key: "in_stock", Value: true},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func searchFilter(query string, category models.Category, subcategory string) bson.D {
	filter := bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: query}}}}
	if category != "" {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}
	if subcategory != "" {
		filter = append(filter, bson.E{Key: "subcategory", Value: subcategory})
	}
	return filter
}

// Search runs a full-text query against the product text index, ranked by
// text score. Category and subcategory narrow the result set when non-empty.
func (s *ProductStore) Search(ctx context.Context, query string, category models.Category, subcategory string, limit int64) ([]models.Product, error) {
	filter := searchFilter(query, category, subcategory)
	opts := options.Find().
		SetProjection(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}).
		SetSort(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
