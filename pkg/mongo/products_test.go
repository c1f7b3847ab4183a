package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"freshcart.app/storefront/pkg/models"
)

func TestSearchFilterQueryOnly(t *testing.T) {
	filter := searchFilter("dosa batter", "", "")

	require.Len(t, filter, 1)
	assert.Equal(t, "$text", filter[0].Key)
	assert.Equal(t, bson.D{{Key: "$search", Value: "dosa batter"}}, filter[0].Value)
}

func TestSearchFilterWithCategoryAndSubcategory(t *testing.T) {
	filter := searchFilter("milk", models.CategoryDairy, "yogurt")

	require.Len(t, filter, 3)
	assert.Equal(t, "$text", filter[0].Key)
	assert.Equal(t, bson.E{Key: "category", Value: models.CategoryDairy}, filter[1])
	assert.Equal(t, bson.E{Key: "subcategory", Value: "yogurt"}, filter[2])
}

func TestSearchFilterCategoryOnly(t *testing.T) {
	filter := searchFilter("chips", models.CategorySnacks, "")

	require.Len(t, filter, 2)
	assert.Equal(t, bson.E{Key: "category", Value: models.CategorySnacks}, filter[1])
}
