package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"freshcart.app/storefront/pkg/models"
	cache "freshcart.app/storefront/pkg/redis"
)

func testProduct(name string, price int64) *models.Product {
	return &models.Product{
		ID:       bson.NewObjectID(),
		Name:     name,
		Price:    price,
		Category: models.CategoryGrocery,
		InStock:  true,
	}
}

func testSnapshotter(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	c := cache.NewCache(client)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	store := NewStore("session-1", nil)
	p := testProduct("Basmati Rice 1kg", 120)

	store.AddItem(p)
	store.AddItem(p)

	line, ok := store.Find(p.ID.Hex())
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 2, store.TotalItems())
	assert.Equal(t, int64(240), store.TotalPrice())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	store := NewStore("session-1", nil)
	p := testProduct("Milk 500ml", 100)

	store.AddItem(p)
	store.UpdateQuantity(p.ID.Hex(), 0)

	_, ok := store.Find(p.ID.Hex())
	assert.False(t, ok)
	assert.True(t, store.IsEmpty())
	assert.Equal(t, int64(0), store.TotalPrice())
}

func TestUpdateQuantityUnknownProductIsNoOp(t *testing.T) {
	store := NewStore("session-1", nil)
	p := testProduct("Bananas", 45)
	store.AddItem(p)

	store.UpdateQuantity("missing", 7)

	assert.Equal(t, 1, store.TotalItems())
}

func TestRemoveItemAndClear(t *testing.T) {
	store := NewStore("session-1", nil)
	a := testProduct("Apples", 180)
	b := testProduct("Curd 400g", 60)

	store.AddItem(a)
	store.AddItem(b)
	store.RemoveItem(a.ID.Hex())

	require.Equal(t, 1, len(store.Lines()))
	assert.Equal(t, b.ID.Hex(), store.Lines()[0].ProductID)

	store.Clear()
	assert.True(t, store.IsEmpty())
}

func TestLinesPreserveInsertionOrder(t *testing.T) {
	store := NewStore("session-1", nil)
	a := testProduct("Bread", 35)
	b := testProduct("Eggs 6pk", 48)
	c := testProduct("Butter", 56)

	store.AddItem(a)
	store.AddItem(b)
	store.AddItem(c)
	store.AddItem(b) // bump must not reorder

	lines := store.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, a.ID.Hex(), lines[0].ProductID)
	assert.Equal(t, b.ID.Hex(), lines[1].ProductID)
	assert.Equal(t, c.ID.Hex(), lines[2].ProductID)
}

func TestSnapshotSurvivesRestore(t *testing.T) {
	snap := testSnapshotter(t)
	ctx := context.Background()

	store := NewStore("session-42", snap)
	p1 := testProduct("Tomatoes 1kg", 40)
	p2 := testProduct("Paneer 200g", 90)
	store.AddItem(p1)
	store.AddItem(p2)
	store.UpdateQuantity(p2.ID.Hex(), 3)

	restored := Restore(ctx, "session-42", snap)
	assert.Equal(t, 4, restored.TotalItems())
	assert.Equal(t, int64(40+3*90), restored.TotalPrice())

	line, ok := restored.Find(p2.ID.Hex())
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
}

func TestClearRemovesSnapshot(t *testing.T) {
	snap := testSnapshotter(t)
	ctx := context.Background()

	store := NewStore("session-9", snap)
	store.AddItem(testProduct("Chips", 20))
	store.Clear()

	snapshot, err := snap.LoadCart(ctx, "session-9")
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestSessionsRestoreOnFirstAccess(t *testing.T) {
	snap := testSnapshotter(t)
	ctx := context.Background()

	seed := NewStore("guest-7", snap)
	seed.AddItem(testProduct("Juice 1L", 110))

	sessions := NewSessions(snap)
	store := sessions.Get(ctx, "guest-7")
	assert.Equal(t, 1, store.TotalItems())

	// same store instance on subsequent access
	again := sessions.Get(ctx, "guest-7")
	assert.Same(t, store, again)
}
