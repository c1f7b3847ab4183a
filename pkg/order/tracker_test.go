package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"freshcart.app/storefront/pkg/models"
)

func trackedOrder(t *testing.T, store *fakeOrderStore, status models.OrderStatus) string {
	t.Helper()
	id, err := store.Create(context.Background(), &models.Order{
		UserID: bson.NewObjectID(),
		Status: status,
	})
	require.NoError(t, err)
	return id
}

func TestTrackerMarksDeliveredAtETA(t *testing.T) {
	store := newFakeOrderStore()
	id := trackedOrder(t, store, models.StatusOutForDelivery)

	tracker := NewDeliveryTracker(store, id, time.Now().Add(30*time.Millisecond))
	tracker.interval = 10 * time.Millisecond
	tracker.Start()

	select {
	case <-tracker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not finish")
	}

	assert.Equal(t, models.StatusDelivered, store.get(id).Status)
}

func TestTrackerDoesNotResurrectCancelledOrder(t *testing.T) {
	store := newFakeOrderStore()
	id := trackedOrder(t, store, models.StatusCancelled)

	tracker := NewDeliveryTracker(store, id, time.Now().Add(-time.Second))
	tracker.interval = 10 * time.Millisecond
	tracker.Start()

	select {
	case <-tracker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not finish")
	}

	assert.Equal(t, models.StatusCancelled, store.get(id).Status)
}

func TestTrackerStop(t *testing.T) {
	store := newFakeOrderStore()
	id := trackedOrder(t, store, models.StatusOutForDelivery)

	tracker := NewDeliveryTracker(store, id, time.Now().Add(time.Hour))
	tracker.interval = 10 * time.Millisecond
	tracker.Start()

	tracker.Stop()
	tracker.Stop() // second call must be safe

	select {
	case <-tracker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not stop")
	}

	assert.Equal(t, models.StatusOutForDelivery, store.get(id).Status)
}
