package order

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"freshcart.app/storefront/pkg/address"
	"freshcart.app/storefront/pkg/cart"
	"freshcart.app/storefront/pkg/geo"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/pricing"
	"freshcart.app/storefront/pkg/retry"
)

type fakeOrderStore struct {
	mu          sync.Mutex
	orders      map[string]*models.Order
	createErr   error
	createCalls int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderStore) Create(ctx context.Context, o *models.Order) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	stored := *o
	stored.ID = bson.NewObjectID()
	f.orders[stored.ID.Hex()] = &stored
	return stored.ID.Hex(), nil
}

func (f *fakeOrderStore) AttachOrderID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	o.OrderID = id
	return nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	// mirrors the persisted store: terminal orders are never overwritten
	if !o.Status.Terminal() {
		o.Status = status
	}
	return nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, userID, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderStore) get(id string) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id]
}

type fakeBanCheck struct {
	banned bool
}

func (f *fakeBanCheck) IsBanned(ctx context.Context, userID string) (bool, error) {
	return f.banned, nil
}

type fakeLocator struct {
	coords geo.Coordinates
	err    error
}

func (f *fakeLocator) CurrentPosition(ctx context.Context) (geo.Coordinates, error) {
	return f.coords, f.err
}

type fakeEvents struct {
	mu        sync.Mutex
	placed    []string
	scheduled []time.Duration
}

func (f *fakeEvents) OrderPlaced(o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, o.OrderID)
	return nil
}

func (f *fakeEvents) OrderStatusChanged(orderID string, status models.OrderStatus) error {
	return nil
}

func (f *fakeEvents) ScheduleDeliveryCheck(orderID string, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, delay)
	return nil
}

var bangalore = geo.Coordinates{Latitude: 12.9716, Longitude: 77.5946}

func newTestService(store Store, ban BanChecker, locator geo.Locator, events Events) *Service {
	svc := NewService(store, ban, pricing.NewCalculator(pricing.StandardConfig()), locator, events, bangalore)
	svc.SetRetryConfig(retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond})
	return svc
}

func checkoutAddress() *models.Address {
	return &models.Address{
		ID:        bson.NewObjectID(),
		Type:      models.AddressHome,
		Name:      "Asha Rao",
		Line:      "221B MG Road",
		Phone:     "9876543210",
		IsDefault: true,
	}
}

func seededCart() *cart.Store {
	c := cart.NewStore("session-1", nil)
	p1 := &models.Product{ID: bson.NewObjectID(), Name: "Dosa Batter 1kg", Price: 250, Category: models.CategoryGrocery}
	p2 := &models.Product{ID: bson.NewObjectID(), Name: "Lime Soda", Price: 40, Category: models.CategoryDrinks}
	c.AddItem(p1)
	c.AddItem(p2)
	c.AddItem(p2)
	return c
}

func TestPlaceOrderHappyPath(t *testing.T) {
	store := newFakeOrderStore()
	events := &fakeEvents{}
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, events)
	c := seededCart()

	o, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        bson.NewObjectID().Hex(),
		Cart:          c,
		Address:       checkoutAddress(),
		PaymentMethod: "upi",
		Tip:           20,
	})
	require.NoError(t, err)

	// subtotal 330 > 299 so free delivery; gst 17; tip 20 -> 367
	assert.Equal(t, int64(330), o.Subtotal)
	assert.Equal(t, int64(0), o.DeliveryCharge)
	assert.Equal(t, int64(17), o.GSTAmount)
	assert.Equal(t, int64(367), o.TotalPrice)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.NotEmpty(t, o.OrderID)

	assert.True(t, c.IsEmpty(), "cart cleared after successful placement")

	stored := store.get(o.OrderID)
	require.NotNil(t, stored)
	assert.Equal(t, o.OrderID, stored.OrderID, "generated id patched back onto the document")

	assert.GreaterOrEqual(t, o.EstimatedMinutes, 30)
	assert.LessOrEqual(t, o.EstimatedMinutes, 40)

	require.Len(t, events.placed, 1)
	require.Len(t, events.scheduled, 1)
}

func TestPlacedOrderTotalsAreFrozen(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)
	c := seededCart()

	o, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        bson.NewObjectID().Hex(),
		Cart:          c,
		Address:       checkoutAddress(),
		PaymentMethod: "cod",
		Tip:           20,
	})
	require.NoError(t, err)

	// mutate the live cart afterward; the persisted order must not move
	c.AddItem(&models.Product{ID: bson.NewObjectID(), Name: "Ice Cream Tub", Price: 999})
	c.Clear()

	stored := store.get(o.OrderID)
	assert.Equal(t, int64(367), stored.TotalPrice)
	assert.Equal(t, int64(330), stored.Subtotal)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)

	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:  bson.NewObjectID().Hex(),
		Cart:    cart.NewStore("empty", nil),
		Address: checkoutAddress(),
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, store.createCalls)
}

func TestPlaceOrderPhoneGate(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)

	addr := checkoutAddress()
	addr.Phone = ""

	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:  bson.NewObjectID().Hex(),
		Cart:    seededCart(),
		Address: addr,
	})
	assert.ErrorIs(t, err, address.ErrPhoneRequired)
	assert.Zero(t, store.createCalls, "order create must not be reached without a phone")
}

func TestPlaceOrderPinWithoutAddress(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)
	picked := geo.Coordinates{Latitude: 13.0827, Longitude: 80.2707}

	// a map pin alone never satisfies the address requirement
	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:         bson.NewObjectID().Hex(),
		Cart:           seededCart(),
		PickedLocation: &picked,
	})
	assert.ErrorIs(t, err, address.ErrNoAddress)
	assert.Zero(t, store.createCalls)
}

func TestPlaceOrderBlockedAccount(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{banned: true}, &fakeLocator{coords: bangalore}, nil)

	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:  bson.NewObjectID().Hex(),
		Cart:    seededCart(),
		Address: checkoutAddress(),
	})
	assert.ErrorIs(t, err, ErrAccountBlocked)
	assert.Zero(t, store.createCalls)
}

func TestPlaceOrderUnauthenticated(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)

	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		Cart:    seededCart(),
		Address: checkoutAddress(),
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestPlaceOrderPersistenceFailureKeepsCart(t *testing.T) {
	store := newFakeOrderStore()
	store.createErr = errors.New("write refused")
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)
	c := seededCart()

	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:  bson.NewObjectID().Hex(),
		Cart:    c,
		Address: checkoutAddress(),
		Tip:     20,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)

	assert.Equal(t, 3, store.createCalls, "bounded retry wraps the insert")
	assert.False(t, c.IsEmpty(), "failed placement leaves the cart untouched")
}

func TestPlaceOrderFallsBackToApproximateCoordinates(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{err: errors.New("denied")}, nil)

	o, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:  bson.NewObjectID().Hex(),
		Cart:    seededCart(),
		Address: checkoutAddress(),
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, math.Abs(o.Delivery.Latitude-bangalore.Latitude), 0.005)
	assert.LessOrEqual(t, math.Abs(o.Delivery.Longitude-bangalore.Longitude), 0.005)
}

func TestPlaceOrderPrefersPickedLocation(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)
	picked := geo.Coordinates{Latitude: 13.0827, Longitude: 80.2707}

	o, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:         bson.NewObjectID().Hex(),
		Cart:           seededCart(),
		Address:        checkoutAddress(),
		PickedLocation: &picked,
	})
	require.NoError(t, err)
	assert.Equal(t, picked.Latitude, o.Delivery.Latitude)
	assert.Equal(t, picked.Longitude, o.Delivery.Longitude)
}

func TestEstimateDeliveryMinutesRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		m := estimateDeliveryMinutes()
		require.GreaterOrEqual(t, m, 30)
		require.LessOrEqual(t, m, 40)
	}
}

func TestTransitionRules(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &fakeBanCheck{}, &fakeLocator{coords: bangalore}, nil)
	userID := bson.NewObjectID().Hex()

	o, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:  userID,
		Cart:    seededCart(),
		Address: checkoutAddress(),
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Transition(ctx, userID, o.OrderID, models.StatusConfirmed))
	assert.Equal(t, models.StatusConfirmed, store.get(o.OrderID).Status)

	// skipping ahead is rejected
	assert.ErrorIs(t, svc.Transition(ctx, userID, o.OrderID, models.StatusDelivered), ErrBadTransition)

	// re-applying the current status is a no-op, not an error
	assert.NoError(t, svc.Transition(ctx, userID, o.OrderID, models.StatusConfirmed))

	// cancelled is reachable from any non-terminal state
	require.NoError(t, svc.Transition(ctx, userID, o.OrderID, models.StatusCancelled))
	assert.ErrorIs(t, svc.Transition(ctx, userID, o.OrderID, models.StatusPreparing), ErrBadTransition)
}

func TestClassifyStoreError(t *testing.T) {
	permErr := mongo.CommandError{Code: 13, Message: "not authorized"}
	assert.ErrorIs(t, classifyStoreError(permErr), ErrPermissionDenied)

	assert.ErrorIs(t, classifyStoreError(context.DeadlineExceeded), ErrUnavailable)

	assert.ErrorIs(t, classifyStoreError(errors.New("connection reset")), ErrNetwork)

	assert.NoError(t, classifyStoreError(nil))
}
