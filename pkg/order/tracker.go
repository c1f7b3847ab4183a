package order

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
)

// DeliveryTracker counts down to an order's estimated delivery time on a
// one-second tick and issues the delivered update when it elapses. The update
// is idempotent server-side, so racing trackers on other clients are
// harmless. Stop must be called when the owning view is torn down.
type DeliveryTracker struct {
	store    Store
	orderID  string
	eta      time.Time
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewDeliveryTracker(store Store, orderID string, eta time.Time) *DeliveryTracker {
	return &DeliveryTracker{
		store:    store,
		orderID:  orderID,
		eta:      eta,
		interval: time.Second,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the countdown. It returns immediately.
func (t *DeliveryTracker) Start() {
	go t.run()
}

func (t *DeliveryTracker) run() {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if time.Now().Before(t.eta) {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := t.store.UpdateStatus(ctx, t.orderID, models.StatusDelivered)
			cancel()
			if err != nil {
				logger.Get().Warn("failed to mark order delivered",
					zap.String("order_id", t.orderID), zap.Error(err))
			}
			return
		}
	}
}

// Stop cancels the countdown. Safe to call more than once.
func (t *DeliveryTracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done is closed once the tracker has finished, either by firing or by Stop.
func (t *DeliveryTracker) Done() <-chan struct{} {
	return t.done
}
