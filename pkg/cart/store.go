// Package cart maintains the in-memory cart for a session and mirrors every
// mutation into a durable snapshot cache so reloads reconstruct the cart.
package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
)

// Snapshotter is the durable cache the store writes through to. Failures are
// logged and otherwise ignored; the in-memory cart is the source of truth.
type Snapshotter interface {
	SaveCart(ctx context.Context, snapshot *models.CartSnapshot) error
	LoadCart(ctx context.Context, sessionID string) (*models.CartSnapshot, error)
	DeleteCart(ctx context.Context, sessionID string) error
}

// Store holds the cart lines for one session, keyed by product id.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	lines     map[string]*models.CartLine
	order     []string // product ids in insertion order
	snap      Snapshotter
}

func NewStore(sessionID string, snap Snapshotter) *Store {
	return &Store{
		sessionID: sessionID,
		lines:     make(map[string]*models.CartLine),
		snap:      snap,
	}
}

// Restore rebuilds a store from its persisted snapshot. A missing snapshot is
// not an error; it yields an empty cart.
func Restore(ctx context.Context, sessionID string, snap Snapshotter) *Store {
	s := NewStore(sessionID, snap)
	if snap == nil {
		return s
	}
	snapshot, err := snap.LoadCart(ctx, sessionID)
	if err != nil || snapshot == nil {
		return s
	}
	for i := range snapshot.Lines {
		line := snapshot.Lines[i]
		s.lines[line.ProductID] = &line
		s.order = append(s.order, line.ProductID)
	}
	return s
}

// AddItem inserts a line with quantity 1, or bumps the quantity of an
// existing line for the same product. Always succeeds.
func (s *Store) AddItem(product *models.Product) {
	s.mu.Lock()
	if line, ok := s.lines[product.ID.Hex()]; ok {
		line.Quantity++
	} else {
		id := product.ID.Hex()
		s.lines[id] = &models.CartLine{
			ProductID:   id,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    1,
			AddedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		s.order = append(s.order, id)
	}
	s.mu.Unlock()
	s.persist()
}

// UpdateQuantity sets the line quantity; zero or below removes the line.
// Unknown product ids are a no-op, not an error.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	line, ok := s.lines[productID]
	if !ok {
		s.mu.Unlock()
		return
	}
	if quantity <= 0 {
		s.removeLocked(productID)
	} else {
		line.Quantity = quantity
	}
	s.mu.Unlock()
	s.persist()
}

// RemoveItem drops the line if present; no-op otherwise.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	if _, ok := s.lines[productID]; !ok {
		s.mu.Unlock()
		return
	}
	s.removeLocked(productID)
	s.mu.Unlock()
	s.persist()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = make(map[string]*models.CartLine)
	s.order = nil
	s.mu.Unlock()

	if s.snap == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snap.DeleteCart(ctx, s.sessionID); err != nil {
		logger.Get().Warn("failed to clear cart snapshot",
			zap.String("session_id", s.sessionID), zap.Error(err))
	}
}

// Find returns a copy of the line for productID, if any.
func (s *Store) Find(productID string) (models.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if line, ok := s.lines[productID]; ok {
		return *line, true
	}
	return models.CartLine{}, false
}

// Lines returns the cart lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartLine, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.lines[id])
	}
	return out
}

// TotalItems sums quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, line := range s.lines {
		n += line.Quantity
	}
	return n
}

// TotalPrice sums price*quantity across all lines. This is the subtotal fed
// to the price calculator.
func (s *Store) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, line := range s.lines {
		total += line.Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Snapshot captures the current cart state for persistence or checkout.
func (s *Store) Snapshot() *models.CartSnapshot {
	return &models.CartSnapshot{
		SessionID:   s.sessionID,
		Lines:       s.Lines(),
		TotalItems:  s.TotalItems(),
		TotalPrice:  s.TotalPrice(),
		LastUpdated: time.Now().UTC(),
	}
}

func (s *Store) removeLocked(productID string) {
	delete(s.lines, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// persist writes the snapshot best-effort; the mutation has already been
// applied and is never rolled back on cache failure.
func (s *Store) persist() {
	if s.snap == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snap.SaveCart(ctx, s.Snapshot()); err != nil {
		logger.Get().Warn("failed to persist cart snapshot",
			zap.String("session_id", s.sessionID), zap.Error(err))
	}
}
