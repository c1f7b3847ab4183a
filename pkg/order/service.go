// Package order governs order creation and status progression.
package order

import (
	"context"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/address"
	"freshcart.app/storefront/pkg/cart"
	"freshcart.app/storefront/pkg/geo"
	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/pricing"
	"freshcart.app/storefront/pkg/retry"
)

// Delivery estimates: a fixed base plus a uniform jitter, so every order's
// estimated minutes land in [30, 40].
const (
	baseDeliveryMinutes = 25
	minJitterMinutes    = 5
	maxJitterMinutes    = 15
)

// Store is the order persistence collaborator.
type Store interface {
	// Create inserts the order and returns the generated id.
	Create(ctx context.Context, o *models.Order) (string, error)
	// AttachOrderID patches the generated id back onto the document. The id
	// is only known after the insert, hence the second write.
	AttachOrderID(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	GetByID(ctx context.Context, userID, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

// BanChecker is the identity collaborator's account gate, consulted before
// checkout opens and again at confirmation.
type BanChecker interface {
	IsBanned(ctx context.Context, userID string) (bool, error)
}

// Events receives best-effort notifications after order writes commit.
type Events interface {
	OrderPlaced(o *models.Order) error
	OrderStatusChanged(orderID string, status models.OrderStatus) error
	ScheduleDeliveryCheck(orderID string, delay time.Duration) error
}

// CheckoutInput carries everything a confirmed checkout supplies.
type CheckoutInput struct {
	UserID         string
	Cart           *cart.Store
	Address        *models.Address
	PaymentMethod  string
	Tip            int64
	// Externally computed promo result; the service only applies it.
	DiscountAmount int64
	AppliedPromo   string
	// PickedLocation is the explicit map pin, preferred over device
	// geolocation when present.
	PickedLocation *geo.Coordinates
}

// Service wires the checkout flow together.
type Service struct {
	store     Store
	banCheck  BanChecker
	calc      *pricing.Calculator
	locator   geo.Locator
	events    Events
	reference geo.Coordinates
	retryCfg  retry.Config
}

func NewService(store Store, banCheck BanChecker, calc *pricing.Calculator, locator geo.Locator, events Events, reference geo.Coordinates) *Service {
	return &Service{
		store:     store,
		banCheck:  banCheck,
		calc:      calc,
		locator:   locator,
		events:    events,
		reference: reference,
		retryCfg:  retry.DefaultConfig(),
	}
}

// SetRetryConfig overrides the persistence retry policy.
func (s *Service) SetRetryConfig(cfg retry.Config) {
	s.retryCfg = cfg
}

// CheckEligibility gates opening the checkout dialog.
func (s *Service) CheckEligibility(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	banned, err := s.banCheck.IsBanned(ctx, userID)
	if err != nil {
		return classifyStoreError(err)
	}
	if banned {
		return ErrAccountBlocked
	}
	return nil
}

// PlaceOrder runs the full creation algorithm: validate, resolve coordinates,
// estimate delivery, freeze pricing, persist (with bounded retry), patch the
// generated id, then clear the cart. On any failure the cart is untouched so
// the user can retry.
func (s *Service) PlaceOrder(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	if in.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := s.CheckEligibility(ctx, in.UserID); err != nil {
		return nil, err
	}
	if in.Cart == nil || in.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if in.Address == nil {
		return nil, address.ErrNoAddress
	}
	if err := address.EnsurePhone(in.Address); err != nil {
		return nil, err
	}

	coords := s.resolveCoordinates(ctx, in.PickedLocation)
	estimatedMinutes := estimateDeliveryMinutes()
	now := time.Now()

	breakdown, err := s.calc.Compute(in.Cart.TotalPrice(), in.DiscountAmount, in.Tip)
	if err != nil {
		return nil, err
	}

	userID, err := parseObjectID(in.UserID)
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		UserID:        userID,
		Lines:         in.Cart.Lines(),
		PaymentMethod: in.PaymentMethod,
		Delivery: models.DeliveryTarget{
			AddressID: in.Address.ID,
			Name:      in.Address.Name,
			Line:      in.Address.Line,
			Phone:     in.Address.Phone,
			Landmark:  in.Address.Landmark,
			Latitude:  coords.Latitude,
			Longitude: coords.Longitude,
		},
		// Priced fields are frozen here; later cart mutations never touch
		// the persisted order.
		Subtotal:          breakdown.Subtotal,
		DeliveryCharge:    breakdown.DeliveryCharge,
		DiscountAmount:    breakdown.DiscountAmount,
		GSTAmount:         breakdown.GSTAmount,
		Tip:               breakdown.Tip,
		TotalPrice:        breakdown.Total,
		AppliedPromo:      in.AppliedPromo,
		Status:            models.StatusPending,
		EstimatedMinutes:  estimatedMinutes,
		EstimatedDelivery: now.Add(time.Duration(estimatedMinutes) * time.Minute),
	}
	o.SetTimestamps()

	var id string
	err = retry.Do(ctx, s.retryCfg, func() error {
		createdID, createErr := s.store.Create(ctx, o)
		if createErr != nil {
			return createErr
		}
		id = createdID
		return nil
	})
	if err != nil {
		return nil, classifyStoreError(err)
	}

	o.OrderID = id
	err = retry.Do(ctx, s.retryCfg, func() error {
		return s.store.AttachOrderID(ctx, id)
	})
	if err != nil {
		return nil, classifyStoreError(err)
	}

	in.Cart.Clear()
	s.publish(o)

	return o, nil
}

// Transition advances an order's status, rejecting illegal moves.
func (s *Service) Transition(ctx context.Context, userID, id string, to models.OrderStatus) error {
	o, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return classifyStoreError(err)
	}
	if !models.CanTransition(o.Status, to) {
		if o.Status == to {
			// idempotent: re-applying the current status is a no-op
			return nil
		}
		return ErrBadTransition
	}
	if err := s.store.UpdateStatus(ctx, id, to); err != nil {
		return classifyStoreError(err)
	}
	if s.events != nil {
		if err := s.events.OrderStatusChanged(id, to); err != nil {
			logger.Get().Warn("failed to publish status change",
				zap.String("order_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) resolveCoordinates(ctx context.Context, picked *geo.Coordinates) geo.Coordinates {
	if picked != nil {
		return *picked
	}
	if s.locator != nil {
		locateCtx, cancel := context.WithTimeout(ctx, geo.LocateTimeout)
		defer cancel()
		if coords, err := s.locator.CurrentPosition(locateCtx); err == nil {
			return coords
		} else {
			logger.Get().Warn("geolocation failed, using approximate coordinates", zap.Error(err))
		}
	}
	return geo.ApproximateNear(s.reference)
}

func (s *Service) publish(o *models.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.OrderPlaced(o); err != nil {
		logger.Get().Warn("failed to publish order placed event",
			zap.String("order_id", o.OrderID), zap.Error(err))
	}
	if err := s.events.ScheduleDeliveryCheck(o.OrderID, time.Until(o.EstimatedDelivery)); err != nil {
		logger.Get().Warn("failed to schedule delivery check",
			zap.String("order_id", o.OrderID), zap.Error(err))
	}
}

func estimateDeliveryMinutes() int {
	return baseDeliveryMinutes + minJitterMinutes + rand.Intn(maxJitterMinutes-minJitterMinutes+1)
}

func parseObjectID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, ErrNotAuthenticated
	}
	return id, nil
}
