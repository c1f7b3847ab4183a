// Package address resolves which delivery address a checkout will use and
// manages promotion of map-picked locations into saved addresses.
package address

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
)

var (
	// ErrNoAddress means the user has no saved addresses; checkout must
	// collect a map-picked location plus the mandatory fields instead.
	ErrNoAddress = errors.New("address: no saved address for user")
	// ErrPhoneRequired blocks checkout until the resolved address carries a
	// phone number.
	ErrPhoneRequired = errors.New("address: resolved address has no phone")
	// ErrInvalidPhone means the supplied phone is not exactly 10 digits.
	ErrInvalidPhone = errors.New("address: phone must be exactly 10 digits")
	// ErrNameRequired and ErrLandmarkRequired gate the map-location flow.
	ErrNameRequired     = errors.New("address: full name is required")
	ErrLandmarkRequired = errors.New("address: landmark is required")
)

// Repository is the persistence collaborator for a user's address set.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	GetByID(ctx context.Context, userID, addressID string) (*models.Address, error)
	// ClearDefaults unsets is_default across the user's address set.
	ClearDefaults(ctx context.Context, userID string) error
	Insert(ctx context.Context, userID string, addr *models.Address) (*models.Address, error)
	// MarkDefault sets is_default on a single address.
	MarkDefault(ctx context.Context, userID, addressID string) error
	UpdatePhone(ctx context.Context, userID, addressID, phone string) error
}

// Remembered is the durable client-side record of the last chosen address.
type Remembered interface {
	RememberedSelectedAddress(ctx context.Context, userID string) (string, error)
	RememberSelectedAddress(ctx context.Context, userID, addressID string) error
}

// Resolver applies the checkout address selection chain.
type Resolver struct {
	repo       Repository
	remembered Remembered
	session    *SessionSelection
}

func NewResolver(repo Repository, remembered Remembered, session *SessionSelection) *Resolver {
	return &Resolver{repo: repo, remembered: remembered, session: session}
}

// Resolve picks the single address the checkout will use. First match wins:
// the session's explicit choice, then the remembered id (if it still exists),
// then the stored default, then the first address default-first. ErrNoAddress
// signals the map-location gate, not a failure.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*models.Address, error) {
	addresses, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, ErrNoAddress
	}

	sort.SliceStable(addresses, func(i, j int) bool {
		return addresses[i].IsDefault && !addresses[j].IsDefault
	})

	if chosen := r.session.Chosen(userID); chosen != "" {
		if addr := findByID(addresses, chosen); addr != nil {
			return addr, nil
		}
	}

	if r.remembered != nil {
		rememberedID, err := r.remembered.RememberedSelectedAddress(ctx, userID)
		if err != nil {
			logger.Get().Warn("failed to read remembered address",
				zap.String("user_id", userID), zap.Error(err))
		} else if rememberedID != "" {
			if addr := findByID(addresses, rememberedID); addr != nil {
				return addr, nil
			}
		}
	}

	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i], nil
		}
	}

	return &addresses[0], nil
}

// Choose records an explicit selection for the session, remembers it durably,
// and notifies subscribers.
func (r *Resolver) Choose(ctx context.Context, userID, addressID string) {
	r.session.Choose(userID, addressID)
	if r.remembered == nil {
		return
	}
	if err := r.remembered.RememberSelectedAddress(ctx, userID, addressID); err != nil {
		logger.Get().Warn("failed to remember selected address",
			zap.String("user_id", userID), zap.Error(err))
	}
}

// EnsurePhone is the gate every resolved address must pass before an order
// may be created.
func EnsurePhone(addr *models.Address) error {
	if !addr.HasPhone() {
		return ErrPhoneRequired
	}
	return nil
}

// ValidateLocation checks the mandatory fields of a map-picked location
// before it can be promoted: full name, 10-digit phone, landmark.
func ValidateLocation(loc *models.SelectedLocation) error {
	if strings.TrimSpace(loc.FullName) == "" {
		return ErrNameRequired
	}
	if !models.ValidPhone(loc.Phone) {
		return ErrInvalidPhone
	}
	if strings.TrimSpace(loc.Landmark) == "" {
		return ErrLandmarkRequired
	}
	return nil
}

// Promote turns a map-picked location into the user's new default address.
// The clear-defaults and insert are two separate writes with no transaction;
// a crash between them can leave zero addresses marked default. That window
// is accepted and matches the persisted store's semantics.
func (r *Resolver) Promote(ctx context.Context, userID string, loc *models.SelectedLocation) (*models.Address, error) {
	if err := ValidateLocation(loc); err != nil {
		return nil, err
	}
	if err := r.repo.ClearDefaults(ctx, userID); err != nil {
		return nil, err
	}
	addr := &models.Address{
		Type:      models.AddressOther,
		Name:      strings.TrimSpace(loc.FullName),
		Line:      loc.Address,
		Phone:     models.NormalizePhone(loc.Phone),
		Landmark:  strings.TrimSpace(loc.Landmark),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		IsDefault: true,
	}
	addr.SetTimestamps()
	return r.repo.Insert(ctx, userID, addr)
}

// SetDefault makes addressID the user's single default address using the same
// two-step, non-atomic pattern as Promote.
func (r *Resolver) SetDefault(ctx context.Context, userID, addressID string) error {
	if _, err := r.repo.GetByID(ctx, userID, addressID); err != nil {
		return err
	}
	if err := r.repo.ClearDefaults(ctx, userID); err != nil {
		return err
	}
	return r.repo.MarkDefault(ctx, userID, addressID)
}

// AddPhone attaches a normalized 10-digit phone to an address, completing the
// phone-entry sub-step of checkout.
func (r *Resolver) AddPhone(ctx context.Context, userID, addressID, rawPhone string) error {
	if !models.ValidPhone(rawPhone) {
		return ErrInvalidPhone
	}
	return r.repo.UpdatePhone(ctx, userID, addressID, models.NormalizePhone(rawPhone))
}

func findByID(addresses []models.Address, id string) *models.Address {
	for i := range addresses {
		if addresses[i].ID.Hex() == id {
			return &addresses[i]
		}
	}
	return nil
}
