package address

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"freshcart.app/storefront/pkg/models"
	cache "freshcart.app/storefront/pkg/redis"
)

type fakeRepo struct {
	addresses []models.Address
	failList  error
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]models.Address, len(f.addresses))
	copy(out, f.addresses)
	return out, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, userID, addressID string) (*models.Address, error) {
	for i := range f.addresses {
		if f.addresses[i].ID.Hex() == addressID {
			addr := f.addresses[i]
			return &addr, nil
		}
	}
	return nil, errors.New("address not found")
}

func (f *fakeRepo) ClearDefaults(ctx context.Context, userID string) error {
	for i := range f.addresses {
		f.addresses[i].IsDefault = false
	}
	return nil
}

func (f *fakeRepo) Insert(ctx context.Context, userID string, addr *models.Address) (*models.Address, error) {
	addr.ID = bson.NewObjectID()
	f.addresses = append(f.addresses, *addr)
	return addr, nil
}

func (f *fakeRepo) MarkDefault(ctx context.Context, userID, addressID string) error {
	for i := range f.addresses {
		if f.addresses[i].ID.Hex() == addressID {
			f.addresses[i].IsDefault = true
			return nil
		}
	}
	return errors.New("address not found")
}

func (f *fakeRepo) UpdatePhone(ctx context.Context, userID, addressID, phone string) error {
	for i := range f.addresses {
		if f.addresses[i].ID.Hex() == addressID {
			f.addresses[i].Phone = phone
			return nil
		}
	}
	return errors.New("address not found")
}

func (f *fakeRepo) defaults() []models.Address {
	var out []models.Address
	for _, a := range f.addresses {
		if a.IsDefault {
			out = append(out, a)
		}
	}
	return out
}

func newAddress(name string, isDefault bool) models.Address {
	return models.Address{
		ID:        bson.NewObjectID(),
		Type:      models.AddressHome,
		Name:      name,
		Line:      "221B MG Road",
		City:      "Bengaluru",
		Phone:     "9876543210",
		IsDefault: isDefault,
	}
}

func testRemembered(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	c := cache.NewCache(client)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestResolvePrefersSessionChoice(t *testing.T) {
	a := newAddress("Home", true)
	b := newAddress("Work", false)
	repo := &fakeRepo{addresses: []models.Address{a, b}}
	r := NewResolver(repo, testRemembered(t), NewSessionSelection())

	r.Choose(context.Background(), "u1", b.ID.Hex())

	resolved, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, resolved.ID)
}

func TestResolveUsesRememberedWhenStillPresent(t *testing.T) {
	a := newAddress("Home", true)
	b := newAddress("Work", false)
	repo := &fakeRepo{addresses: []models.Address{a, b}}
	remembered := testRemembered(t)
	r := NewResolver(repo, remembered, NewSessionSelection())
	ctx := context.Background()

	require.NoError(t, remembered.RememberSelectedAddress(ctx, "u1", b.ID.Hex()))

	resolved, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, resolved.ID)
}

func TestResolveIgnoresStaleRememberedID(t *testing.T) {
	a := newAddress("Home", true)
	repo := &fakeRepo{addresses: []models.Address{a}}
	remembered := testRemembered(t)
	r := NewResolver(repo, remembered, NewSessionSelection())
	ctx := context.Background()

	// remembered id no longer exists among the user's addresses
	require.NoError(t, remembered.RememberSelectedAddress(ctx, "u1", bson.NewObjectID().Hex()))

	resolved, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, resolved.ID)
}

func TestResolveFallsBackToDefaultThenFirst(t *testing.T) {
	a := newAddress("Other", false)
	b := newAddress("Home", true)
	repo := &fakeRepo{addresses: []models.Address{a, b}}
	r := NewResolver(repo, testRemembered(t), NewSessionSelection())

	resolved, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, resolved.ID, "default flag wins")

	repo = &fakeRepo{addresses: []models.Address{newAddress("A", false), newAddress("B", false)}}
	r = NewResolver(repo, testRemembered(t), NewSessionSelection())
	resolved, err = r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, repo.addresses[0].ID, resolved.ID, "first address when no default")
}

func TestResolveNoAddresses(t *testing.T) {
	r := NewResolver(&fakeRepo{}, testRemembered(t), NewSessionSelection())

	_, err := r.Resolve(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNoAddress)
}

func TestPromoteCreatesSingleDefault(t *testing.T) {
	existing := newAddress("Home", true)
	repo := &fakeRepo{addresses: []models.Address{existing}}
	r := NewResolver(repo, testRemembered(t), NewSessionSelection())

	created, err := r.Promote(context.Background(), "u1", &models.SelectedLocation{
		Latitude:  12.9716,
		Longitude: 77.5946,
		Address:   "12 Residency Road, Bengaluru",
		FullName:  "Asha Rao",
		Phone:     "98765-43210",
		Landmark:  "Opp. Garuda Mall",
	})
	require.NoError(t, err)

	defaults := repo.defaults()
	require.Len(t, defaults, 1)
	assert.Equal(t, created.ID, defaults[0].ID)
	assert.Equal(t, "9876543210", created.Phone, "phone normalized to digits")
	assert.True(t, created.IsDefault)
}

func TestPromoteValidationGate(t *testing.T) {
	r := NewResolver(&fakeRepo{}, testRemembered(t), NewSessionSelection())
	ctx := context.Background()

	base := models.SelectedLocation{
		Address:  "12 Residency Road",
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Landmark: "Opp. Garuda Mall",
	}

	loc := base
	loc.FullName = " "
	_, err := r.Promote(ctx, "u1", &loc)
	assert.ErrorIs(t, err, ErrNameRequired)

	loc = base
	loc.Phone = "12345"
	_, err = r.Promote(ctx, "u1", &loc)
	assert.ErrorIs(t, err, ErrInvalidPhone)

	loc = base
	loc.Landmark = ""
	_, err = r.Promote(ctx, "u1", &loc)
	assert.ErrorIs(t, err, ErrLandmarkRequired)
}

func TestSetDefaultSwapsSingleDefault(t *testing.T) {
	a := newAddress("Home", true)
	b := newAddress("Work", false)
	repo := &fakeRepo{addresses: []models.Address{a, b}}
	r := NewResolver(repo, testRemembered(t), NewSessionSelection())

	require.NoError(t, r.SetDefault(context.Background(), "u1", b.ID.Hex()))

	defaults := repo.defaults()
	require.Len(t, defaults, 1)
	assert.Equal(t, b.ID, defaults[0].ID)
}

func TestEnsurePhoneGate(t *testing.T) {
	addr := newAddress("Home", true)
	addr.Phone = ""
	assert.ErrorIs(t, EnsurePhone(&addr), ErrPhoneRequired)

	addr.Phone = "9876543210"
	assert.NoError(t, EnsurePhone(&addr))
}

func TestAddPhoneNormalizesAndValidates(t *testing.T) {
	a := newAddress("Home", true)
	a.Phone = ""
	repo := &fakeRepo{addresses: []models.Address{a}}
	r := NewResolver(repo, testRemembered(t), NewSessionSelection())
	ctx := context.Background()

	assert.ErrorIs(t, r.AddPhone(ctx, "u1", a.ID.Hex(), "12345"), ErrInvalidPhone)

	require.NoError(t, r.AddPhone(ctx, "u1", a.ID.Hex(), "(98765) 43210"))
	assert.Equal(t, "9876543210", repo.addresses[0].Phone)
}

func TestSessionSelectionNotifiesSubscribers(t *testing.T) {
	sel := NewSessionSelection()

	var gotUser, gotAddr string
	sel.Subscribe(func(userID, addressID string) {
		gotUser, gotAddr = userID, addressID
	})

	sel.Choose("u1", "addr-1")
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, "addr-1", gotAddr)
	assert.Equal(t, "addr-1", sel.Chosen("u1"))

	sel.Forget("u1")
	assert.Empty(t, sel.Chosen("u1"))
}
