// internal/service/pack/pack_test.go
package pack

import (
	"context"
	"testing"
	"time"

	"license-service/internal/domain/pack"
	"license-service/internal/domain/subscription"
	xerrors "license-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePackRepo struct {
	packs  []*pack.Pack
	nextID int64
}

func (f *fakePackRepo) Create(_ context.Context, p *pack.Pack) error {
	f.nextID++
	p.ID = f.nextID
	p.IsActive = true
	f.packs = append(f.packs, p)
	return nil
}

func (f *fakePackRepo) FindByID(_ context.Context, id int64) (*pack.Pack, error) {
	for _, p := range f.packs {
		if p.ID == id && p.IsActive {
			return p, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakePackRepo) FindBySKU(_ context.Context, sku string) (*pack.Pack, error) {
	for _, p := range f.packs {
		if p.SKU == sku && p.IsActive {
			return p, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakePackRepo) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	for _, p := range f.packs {
		if p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePackRepo) Update(context.Context, *pack.Pack) error { return nil }

func (f *fakePackRepo) SoftDelete(_ context.Context, id int64) error {
	for _, p := range f.packs {
		if p.ID == id {
			p.IsActive = false
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (f *fakePackRepo) List(_ context.Context, _ pack.ListFilters) ([]pack.Pack, int64, error) {
	var out []pack.Pack
	for _, p := range f.packs {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePackRepo) ListActive(context.Context) ([]pack.Pack, error) {
	var out []pack.Pack
	for _, p := range f.packs {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

// stubSubscriptionRepo only backs CountOpenByPack; the pack service touches
// nothing else.
type stubSubscriptionRepo struct {
	openByPack map[int64]int64
}

func (s *stubSubscriptionRepo) CreateIfNoneOpen(context.Context, *subscription.Subscription) error {
	return nil
}
func (s *stubSubscriptionRepo) FindByID(context.Context, int64) (*subscription.Subscription, error) {
	return nil, xerrors.ErrNotFound
}
func (s *stubSubscriptionRepo) FindCurrentByCustomer(context.Context, int64) (*subscription.Detail, error) {
	return nil, xerrors.ErrNotFound
}
func (s *stubSubscriptionRepo) Approve(context.Context, int64, time.Time, time.Time) error {
	return nil
}
func (s *stubSubscriptionRepo) MarkExpired(context.Context, int64) error { return nil }
func (s *stubSubscriptionRepo) DeactivateCurrent(context.Context, int64, time.Time) error {
	return nil
}
func (s *stubSubscriptionRepo) ListByCustomer(context.Context, int64, subscription.HistoryFilters) ([]subscription.Detail, int64, error) {
	return nil, 0, nil
}
func (s *stubSubscriptionRepo) List(context.Context, subscription.ListFilters) ([]subscription.Detail, int64, error) {
	return nil, 0, nil
}
func (s *stubSubscriptionRepo) CountByStatus(context.Context, ...subscription.Status) (int64, error) {
	return 0, nil
}
func (s *stubSubscriptionRepo) SumPackPrice(context.Context, ...subscription.Status) (float64, error) {
	return 0, nil
}
func (s *stubSubscriptionRepo) RecentEvents(context.Context, int) ([]subscription.Event, error) {
	return nil, nil
}
func (s *stubSubscriptionRepo) CountOpenByPack(_ context.Context, packID int64) (int64, error) {
	return s.openByPack[packID], nil
}

func newTestService() (*PackService, *fakePackRepo, *stubSubscriptionRepo) {
	packs := &fakePackRepo{}
	subs := &stubSubscriptionRepo{openByPack: map[int64]int64{}}
	return NewPackService(packs, subs, zap.NewNop()), packs, subs
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Create(context.Background(), pack.CreateRequest{
		Name:           "Starter",
		Description:    "Entry tier",
		SKU:            "STARTER-1M",
		Price:          9.99,
		ValidityMonths: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.True(t, p.Description.Valid)
	assert.Equal(t, "Entry tier", p.Description.String)
}

func TestCreateThenFindBySKURoundTrip(t *testing.T) {
	svc, packs, _ := newTestService()

	created, err := svc.Create(context.Background(), pack.CreateRequest{
		Name:           "Premium",
		SKU:            "premium-6m",
		Price:          49.99,
		ValidityMonths: 6,
	})
	require.NoError(t, err)

	got, err := packs.FindBySKU(context.Background(), "premium-6m")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Premium", got.Name)
	assert.Equal(t, 49.99, got.Price)
	assert.Equal(t, 6, got.ValidityMonths)
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), pack.CreateRequest{Name: "A", SKU: "X", Price: 1, ValidityMonths: 1})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), pack.CreateRequest{Name: "B", SKU: "X", Price: 2, ValidityMonths: 2})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestCreateReusedSKUOfDeletedPackStillConflicts(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Create(context.Background(), pack.CreateRequest{Name: "A", SKU: "X", Price: 1, ValidityMonths: 1})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), p.ID))

	// SKU stays reserved even after soft delete so old references stay
	// unambiguous.
	_, err = svc.Create(context.Background(), pack.CreateRequest{Name: "B", SKU: "X", Price: 2, ValidityMonths: 2})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestUpdatePartial(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Create(context.Background(), pack.CreateRequest{Name: "A", SKU: "X", Price: 1, ValidityMonths: 1})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), p.ID, pack.UpdateRequest{
		Name:  strPtr("A+"),
		Price: f64Ptr(3.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "A+", updated.Name)
	assert.Equal(t, 3.5, updated.Price)
	assert.Equal(t, "X", updated.SKU, "untouched fields are preserved")
	assert.Equal(t, 1, updated.ValidityMonths)
}

func TestUpdateSKUConflict(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), pack.CreateRequest{Name: "A", SKU: "X", Price: 1, ValidityMonths: 1})
	require.NoError(t, err)
	p2, err := svc.Create(context.Background(), pack.CreateRequest{Name: "B", SKU: "Y", Price: 2, ValidityMonths: 2})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), p2.ID, pack.UpdateRequest{SKU: strPtr("X")})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestDeleteRefusedWithOpenSubscriptions(t *testing.T) {
	svc, _, subs := newTestService()

	p, err := svc.Create(context.Background(), pack.CreateRequest{Name: "A", SKU: "X", Price: 1, ValidityMonths: 1})
	require.NoError(t, err)

	subs.openByPack[p.ID] = 2
	err = svc.Delete(context.Background(), p.ID)
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	subs.openByPack[p.ID] = 0
	assert.NoError(t, svc.Delete(context.Background(), p.ID))
}

func TestDeleteMissingPack(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestListActiveExcludesDeleted(t *testing.T) {
	svc, _, _ := newTestService()

	p1, err := svc.Create(context.Background(), pack.CreateRequest{Name: "A", SKU: "X", Price: 1, ValidityMonths: 1})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), pack.CreateRequest{Name: "B", SKU: "Y", Price: 2, ValidityMonths: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p1.ID))

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Y", active[0].SKU)
}
