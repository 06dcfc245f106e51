// internal/service/customer/customer_test.go
package customer

import (
	"context"
	"testing"

	"license-service/internal/domain/customer"
	"license-service/internal/domain/user"
	xerrors "license-service/internal/pkg/errors"
	"license-service/internal/pkg/hash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users  []*user.User
	nextID int64
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return xerrors.ErrConflict
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.users = append(f.users, u)
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id int64, passwordHash string) error {
	u, err := f.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeCustomerRepo struct {
	users     *fakeUserRepo
	customers []*customer.Customer
	nextID    int64
}

func (f *fakeCustomerRepo) Create(_ context.Context, c *customer.Customer) error {
	f.nextID++
	c.ID = f.nextID
	c.IsActive = true
	f.customers = append(f.customers, c)
	return nil
}

// CreateWithUser writes both rows or neither, the same contract as the
// transactional postgres repository.
func (f *fakeCustomerRepo) CreateWithUser(ctx context.Context, u *user.User, c *customer.Customer) error {
	for _, existing := range f.customers {
		if existing.Email == c.Email && existing.IsActive {
			return xerrors.ErrConflict
		}
	}
	if err := f.users.Create(ctx, u); err != nil {
		return err
	}
	c.UserID = u.ID
	return f.Create(ctx, c)
}

func (f *fakeCustomerRepo) UpdateWithUserEmail(ctx context.Context, c *customer.Customer) error {
	u, err := f.users.FindByID(ctx, c.UserID)
	if err != nil {
		return err
	}
	u.Email = c.Email
	return nil
}

func (f *fakeCustomerRepo) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id && c.IsActive {
			return c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCustomerRepo) FindByUserID(_ context.Context, userID int64) (*customer.Customer, error) {
	for _, c := range f.customers {
		if c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	for _, c := range f.customers {
		if c.Email == email && c.IsActive {
			return c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCustomerRepo) Update(context.Context, *customer.Customer) error { return nil }

func (f *fakeCustomerRepo) SoftDelete(_ context.Context, id int64) error {
	for _, c := range f.customers {
		if c.ID == id && c.IsActive {
			c.IsActive = false
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (f *fakeCustomerRepo) List(_ context.Context, fl customer.ListFilters) ([]customer.Customer, int64, error) {
	var out []customer.Customer
	for _, c := range f.customers {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCustomerRepo) CountActive(context.Context) (int64, error) {
	var n int64
	for _, c := range f.customers {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}

func newTestService() (*CustomerService, *fakeCustomerRepo, *fakeUserRepo) {
	users := &fakeUserRepo{}
	customers := &fakeCustomerRepo{users: users}
	svc := NewCustomerService(customers, users, hash.NewHasher(), zap.NewNop())
	return svc, customers, users
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc, _, users := newTestService()

	c, tempPassword, err := svc.Create(context.Background(), customer.CreateRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "0712345678",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.NotEmpty(t, tempPassword)

	// A login principal is created alongside, holding the hashed temporary
	// password.
	u, err := users.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
	assert.True(t, hash.NewHasher().Verify(tempPassword, u.PasswordHash))
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, customers, users := newTestService()

	_, _, err := svc.Create(context.Background(), customer.CreateRequest{
		Name: "Jane", Email: "jane@example.com", Phone: "0712345678",
	})
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), customer.CreateRequest{
		Name: "Other Jane", Email: "jane@example.com", Phone: "0799999999",
	})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	// The failed create writes neither row, so the email is not held by an
	// orphaned principal.
	assert.Len(t, users.users, 1)
	assert.Len(t, customers.customers, 1)
}

func TestUpdatePartial(t *testing.T) {
	svc, _, _ := newTestService()

	c, _, err := svc.Create(context.Background(), customer.CreateRequest{
		Name: "Jane", Email: "jane@example.com", Phone: "0712345678",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), c.ID, customer.UpdateRequest{
		Phone: strPtr("0700000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0700000000", updated.Phone)
	assert.Equal(t, "Jane", updated.Name)
	assert.Equal(t, "jane@example.com", updated.Email)
}

func TestUpdateEmailSyncsPrincipal(t *testing.T) {
	svc, _, users := newTestService()

	c, _, err := svc.Create(context.Background(), customer.CreateRequest{
		Name: "Jane", Email: "jane@example.com", Phone: "0712345678",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), c.ID, customer.UpdateRequest{
		Email: strPtr("jane.doe@example.com"),
	})
	require.NoError(t, err)

	_, err = users.FindByEmail(context.Background(), "jane.doe@example.com")
	assert.NoError(t, err, "login principal follows the profile email")
	_, err = users.FindByEmail(context.Background(), "jane@example.com")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestUpdateEmailConflict(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Create(context.Background(), customer.CreateRequest{
		Name: "Jane", Email: "jane@example.com", Phone: "0712345678",
	})
	require.NoError(t, err)
	c2, _, err := svc.Create(context.Background(), customer.CreateRequest{
		Name: "John", Email: "john@example.com", Phone: "0799999999",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), c2.ID, customer.UpdateRequest{
		Email: strPtr("jane@example.com"),
	})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestDeleteIsSoft(t *testing.T) {
	svc, customers, _ := newTestService()

	c, _, err := svc.Create(context.Background(), customer.CreateRequest{
		Name: "Jane", Email: "jane@example.com", Phone: "0712345678",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), c.ID))

	_, err = svc.Get(context.Background(), c.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	// The row survives with is_active off.
	require.Len(t, customers.customers, 1)
	assert.False(t, customers.customers[0].IsActive)
}

func TestDeleteMissing(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
