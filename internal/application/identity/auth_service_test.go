package identity

import (
	"context"
	"testing"
	"time"

	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role identity.Role) ([]identity.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// StaticTokenIssuer issues a fixed token for tests
type StaticTokenIssuer struct {
	token     string
	expiresAt time.Time
	err       error
}

func (s *StaticTokenIssuer) Issue(_ uuid.UUID, _ string, _ identity.Role) (string, time.Time, error) {
	return s.token, s.expiresAt, s.err
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("wilner", "Wilner Estimé", "s3cret-pass", identity.RoleSalesperson)
	require.NoError(t, err)
	return user
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	issuer := &StaticTokenIssuer{token: "tok-123", expiresAt: time.Now().Add(time.Hour)}

	t.Run("issues token and records login", func(t *testing.T) {
		user := newTestUser(t)
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "wilner").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		svc := NewService(repo, issuer)
		resp, err := svc.Login(ctx, LoginRequest{Username: "wilner", Password: "s3cret-pass"})

		require.NoError(t, err)
		assert.Equal(t, "tok-123", resp.Token)
		assert.Equal(t, "wilner", resp.User.Username)
		require.NotNil(t, user.LastLoginAt)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password and unknown user return the same error", func(t *testing.T) {
		user := newTestUser(t)
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "wilner").Return(user, nil)
		repo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		svc := NewService(repo, issuer)

		_, errWrongPass := svc.Login(ctx, LoginRequest{Username: "wilner", Password: "nope"})
		_, errUnknown := svc.Login(ctx, LoginRequest{Username: "ghost", Password: "nope"})

		var wrongPassErr, unknownErr *shared.DomainError
		require.ErrorAs(t, errWrongPass, &wrongPassErr)
		require.ErrorAs(t, errUnknown, &unknownErr)
		assert.Equal(t, wrongPassErr.Code, unknownErr.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", wrongPassErr.Code)
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		user := newTestUser(t)
		user.Deactivate()
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "wilner").Return(user, nil)

		svc := NewService(repo, issuer)
		_, err := svc.Login(ctx, LoginRequest{Username: "wilner", Password: "s3cret-pass"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})
}

func TestService_CreateUser(t *testing.T) {
	ctx := context.Background()
	issuer := &StaticTokenIssuer{}

	t.Run("creates a staff account", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByUsername", ctx, "darline").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		svc := NewService(repo, issuer)
		resp, err := svc.CreateUser(ctx, CreateUserRequest{
			Username: "darline",
			FullName: "Darline Joseph",
			Password: "delivery-pass-1",
			Role:     "deliverer",
		})

		require.NoError(t, err)
		assert.Equal(t, "darline", resp.Username)
		assert.Equal(t, "deliverer", resp.Role)
		assert.True(t, resp.Active)
		repo.AssertExpectations(t)
	})

	t.Run("rejects taken username", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByUsername", ctx, "wilner").Return(true, nil)

		svc := NewService(repo, issuer)
		_, err := svc.CreateUser(ctx, CreateUserRequest{
			Username: "wilner",
			FullName: "Wilner Estimé",
			Password: "whatever-pass",
			Role:     "salesperson",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_USERNAME", domainErr.Code)
	})
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	issuer := &StaticTokenIssuer{}

	t.Run("changes password after verifying the current one", func(t *testing.T) {
		user := newTestUser(t)
		repo := new(MockUserRepository)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		svc := NewService(repo, issuer)
		err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
			CurrentPassword: "s3cret-pass",
			NewPassword:     "brand-new-pass",
		})

		require.NoError(t, err)
		assert.True(t, user.CheckPassword("brand-new-pass"))
	})

	t.Run("rejects wrong current password", func(t *testing.T) {
		user := newTestUser(t)
		repo := new(MockUserRepository)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		svc := NewService(repo, issuer)
		err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "brand-new-pass",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		assert.True(t, user.CheckPassword("s3cret-pass"))
	})
}

func TestService_UpdatePreferences(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)

	repo := new(MockUserRepository)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	svc := NewService(repo, &StaticTokenIssuer{})
	resp, err := svc.UpdatePreferences(ctx, user.ID, UpdatePreferencesRequest{
		OrderValidated: false,
		OrderConverted: true,
		LowStock:       false,
	})

	require.NoError(t, err)
	assert.False(t, resp.Preferences.OrderValidated)
	assert.True(t, resp.Preferences.OrderConverted)
	assert.False(t, resp.Preferences.LowStock)
}
