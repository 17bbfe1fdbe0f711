package auth

import (
	"testing"
	"time"

	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key",
		Expiration: expiration,
		Issuer:     "aquagest-test",
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)
	userID := uuid.New()

	token, expiresAt, err := svc.Issue(userID, "mirlande", identity.RoleSalesperson)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "mirlande", claims.Username)
	assert.Equal(t, "salesperson", claims.Role)

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTService_Validate_WrongSecret(t *testing.T) {
	svc := newTestService(time.Hour)
	token, _, err := svc.Issue(uuid.New(), "jean", identity.RoleAdmin)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:     "different-secret",
		Expiration: time.Hour,
		Issuer:     "aquagest-test",
	})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Validate_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)
	token, _, err := svc.Issue(uuid.New(), "jean", identity.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Validate_Garbage(t *testing.T) {
	svc := newTestService(time.Hour)
	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
