package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

func newAuthServiceForTest() *AuthService {
	return NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "test"})
}

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := newAuthServiceForTest()
	token, expiresAt, err := svc.IssueToken("IT21000001", models.RoleStudent, "student@example.edu", "Kamal Perera")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "IT21000001", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "test", claims.Issuer)
}

func TestAuthServiceRejectsWrongSecret(t *testing.T) {
	token, _, err := newAuthServiceForTest().IssueToken("u1", models.RoleAdmin, "", "")
	require.NoError(t, err)

	other := NewAuthService(nil, AuthConfig{AccessTokenSecret: "other"})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newAuthServiceForTest()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.IssueToken("u1", models.RoleFaculty, "", "")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsUnknownRole(t *testing.T) {
	claims := &models.JWTClaims{
		UserID: "u1",
		Role:   models.UserRole("registrar"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newAuthServiceForTest().ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsOtherSigningMethod(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newAuthServiceForTest().ValidateToken(token)
	require.Error(t, err)
}
