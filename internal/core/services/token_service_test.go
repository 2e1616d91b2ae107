package services

import (
	"errors"
	"testing"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	secret := "super-secret-key-for-testing"
	issuer := "clario-test"
	userID := "user-123-uuid"

	setup := func() (*TokenService, *MockUserRepository) {
		mockRepo := new(MockUserRepository)
		return NewTokenService(secret, issuer, 1*time.Hour, mockRepo), mockRepo
	}

	t.Run("Success: Should generate and validate a token", func(t *testing.T) {
		service, mockRepo := setup()
		mockRepo.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID}, nil)

		tokenString, err := service.GenerateToken(userID)
		require.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		extractedID, err := service.ValidateToken(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, userID, extractedID)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should reject valid token if user is deleted", func(t *testing.T) {
		service, mockRepo := setup()
		mockRepo.On("GetByID", mock.Anything, userID).Return(nil, domain.ErrUserNotFound)

		tokenString, err := service.GenerateToken(userID)
		require.NoError(t, err)

		extractedID, err := service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Contains(t, err.Error(), "user no longer exists")
		assert.Empty(t, extractedID)
	})

	t.Run("Fail: Should reject expired token", func(t *testing.T) {
		service := NewTokenService(secret, issuer, -1*time.Second, new(MockUserRepository))

		tokenString, err := service.GenerateToken(userID)
		require.NoError(t, err)

		extractedID, err := service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		assert.Empty(t, extractedID)
	})

	t.Run("Fail: Should reject token with wrong secret", func(t *testing.T) {
		service, _ := setup()
		tokenString, _ := service.GenerateToken(userID)

		attacker := NewTokenService("wrong-key", issuer, 1*time.Hour, new(MockUserRepository))

		extractedID, err := attacker.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
		assert.Empty(t, extractedID)
	})

	t.Run("Fail: Should reject token with wrong issuer", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		tokenString, _ := NewTokenService(secret, "correct-issuer", 1*time.Hour, mockRepo).GenerateToken(userID)

		extractedID, err := NewTokenService(secret, "wrong-issuer", 1*time.Hour, mockRepo).ValidateToken(tokenString)

		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
		assert.Empty(t, extractedID)
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("Fail: Should reject 'none' algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		fakeTokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		service, _ := setup()
		_, err = service.ValidateToken(fakeTokenString)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token")
	})

	t.Run("Fail: Should reject malformed token string", func(t *testing.T) {
		service, _ := setup()

		extractedID, err := service.ValidateToken("this-is-not-a-jwt")

		assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
		assert.Empty(t, extractedID)
	})

	t.Run("Success: expiry follows the configured duration", func(t *testing.T) {
		service, _ := setup()

		tokenString, err := service.GenerateToken(userID)
		require.NoError(t, err)

		var claims jwt.RegisteredClaims
		_, _, err = jwt.NewParser().ParseUnverified(tokenString, &claims)
		require.NoError(t, err)
		assert.Equal(t, issuer, claims.Issuer)
		assert.WithinDuration(t, time.Now().Add(service.TokenDuration()), claims.ExpiresAt.Time, 2*time.Second)
	})

	t.Run("Fail: Should reject token without subject", func(t *testing.T) {
		service, mockRepo := setup()

		tokenString, err := service.GenerateToken("")
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorContains(t, err, "subject")
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("Fail: Database error is wrapped", func(t *testing.T) {
		service, mockRepo := setup()
		mockRepo.On("GetByID", mock.Anything, userID).Return(nil, errors.New("connection refused"))

		tokenString, _ := service.GenerateToken(userID)
		_, err := service.ValidateToken(tokenString)

		assert.ErrorContains(t, err, "connection refused")
	})
}
