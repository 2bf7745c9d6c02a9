// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with a symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		privateKey  string
		publicKey   string
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "rsa without keys",
			useRSAKeys:  true,
			expectError: true,
		},
		{
			name:        "rsa with malformed keys",
			useRSAKeys:  true,
			privateKey:  "not a pem",
			publicKey:   "not a pem",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				15*time.Minute,
				7*24*time.Hour,
				"test-issuer",
				"test-audience",
				tt.useRSAKeys,
				tt.privateKey,
				tt.publicKey,
				tt.secretKey,
			)
			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, service)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	t.Run("brand tokens carry role", func(t *testing.T) {
		accessToken, refreshToken, err := service.GenerateBrandTokens(42, "brand_owner")
		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.NotEqual(t, accessToken, refreshToken)

		claims, err := service.ValidateToken(accessToken, ActorKindBrand)
		require.NoError(t, err)
		assert.Equal(t, ActorKindBrand, claims.ActorKind)
		assert.Equal(t, uint(42), claims.ActorID)
		assert.Equal(t, "brand_owner", claims.Role)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("creator tokens", func(t *testing.T) {
		accessToken, _, err := service.GenerateCreatorTokens(7)
		require.NoError(t, err)

		claims, err := service.ValidateToken(accessToken, ActorKindCreator)
		require.NoError(t, err)
		assert.Equal(t, ActorKindCreator, claims.ActorKind)
		assert.Equal(t, uint(7), claims.ActorID)
		assert.Empty(t, claims.Role)
	})

	t.Run("admin tokens", func(t *testing.T) {
		accessToken, _, err := service.GenerateAdminTokens(3)
		require.NoError(t, err)

		claims, err := service.ValidateToken(accessToken, ActorKindAdmin)
		require.NoError(t, err)
		assert.Equal(t, ActorKindAdmin, claims.ActorKind)
		assert.Equal(t, uint(3), claims.ActorID)
	})

	t.Run("wrong actor kind rejected", func(t *testing.T) {
		accessToken, _, err := service.GenerateCreatorTokens(7)
		require.NoError(t, err)

		_, err = service.ValidateToken(accessToken, ActorKindBrand)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenWrongAudience)
	})

	t.Run("empty expected kind accepts any actor", func(t *testing.T) {
		accessToken, _, err := service.GenerateAdminTokens(3)
		require.NoError(t, err)

		claims, err := service.ValidateToken(accessToken, "")
		require.NoError(t, err)
		assert.Equal(t, ActorKindAdmin, claims.ActorKind)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token", ActorKindBrand)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("token signed with another key rejected", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute,
			7*24*time.Hour,
			"test-issuer",
			"test-audience",
			false,
			"",
			"",
			"a-completely-different-signing-key-32-chars",
		)
		require.NoError(t, err)

		accessToken, _, err := other.GenerateBrandTokens(42, "brand_owner")
		require.NoError(t, err)

		_, err = service.ValidateToken(accessToken, ActorKindBrand)
		require.Error(t, err)
	})
}

func TestTokenExpiry(t *testing.T) {
	service, err := NewTokenService(
		-1*time.Minute, // already expired
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	accessToken, _, err := service.GenerateCreatorTokens(7)
	require.NoError(t, err)

	_, err = service.ValidateToken(accessToken, ActorKindCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	t.Run("refresh rotates the pair", func(t *testing.T) {
		_, refreshToken, err := service.GenerateBrandTokens(42, "brand_owner")
		require.NoError(t, err)

		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)
		assert.NotEqual(t, refreshToken, newRefresh)

		// The rotated pair keeps the actor identity and role
		claims, err := service.ValidateToken(newAccess, ActorKindBrand)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.ActorID)
		assert.Equal(t, "brand_owner", claims.Role)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		accessToken, _, err := service.GenerateBrandTokens(42, "brand_owner")
		require.NoError(t, err)

		_, _, err = service.RefreshToken(accessToken)
		require.Error(t, err)
	})

	t.Run("garbage refresh token rejected", func(t *testing.T) {
		_, _, err := service.RefreshToken("garbage")
		require.Error(t, err)
	})
}

func TestTokenIDsAreUnique(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		accessToken, _, err := service.GenerateCreatorTokens(uint(i + 1))
		require.NoError(t, err)

		claims, err := service.ValidateToken(accessToken, ActorKindCreator)
		require.NoError(t, err)
		assert.False(t, seen[claims.TokenID], "token id reused")
		seen[claims.TokenID] = true
	}
}
