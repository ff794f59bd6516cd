package security

import (
	"testing"
	"time"

	"rentshare-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, err := tm.GenerateAccessToken(7, "ravi@example.com", domain.RoleRenter)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(7), claims.UserID)
	assert.Equal(t, domain.RoleRenter, claims.Role)

	actor, err := ActorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: 7, Role: domain.RoleRenter}, actor)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).GenerateAccessToken(1, "", domain.RoleOwner)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := UserClaims{
			UserID: 1,
			Role:   domain.RoleOwner,
			Type:   TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Issuer:    issuer,
				Audience:  jwt.ClaimStrings{accessAudience},
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestActorFromClaims(t *testing.T) {
	_, err := ActorFromClaims(&UserClaims{UserID: 1, Role: domain.RoleOwner, Type: "refresh"})
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = ActorFromClaims(&UserClaims{UserID: 1, Role: "admin", Type: TokenTypeAccess})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
