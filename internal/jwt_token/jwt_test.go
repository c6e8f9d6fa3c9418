package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

func newTestService() *JWTService {
	return NewJWTService("test-signing-key", "vigil", "vigil")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken(domain.ActorID("actor-1"), domain.RoleAnalyst, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "actor-1", claims.ActorID)
	require.Equal(t, string(domain.RoleAnalyst), claims.Role)
	require.Equal(t, "vigil", claims.Issuer)
}

func TestValidateExpired(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken(domain.ActorID("actor-1"), domain.RoleAnalyst, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateWrongKey(t *testing.T) {
	token, err := newTestService().GenerateToken(domain.ActorID("actor-1"), domain.RoleAnalyst, time.Hour)
	require.NoError(t, err)

	other := NewJWTService("a-different-key", "vigil", "vigil")
	_, err = other.ValidateToken(token)
	require.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not.a.token")
	require.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
