package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	secret := []byte("test_secret")

	raw, err := SignAccessToken(42, RoleArtisan, secret, time.Minute)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(raw, secret)
	require.NoError(t, err)
	require.Equal(t, RoleArtisan, claims.Role)

	id, err := claims.SubjectID()
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
}

func TestParseWrongSecret(t *testing.T) {
	raw, err := SignAccessToken(1, RoleAdmin, []byte("secret_a"), time.Minute)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(raw, []byte("secret_b"))
	require.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	secret := []byte("test_secret")
	raw, err := SignAccessToken(1, RoleArtisan, secret, -time.Minute)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(raw, secret)
	require.Error(t, err)
}
