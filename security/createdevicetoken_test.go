package security

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/lukashondrich/open-workinghours-sub006/remote/v1"
)

func TestCreateDeviceTokenRoundTrip(t *testing.T) {
	secret := []byte("device-signing-secret")
	b64 := base64.StdEncoding.EncodeToString(secret)

	identity := &DeviceIdentity{DeviceID: "dev-1", UserName: "alex", Email: "alex@example.com"}
	signed, err := CreateDeviceToken(identity, b64, 3600)
	require.NoError(t, err)

	var claims IdentityClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(tok *jwt.Token) (any, error) {
		return secret, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "dev-1", claims.DeviceID)
	assert.Equal(t, "alex", claims.UniqueName)
	assert.Equal(t, "open-workinghours", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestCreateDeviceTokenRejectsBadSecret(t *testing.T) {
	_, err := CreateDeviceToken(&DeviceIdentity{DeviceID: "dev-1"}, "not-base64!!", 60)
	assert.Error(t, err)
}

func TestTokenSourceWithoutSecret(t *testing.T) {
	ts := &TokenSource{}
	_, err := ts.GetToken()
	assert.ErrorIs(t, err, v1.ErrNoToken)
}
