package security

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	v1 "github.com/lukashondrich/open-workinghours-sub006/remote/v1"
)

type DeviceIdentity struct {
	DeviceID string
	UserName string
	Email    string
}

type IdentityClaims struct {
	DeviceID   string `json:"sid"`
	UniqueName string `json:"unique_name"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// CreateDeviceToken mints the HS256 bearer token the aggregation service
// expects.
func CreateDeviceToken(identity *DeviceIdentity, base64Secret string, expiresInSeconds int64) (string, error) {
	secretBytes, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}
	claims := IdentityClaims{
		DeviceID:   identity.DeviceID,
		UniqueName: identity.UserName,
		Email:      identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "open-workinghours",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiresInSeconds) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secretBytes)
}

// TokenSource implements the remote client's TokenProvider by minting a fresh
// short-lived token per request.
type TokenSource struct {
	Identity     DeviceIdentity
	Base64Secret string
	TTLSeconds   int64
}

func (ts *TokenSource) GetToken() (string, error) {
	if ts.Base64Secret == "" {
		return "", v1.ErrNoToken
	}
	token, err := CreateDeviceToken(&ts.Identity, ts.Base64Secret, ts.TTLSeconds)
	if err != nil {
		return "", fmt.Errorf("create device token: %w", err)
	}
	return token, nil
}
