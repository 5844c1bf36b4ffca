package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

func newAuthFixture(t *testing.T, passphrase string) *AuthService {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AdminConfig{
		PassphraseHash: string(hash),
		TokenSecret:    "test_secret",
		TokenExpiry:    time.Hour,
	}, nil)
}

func TestAuthLoginAndVerify(t *testing.T) {
	svc := newAuthFixture(t, "open sesame")

	resp, err := svc.Login(context.Background(), "open sesame")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin", claims.Subject)
}

func TestAuthLoginWrongPassphrase(t *testing.T) {
	svc := newAuthFixture(t, "open sesame")

	_, err := svc.Login(context.Background(), "wrong")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidPassphrase.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginUnconfigured(t *testing.T) {
	svc := NewAuthService(config.AdminConfig{TokenSecret: "s"}, nil)

	_, err := svc.Login(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthVerifyRejectsTamperedToken(t *testing.T) {
	svc := newAuthFixture(t, "open sesame")
	other := NewAuthService(config.AdminConfig{PassphraseHash: "x", TokenSecret: "different", TokenExpiry: time.Hour}, nil)

	resp, err := svc.Login(context.Background(), "open sesame")
	require.NoError(t, err)

	_, err = other.Verify(resp.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
