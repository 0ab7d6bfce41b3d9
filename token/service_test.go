package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/internal/errors"
	"github.com/ovenworks/go-backoffice-auth/token"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := token.NewService("")
	require.Error(t, err)

	_, err = token.NewService("   ")
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, err := token.NewService(testSecret)
	require.NoError(t, err)

	raw, err := svc.IssueAccessToken("account-1", accounts.RoleModerator)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, "account-1", claims.UserID)
	require.Equal(t, accounts.RoleModerator, claims.Role)
}

func TestVerifyAccessTokenTamperedSignature(t *testing.T) {
	svc, err := token.NewService(testSecret)
	require.NoError(t, err)

	raw, err := svc.IssueAccessToken("account-1", accounts.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.VerifyAccessToken(tampered)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestVerifyAccessTokenWrongSecret(t *testing.T) {
	issuer, err := token.NewService("secret-one")
	require.NoError(t, err)
	verifier, err := token.NewService("secret-two")
	require.NoError(t, err)

	raw, err := issuer.IssueAccessToken("account-1", accounts.RoleUser)
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(raw)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer, err := token.NewService(testSecret, token.WithNowFunc(func() time.Time { return issuedAt }))
	require.NoError(t, err)

	raw, err := issuer.IssueAccessToken("account-1", accounts.RoleUser)
	require.NoError(t, err)

	verifier, err := token.NewService(testSecret)
	require.NoError(t, err)
	_, err = verifier.VerifyAccessToken(raw)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, err := token.NewService(testSecret)
	require.NoError(t, err)

	raw, err := svc.IssueRefreshToken("account-1")
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(raw)
	require.NoError(t, err)
	require.Equal(t, "account-1", claims.UserID)
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	svc, err := token.NewService(testSecret)
	require.NoError(t, err)

	access, err := svc.IssueAccessToken("account-1", accounts.RoleUser)
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken("account-1")
	require.NoError(t, err)

	// A refresh token is not an access token, and vice versa.
	_, err = svc.VerifyAccessToken(refresh)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
	_, err = svc.VerifyRefreshToken(access)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	svc, err := token.NewService(testSecret)
	require.NoError(t, err)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err = svc.VerifyAccessToken(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
		_, err = svc.VerifyRefreshToken(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	}
}
