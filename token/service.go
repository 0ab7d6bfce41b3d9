package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/internal/errors"
	pkgerrors "github.com/pkg/errors"
)

// Token types carried in the typ claim. Verification checks the type so a
// refresh token can never stand in for an access token or vice versa.
const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// AccessClaims is the payload of an access token: identity plus role.
// The claim name is userId, uniformly, including the realtime handshake.
type AccessClaims struct {
	UserID    string        `json:"userId"`
	Role      accounts.Role `json:"role"`
	TokenType string        `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token: identity only.
type RefreshClaims struct {
	UserID    string `json:"userId"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Service mints and verifies the stateless access/refresh token pair.
type Service struct {
	signer     Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowFunc    func() time.Time
}

type ServiceOption func(*Service)

func WithTokenExpiry(accessTTL, refreshTTL time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessTTL = accessTTL
		s.refreshTTL = refreshTTL
	}
}

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// NewService creates a token service signing with HMAC-SHA256. An empty
// secret is a hard error: the service must never fall back to issuing
// unsigned or guessably-signed tokens.
func NewService(secret string, options ...ServiceOption) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, pkgerrors.New("[token.NewService] signing secret is required")
	}

	s := &Service{
		signer:     NewHMACSigner(secret),
		accessTTL:  time.Hour,
		refreshTTL: 7 * 24 * time.Hour,
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) IssueAccessToken(accountID string, role accounts.Role) (string, error) {
	now := s.nowFunc()
	claims := AccessClaims{
		UserID:    accountID,
		Role:      role,
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := s.signer.Sign(claims)
	if err != nil {
		return "", pkgerrors.Wrap(err, "Service.IssueAccessToken")
	}
	return signed, nil
}

func (s *Service) IssueRefreshToken(accountID string) (string, error) {
	now := s.nowFunc()
	claims := RefreshClaims{
		UserID:    accountID,
		TokenType: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := s.signer.Sign(claims)
	if err != nil {
		return "", pkgerrors.Wrap(err, "Service.IssueRefreshToken")
	}
	return signed, nil
}

// VerifyAccessToken parses and validates an access token. Every failure mode
// collapses to errors.ErrInvalidToken so callers cannot distinguish expired
// from malformed from tampered.
func (s *Service) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeAccess || claims.UserID == "" || !claims.Role.Valid() {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken parses and validates a refresh token. On success the
// caller must still confirm the account exists before minting a new pair.
func (s *Service) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeRefresh || claims.UserID == "" {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) parse(raw string, claims jwt.Claims) error {
	if strings.TrimSpace(raw) == "" {
		return errors.ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(raw, claims, s.signer.GetVerificationKey,
		jwt.WithTimeFunc(s.nowFunc),
		jwt.WithValidMethods([]string{s.signer.GetSigningMethod().Alg()}),
	)
	if err != nil || !parsed.Valid {
		return errors.ErrInvalidToken
	}
	return nil
}

// AccessTTL reports the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}
