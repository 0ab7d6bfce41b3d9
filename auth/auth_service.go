package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/internal/errors"
	"github.com/ovenworks/go-backoffice-auth/mailer"
	"github.com/ovenworks/go-backoffice-auth/token"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	resetTokenLength = 32               // bytes of entropy in a raw reset token
	resetTokenTTL    = 10 * time.Minute // wall-clock lifetime, checked at consumption
)

// ResetRequestedMessage is returned for every forgot-password request,
// whether or not the account exists.
const ResetRequestedMessage = "If this user exists, a password reset email has been sent."

// Tokens is the access/refresh pair handed out at registration, login, and
// refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service owns the credential lifecycle: registration, login, token refresh,
// password change, and the password-reset round trip.
type Service struct {
	accounts    accounts.Repo
	tokens      *token.Service
	mail        mailer.Sender
	frontendURL string
	nowTime     func() time.Time // nowTime function (injectable for testing)
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(repo accounts.Repo, tokens *token.Service, mail mailer.Sender, frontendURL string, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New("[auth.NewService] accounts repo is required")
	}
	if tokens == nil {
		return nil, pkgerrors.New("[auth.NewService] token service is required")
	}
	if mail == nil {
		return nil, pkgerrors.New("[auth.NewService] mail sender is required")
	}

	s := &Service{
		accounts:    repo,
		tokens:      tokens,
		mail:        mail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Register creates an account and signs it in. The duplicate-email check runs
// twice on purpose: the pre-check gives the common case a clean conflict, and
// the repo maps the insert's uniqueness violation to the same conflict so the
// check-then-insert race cannot leak a storage error.
func (s *Service) Register(email, password, name string) (*accounts.Account, *Tokens, error) {
	if email == "" || password == "" || name == "" {
		return nil, nil, errors.Validation("Email, password, and name are required")
	}
	if err := accounts.ValidatePassword(password); err != nil {
		return nil, nil, errors.Validation(err.Error())
	}

	if _, err := s.accounts.GetByEmail(email); err == nil {
		return nil, nil, errors.ErrEmailTaken
	}

	hash, err := accounts.HashPassword(password)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "Service.Register HashPassword")
	}

	account := &accounts.Account{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         accounts.RoleUser,
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issuePair(account)
	if err != nil {
		return nil, nil, err
	}
	return account, tokens, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error so callers cannot probe which emails are registered.
func (s *Service) Login(email, password string) (*accounts.Account, *Tokens, error) {
	if email == "" || password == "" {
		return nil, nil, errors.Validation("Email and password are required")
	}

	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, nil, errors.ErrInvalidCredentials
	}
	if !accounts.CheckPasswordHash(password, account.PasswordHash) {
		return nil, nil, errors.ErrInvalidCredentials
	}

	tokens, err := s.issuePair(account)
	if err != nil {
		return nil, nil, err
	}
	return account, tokens, nil
}

// Refresh exchanges a refresh token for a new pair. The account lookup keeps
// a token from resurrecting a deleted account.
func (s *Service) Refresh(refreshToken string) (*Tokens, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(claims.UserID)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	return s.issuePair(account)
}

// ChangePassword re-verifies the current password before accepting the new
// one. Does not invalidate existing tokens; they expire naturally.
func (s *Service) ChangePassword(accountID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return errors.Validation("Current and new passwords are required")
	}
	if err := accounts.ValidatePassword(newPassword); err != nil {
		return errors.Validationf("New %s", err.Error())
	}
	if currentPassword == newPassword {
		return errors.Validation("New password cannot be the same as the old one")
	}

	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return err
	}
	if !accounts.CheckPasswordHash(currentPassword, account.PasswordHash) {
		return errors.ErrInvalidCredentials
	}

	hash, err := accounts.HashPassword(newPassword)
	if err != nil {
		return pkgerrors.Wrap(err, "Service.ChangePassword HashPassword")
	}
	return s.accounts.UpdatePassword(account.ID, hash)
}

// RequestPasswordReset issues a one-time reset token and mails it. The
// response is identical whether or not the email exists. A token is only left
// in storage if the mail actually went out; on dispatch failure the stored
// fields are rolled back before the error surfaces.
func (s *Service) RequestPasswordReset(email string) error {
	if email == "" {
		return errors.Validation("Email is required")
	}

	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil // anti-enumeration: report success
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return pkgerrors.Wrap(err, "Service.RequestPasswordReset generateResetToken")
	}
	tokenHash := hashResetToken(rawToken)
	expires := s.nowTime().Add(resetTokenTTL)

	if err := s.accounts.SetResetToken(account.Email, &tokenHash, &expires); err != nil {
		return pkgerrors.Wrap(err, "Service.RequestPasswordReset SetResetToken")
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, rawToken)
	msg := mailer.Message{
		To:      account.Email,
		Subject: "Password Reset Request",
		Body:    fmt.Sprintf("Click this link to reset your password: %s (valid 10 min)", resetURL),
	}
	if err := s.mail.Send(msg); err != nil {
		log.Error().Err(err).Str("email", account.Email).Msg("password reset mail dispatch failed, rolling back token")
		if rollbackErr := s.accounts.SetResetToken(account.Email, nil, nil); rollbackErr != nil {
			log.Error().Err(rollbackErr).Str("email", account.Email).Msg("reset token rollback failed")
		}
		return pkgerrors.Wrap(err, "Service.RequestPasswordReset Send")
	}
	return nil
}

// ResetPassword consumes a reset token. The stored hash match and the expiry
// check happen in one repo lookup; consumption clears the fields so the token
// is single-use. No tokens are issued: the user logs in again.
func (s *Service) ResetPassword(rawToken, newPassword string) error {
	if err := accounts.ValidatePassword(newPassword); err != nil {
		return errors.Validation(err.Error())
	}

	account, err := s.accounts.GetByResetTokenHash(hashResetToken(rawToken), s.nowTime())
	if err != nil {
		return errors.ErrResetTokenInvalid
	}

	hash, err := accounts.HashPassword(newPassword)
	if err != nil {
		return pkgerrors.Wrap(err, "Service.ResetPassword HashPassword")
	}
	return s.accounts.ConsumeResetToken(account.ID, hash)
}

func (s *Service) issuePair(account *accounts.Account) (*Tokens, error) {
	access, err := s.tokens.IssueAccessToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
