package accounts

import "time"

// ListParams narrows and pages the admin account listing.
type ListParams struct {
	Offset int
	Limit  int
	Search string // matches email or name, case-insensitive
	Role   Role   // empty means all roles
	SortBy string // one of id, email, name, role, created_at
	Order  string // asc or desc
}

type Repo interface {
	// Create stores a new account. Returns errors.ErrEmailTaken if the email
	// is already registered.
	Create(account *Account) error
	GetByEmail(email string) (*Account, error)
	GetByID(id string) (*Account, error)
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(id string, passwordHash string) error
	// SetResetToken stores (or clears, when both are nil) the reset-token
	// hash and its expiry.
	SetResetToken(email string, tokenHash *string, expires *time.Time) error
	// GetByResetTokenHash finds the account whose stored reset-token hash
	// matches and whose expiry is after now.
	GetByResetTokenHash(tokenHash string, now time.Time) (*Account, error)
	// ConsumeResetToken sets the new password hash and clears the
	// reset-token fields in one step.
	ConsumeResetToken(id string, passwordHash string) error
	// List returns a page of accounts plus the total count for the filter.
	List(params ListParams) ([]*Account, int, error)
	Delete(id string) error
}
