package repofake

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/internal/errors"
)

var _ accounts.Repo = (*FakeAccountRepo)(nil)

// FakeAccountRepo is an in-memory account store used by tests and by the
// server when no database is configured.
type FakeAccountRepo struct {
	accounts map[string]*accounts.Account
	emailIds map[string]string // email to account id
	lock     sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*accounts.Account),
		emailIds: make(map[string]string),
	}
}

func (ar *FakeAccountRepo) Create(account *accounts.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if _, exists := ar.emailIds[account.Email]; exists {
		return errors.ErrEmailTaken
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Role == "" {
		account.Role = accounts.RoleUser
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	stored := *account
	ar.accounts[account.ID] = &stored
	ar.emailIds[account.Email] = account.ID
	return nil
}

func (ar *FakeAccountRepo) GetByEmail(email string) (*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	id, ok := ar.emailIds[email]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return ar.copyOf(id)
}

func (ar *FakeAccountRepo) GetByID(id string) (*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	return ar.copyOf(id)
}

func (ar *FakeAccountRepo) UpdatePassword(id string, passwordHash string) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

func (ar *FakeAccountRepo) SetResetToken(email string, tokenHash *string, expires *time.Time) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	id, ok := ar.emailIds[email]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account := ar.accounts[id]
	account.ResetTokenHash = tokenHash
	account.ResetTokenExpires = expires
	return nil
}

func (ar *FakeAccountRepo) GetByResetTokenHash(tokenHash string, now time.Time) (*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	for id, account := range ar.accounts {
		if account.ResetTokenHash == nil || account.ResetTokenExpires == nil {
			continue
		}
		if *account.ResetTokenHash == tokenHash && account.ResetTokenExpires.After(now) {
			return ar.copyOf(id)
		}
	}
	return nil, errors.ErrAccountNotFound
}

func (ar *FakeAccountRepo) ConsumeResetToken(id string, passwordHash string) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	account.ResetTokenHash = nil
	account.ResetTokenExpires = nil
	return nil
}

func (ar *FakeAccountRepo) List(params accounts.ListParams) ([]*accounts.Account, int, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	matched := make([]*accounts.Account, 0, len(ar.accounts))
	for _, account := range ar.accounts {
		if params.Role != "" && account.Role != params.Role {
			continue
		}
		if !matchesSearch(account, params.Search) {
			continue
		}
		cp := *account
		matched = append(matched, &cp)
	}

	sortAccounts(matched, params.SortBy, params.Order)

	total := len(matched)
	if params.Offset >= total {
		return []*accounts.Account{}, total, nil
	}
	end := params.Offset + params.Limit
	if params.Limit <= 0 || end > total {
		end = total
	}
	return matched[params.Offset:end], total, nil
}

func (ar *FakeAccountRepo) Delete(id string) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	delete(ar.emailIds, account.Email)
	delete(ar.accounts, id)
	return nil
}

// copyOf returns a defensive copy so callers cannot mutate stored state.
// Callers must hold at least the read lock.
func (ar *FakeAccountRepo) copyOf(id string) (*accounts.Account, error) {
	account, ok := ar.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func matchesSearch(account *accounts.Account, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(account.Email), needle) ||
		strings.Contains(strings.ToLower(account.Name), needle)
}

func sortAccounts(list []*accounts.Account, sortBy, order string) {
	desc := order == "desc"
	sort.SliceStable(list, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "email":
			less = list[i].Email < list[j].Email
		case "name":
			less = list[i].Name < list[j].Name
		case "role":
			less = list[i].Role < list[j].Role
		case "created_at":
			less = list[i].CreatedAt.Before(list[j].CreatedAt)
		default:
			less = list[i].ID < list[j].ID
		}
		if desc {
			return !less
		}
		return less
	})
}
