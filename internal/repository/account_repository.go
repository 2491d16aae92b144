package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/models"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	AccountExists(ctx context.Context, id string) (bool, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
}

// MemoryAccountRepository keeps ledgers in process memory. Ledger state is
// never written out, so it lives as long as the process.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]*models.Account)}
}

func (r *MemoryAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	// Generate UUID if not set
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; ok {
		return errors.ErrAccountAlreadyExists
	}
	account.CreatedAt = time.Now().UTC()
	r.accounts[account.ID] = account
	return nil
}

func (r *MemoryAccountRepository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return account, nil
}

func (r *MemoryAccountRepository) AccountExists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.accounts[id]
	return ok, nil
}

// ListAccounts returns accounts oldest first.
func (r *MemoryAccountRepository) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
