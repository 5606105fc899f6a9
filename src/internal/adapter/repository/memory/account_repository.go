package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
)

// AccountRepository keeps accounts in process memory. All access is
// serialized by one mutex; Get and Resolve hand out copies so callers cannot
// mutate stored state.
type AccountRepository struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[int64]*domain.Account)}
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	account.ID = r.nextID
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := account
	r.accounts[account.ID] = &stored
	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id int64) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrAccountNotFound
	}
	return *account, nil
}

func (r *AccountRepository) ResolveByIdentity(_ context.Context, identityKey string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.CPF == identityKey || account.Email == identityKey || account.Phone == identityKey {
			return *account, nil
		}
	}
	return domain.Account{}, commons.ErrAccountNotFound
}
