package services

import (
	"context"
	"strings"

	"github.com/api-sage/pix-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/logger"
)

type AccountService struct {
	accountRepo repo_interfaces.AccountRepository
}

func NewAccountService(accountRepo repo_interfaces.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// ResolveAccount looks an account up by any of its identity keys: CPF, email
// or phone.
func (s *AccountService) ResolveAccount(ctx context.Context, identityKey string) (domain.Account, error) {
	key := strings.TrimSpace(identityKey)
	if key == "" {
		return domain.Account{}, commons.ErrAccountNotFound
	}

	account, err := s.accountRepo.ResolveByIdentity(ctx, key)
	if err != nil {
		logger.Info("account service identity key did not resolve", nil)
		return domain.Account{}, err
	}

	return account, nil
}
