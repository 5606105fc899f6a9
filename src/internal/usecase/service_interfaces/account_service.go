package service_interfaces

import (
	"context"

	"github.com/api-sage/pix-ledger/src/internal/domain"
)

type AccountService interface {
	GetAccount(ctx context.Context, id int64) (domain.Account, error)
	ResolveAccount(ctx context.Context, identityKey string) (domain.Account, error)
}
