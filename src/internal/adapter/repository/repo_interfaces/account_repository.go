package repo_interfaces

import (
	"context"

	"github.com/api-sage/pix-ledger/src/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	ResolveByIdentity(ctx context.Context, identityKey string) (domain.Account, error)
}
