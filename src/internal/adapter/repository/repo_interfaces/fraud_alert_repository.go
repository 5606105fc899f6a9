package repo_interfaces

import (
	"context"

	"github.com/api-sage/pix-ledger/src/internal/domain"
)

type FraudAlertRepository interface {
	Create(ctx context.Context, alert domain.FraudAlert) (domain.FraudAlert, error)
	ListForAccount(ctx context.Context, accountID int64) ([]domain.FraudAlert, error)
	Resolve(ctx context.Context, id int64) error
}
