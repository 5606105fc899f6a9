package service_interfaces

import (
	"context"

	"github.com/api-sage/pix-ledger/src/internal/domain"
)

type StatementService interface {
	ListForAccount(ctx context.Context, accountID int64, limit int) ([]domain.StatementEntry, error)
}
