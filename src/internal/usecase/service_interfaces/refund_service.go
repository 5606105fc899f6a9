package service_interfaces

import (
	"context"

	"github.com/api-sage/pix-ledger/src/internal/domain"
)

type RefundService interface {
	Execute(ctx context.Context, requesterID int64, transactionID int64) (domain.Transaction, error)
}
