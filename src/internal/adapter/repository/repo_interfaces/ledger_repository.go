package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerRepository is the append-mostly transaction ledger. PostTransfer and
// PostRefund are the only operations that move balances; each runs as a single
// atomic unit covering both account mutations and the ledger writes.
type LedgerRepository interface {
	PostTransfer(ctx context.Context, senderID int64, receiverID int64, amount decimal.Decimal) (domain.Transaction, error)
	PostRefund(ctx context.Context, original domain.Transaction, requesterID int64) (domain.Transaction, error)
	GetByID(ctx context.Context, id int64) (domain.Transaction, error)
	MarkSuperseded(ctx context.Context, id int64) error
	FindRecentTransfer(ctx context.Context, senderID int64, receiverID int64, amount decimal.Decimal, since time.Time) (domain.Transaction, error)
	FindRefundOf(ctx context.Context, original domain.Transaction) (domain.Transaction, error)
	ListForAccount(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error)
}
