package service_interfaces

import (
	"context"

	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type FraudService interface {
	CheckAlert(ctx context.Context, senderID int64, receiverID int64, amount decimal.Decimal) (domain.FraudCheck, error)
}
