package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindTransfer TransactionKind = "TRANSFER"
	TransactionKindRefund   TransactionKind = "REFUND"
)

type TransactionStatus string

const (
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusSuperseded TransactionStatus = "SUPERSEDED"
)

// Transaction is one immutable ledger record. Status is the single mutable
// field and only ever moves TRANSFER/COMPLETED -> SUPERSEDED, at most once,
// when a refund of the record commits.
type Transaction struct {
	ID         int64
	Reference  string
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal
	Kind       TransactionKind
	Status     TransactionStatus
	CreatedAt  time.Time
}
