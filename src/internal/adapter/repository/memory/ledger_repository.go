package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository is the in-memory ledger used by tests and local demos.
// Postings take the account mutex and then the ledger mutex, always in that
// order, so a posting is one atomic unit covering both balance mutations and
// the ledger writes.
type LedgerRepository struct {
	mu       sync.Mutex
	accounts *AccountRepository
	nextID   int64
	records  []*domain.Transaction
}

func NewLedgerRepository(accounts *AccountRepository) *LedgerRepository {
	return &LedgerRepository{accounts: accounts}
}

func (r *LedgerRepository) PostTransfer(_ context.Context, senderID int64, receiverID int64, amount decimal.Decimal) (domain.Transaction, error) {
	r.accounts.mu.Lock()
	defer r.accounts.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	sender, ok := r.accounts.accounts[senderID]
	if !ok {
		return domain.Transaction{}, commons.ErrAccountNotFound
	}
	receiver, ok := r.accounts.accounts[receiverID]
	if !ok {
		return domain.Transaction{}, commons.ErrAccountNotFound
	}
	if sender.Balance.LessThan(amount) {
		return domain.Transaction{}, commons.ErrInsufficientBalance
	}

	sender.Balance = sender.Balance.Sub(amount)
	receiver.Balance = receiver.Balance.Add(amount)
	now := time.Now().UTC()
	sender.UpdatedAt = now
	receiver.UpdatedAt = now

	return r.append(domain.Transaction{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Kind:       domain.TransactionKindTransfer,
		Status:     domain.TransactionStatusCompleted,
	}), nil
}

func (r *LedgerRepository) PostRefund(_ context.Context, original domain.Transaction, requesterID int64) (domain.Transaction, error) {
	r.accounts.mu.Lock()
	defer r.accounts.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.find(original.ID)
	if stored == nil || stored.Kind != domain.TransactionKindTransfer {
		return domain.Transaction{}, commons.ErrTransactionNotFound
	}
	if stored.Status != domain.TransactionStatusCompleted {
		return domain.Transaction{}, commons.ErrAlreadyRefunded
	}
	if r.refundOf(*stored) != nil {
		return domain.Transaction{}, commons.ErrAlreadyRefunded
	}

	requester, ok := r.accounts.accounts[requesterID]
	if !ok {
		return domain.Transaction{}, commons.ErrAccountNotFound
	}
	originalSender, ok := r.accounts.accounts[stored.SenderID]
	if !ok {
		return domain.Transaction{}, commons.ErrAccountNotFound
	}
	if requester.Balance.LessThan(stored.Amount) {
		return domain.Transaction{}, commons.ErrInsufficientBalance
	}

	requester.Balance = requester.Balance.Sub(stored.Amount)
	originalSender.Balance = originalSender.Balance.Add(stored.Amount)
	now := time.Now().UTC()
	requester.UpdatedAt = now
	originalSender.UpdatedAt = now

	refund := r.append(domain.Transaction{
		SenderID:   requesterID,
		ReceiverID: stored.SenderID,
		Amount:     stored.Amount,
		Kind:       domain.TransactionKindRefund,
		Status:     domain.TransactionStatusCompleted,
	})
	stored.Status = domain.TransactionStatusSuperseded

	return refund, nil
}

func (r *LedgerRepository) GetByID(_ context.Context, id int64) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.find(id)
	if record == nil {
		return domain.Transaction{}, commons.ErrTransactionNotFound
	}
	return *record, nil
}

func (r *LedgerRepository) MarkSuperseded(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.find(id)
	if record == nil {
		return commons.ErrTransactionNotFound
	}
	if record.Kind != domain.TransactionKindTransfer || record.Status != domain.TransactionStatusCompleted {
		return commons.ErrAlreadyRefunded
	}
	record.Status = domain.TransactionStatusSuperseded
	return nil
}

func (r *LedgerRepository) FindRecentTransfer(_ context.Context, senderID int64, receiverID int64, amount decimal.Decimal, since time.Time) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Records are appended in order, so the last match is the most recent.
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		if record.Kind != domain.TransactionKindTransfer || record.Status != domain.TransactionStatusCompleted {
			continue
		}
		if record.SenderID != senderID || record.ReceiverID != receiverID {
			continue
		}
		if !record.Amount.Equal(amount) {
			continue
		}
		if record.CreatedAt.Before(since) {
			continue
		}
		return *record, nil
	}
	return domain.Transaction{}, commons.ErrRecordNotFound
}

func (r *LedgerRepository) FindRefundOf(_ context.Context, original domain.Transaction) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if refund := r.refundOf(original); refund != nil {
		return *refund, nil
	}
	return domain.Transaction{}, commons.ErrRecordNotFound
}

func (r *LedgerRepository) ListForAccount(_ context.Context, accountID int64, limit int) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Transaction, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		record := r.records[i]
		if record.SenderID == accountID || record.ReceiverID == accountID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *LedgerRepository) append(record domain.Transaction) domain.Transaction {
	r.nextID++
	record.ID = r.nextID
	record.Reference = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	stored := record
	r.records = append(r.records, &stored)
	return record
}

func (r *LedgerRepository) find(id int64) *domain.Transaction {
	for _, record := range r.records {
		if record.ID == id {
			return record
		}
	}
	return nil
}

func (r *LedgerRepository) refundOf(original domain.Transaction) *domain.Transaction {
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		if record.Kind != domain.TransactionKindRefund {
			continue
		}
		if record.SenderID != original.ReceiverID || record.ReceiverID != original.SenderID {
			continue
		}
		if !record.Amount.Equal(original.Amount) {
			continue
		}
		if !record.CreatedAt.After(original.CreatedAt) {
			continue
		}
		return record
	}
	return nil
}
