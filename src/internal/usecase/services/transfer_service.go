package services

import (
	"context"
	"errors"

	"github.com/api-sage/pix-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
)

type TransferService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
}

func NewTransferService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
) *TransferService {
	return &TransferService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Execute validates and posts a one-way transfer. Validation failures return
// before any mutation; the posting itself is atomic in the ledger repository.
func (s *TransferService) Execute(ctx context.Context, senderID int64, receiverID int64, amount decimal.Decimal) (domain.Transaction, error) {
	logger.Info("transfer service execute request", logger.Fields{
		"senderId":   senderID,
		"receiverId": receiverID,
		"amount":     amount.String(),
	})

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Transaction{}, commons.ErrInvalidAmount
	}
	if senderID == receiverID {
		return domain.Transaction{}, commons.ErrSelfTransfer
	}

	sender, err := s.accountRepo.GetByID(ctx, senderID)
	if err != nil {
		logger.Error("transfer service sender lookup failed", err, logger.Fields{
			"senderId": senderID,
		})
		return domain.Transaction{}, err
	}
	if _, err := s.accountRepo.GetByID(ctx, receiverID); err != nil {
		logger.Error("transfer service receiver lookup failed", err, logger.Fields{
			"receiverId": receiverID,
		})
		return domain.Transaction{}, err
	}

	if sender.Balance.LessThan(amount) {
		return domain.Transaction{}, commons.ErrInsufficientBalance
	}

	record, err := s.ledgerRepo.PostTransfer(ctx, senderID, receiverID, amount)
	if err != nil {
		// The posting re-checks the balance under lock, so a concurrent debit
		// can still surface here.
		if !errors.Is(err, commons.ErrInsufficientBalance) && !errors.Is(err, commons.ErrAccountNotFound) {
			logger.Error("transfer service posting failed", err, logger.Fields{
				"senderId":   senderID,
				"receiverId": receiverID,
			})
		}
		return domain.Transaction{}, err
	}

	logger.Info("transfer service execute success", logger.Fields{
		"transactionId": record.ID,
		"reference":     record.Reference,
	})
	return record, nil
}
