package services

import (
	"context"
	"errors"

	"github.com/api-sage/pix-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/logger"
)

type RefundService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
}

func NewRefundService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
) *RefundService {
	return &RefundService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Execute refunds a completed transfer back to its sender. Only the original
// receiver may refund, and only once; the ledger posting re-validates both
// conditions inside its atomic scope.
func (s *RefundService) Execute(ctx context.Context, requesterID int64, transactionID int64) (domain.Transaction, error) {
	logger.Info("refund service execute request", logger.Fields{
		"requesterId":   requesterID,
		"transactionId": transactionID,
	})

	original, err := s.ledgerRepo.GetByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if original.Kind != domain.TransactionKindTransfer || original.ReceiverID != requesterID {
		logger.Warn("refund service refused", logger.Fields{
			"requesterId":   requesterID,
			"transactionId": transactionID,
		})
		return domain.Transaction{}, commons.ErrUnauthorized
	}
	if original.Status != domain.TransactionStatusCompleted {
		return domain.Transaction{}, commons.ErrAlreadyRefunded
	}

	if _, err := s.ledgerRepo.FindRefundOf(ctx, original); err == nil {
		return domain.Transaction{}, commons.ErrAlreadyRefunded
	} else if !errors.Is(err, commons.ErrRecordNotFound) {
		return domain.Transaction{}, err
	}

	requester, err := s.accountRepo.GetByID(ctx, requesterID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if requester.Balance.LessThan(original.Amount) {
		return domain.Transaction{}, commons.ErrInsufficientBalance
	}

	refund, err := s.ledgerRepo.PostRefund(ctx, original, requesterID)
	if err != nil {
		if !errors.Is(err, commons.ErrAlreadyRefunded) && !errors.Is(err, commons.ErrInsufficientBalance) {
			logger.Error("refund service posting failed", err, logger.Fields{
				"requesterId":   requesterID,
				"transactionId": transactionID,
			})
		}
		return domain.Transaction{}, err
	}

	logger.Info("refund service execute success", logger.Fields{
		"transactionId":         refund.ID,
		"originalTransactionId": original.ID,
	})
	return refund, nil
}
