package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
)

type FraudService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
	alertRepo   repo_interfaces.FraudAlertRepository
	window      time.Duration
}

func NewFraudService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
	alertRepo repo_interfaces.FraudAlertRepository,
	window time.Duration,
) *FraudService {
	return &FraudService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		alertRepo:   alertRepo,
		window:      window,
	}
}

// CheckAlert warns a prospective sender who recently received the same amount
// from the prospective receiver: sending it back as a fresh transfer instead
// of a refund is a known scam pattern. The result is advisory and never
// blocks the transfer.
func (s *FraudService) CheckAlert(ctx context.Context, senderID int64, receiverID int64, amount decimal.Decimal) (domain.FraudCheck, error) {
	logger.Info("fraud service check alert request", logger.Fields{
		"senderId":   senderID,
		"receiverId": receiverID,
		"amount":     amount.String(),
	})

	since := time.Now().UTC().Add(-s.window)
	reverse, err := s.ledgerRepo.FindRecentTransfer(ctx, receiverID, senderID, amount, since)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.FraudCheck{Alert: false}, nil
		}
		logger.Error("fraud service reverse lookup failed", err, logger.Fields{
			"senderId":   senderID,
			"receiverId": receiverID,
		})
		return domain.FraudCheck{}, err
	}

	counterparty, err := s.accountRepo.GetByID(ctx, receiverID)
	if err != nil {
		return domain.FraudCheck{}, err
	}

	message := fmt.Sprintf(
		"Warning! You recently received %s from %s. If this amount was sent to you by mistake, do NOT send it back as a new transfer. Use the refund option to avoid scams.",
		reverse.Amount.StringFixed(2),
		counterparty.FullName,
	)

	// Persisting the alert is best effort: the advisory result stands even if
	// the write fails.
	if _, err := s.alertRepo.Create(ctx, domain.FraudAlert{
		TransactionID: reverse.ID,
		AccountID:     senderID,
		AlertType:     domain.AlertTypePossibleRefundScam,
		Details:       message,
	}); err != nil {
		logger.Error("fraud service persist alert failed", err, logger.Fields{
			"senderId":      senderID,
			"transactionId": reverse.ID,
		})
	}

	logger.Warn("fraud service possible refund scam detected", logger.Fields{
		"senderId":      senderID,
		"receiverId":    receiverID,
		"transactionId": reverse.ID,
	})

	return domain.FraudCheck{Alert: true, Message: message}, nil
}
