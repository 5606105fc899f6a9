package services

import (
	"context"

	"github.com/api-sage/pix-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/logger"
)

type StatementService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
}

func NewStatementService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
) *StatementService {
	return &StatementService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// ListForAccount returns the account's most recent ledger records, newest
// first, each annotated with the counterparty and direction. Counterparty
// names come from explicit account lookups, cached per call.
func (s *StatementService) ListForAccount(ctx context.Context, accountID int64, limit int) ([]domain.StatementEntry, error) {
	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	records, err := s.ledgerRepo.ListForAccount(ctx, accountID, limit)
	if err != nil {
		logger.Error("statement service list failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, err
	}

	names := make(map[int64]string)
	entries := make([]domain.StatementEntry, 0, len(records))
	for _, record := range records {
		sent := record.SenderID == accountID
		counterpartyID := record.SenderID
		if sent {
			counterpartyID = record.ReceiverID
		}

		name, ok := names[counterpartyID]
		if !ok {
			counterparty, err := s.accountRepo.GetByID(ctx, counterpartyID)
			if err != nil {
				return nil, err
			}
			name = counterparty.FullName
			names[counterpartyID] = name
		}

		entries = append(entries, domain.StatementEntry{
			Transaction:      record,
			CounterpartyID:   counterpartyID,
			CounterpartyName: name,
			Sent:             sent,
		})
	}

	return entries, nil
}
