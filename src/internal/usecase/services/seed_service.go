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
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

type SeedService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
}

func NewSeedService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
) *SeedService {
	return &SeedService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

type seedAccount struct {
	fullName string
	cpf      string
	email    string
	phone    string
	balance  string
	password string
}

var demoAccounts = []seedAccount{
	{
		fullName: "Isabella Almeida Soares",
		cpf:      "123.456.789-00",
		email:    "isabella@example.com",
		phone:    "11987654321",
		balance:  "6000.00",
		password: "senha123",
	},
	{
		fullName: "Ana da Silva",
		cpf:      "987.654.321-00",
		email:    "ana@example.com",
		phone:    "11912345678",
		balance:  "450.00",
		password: "senha123",
	},
	{
		fullName: "Joao Pedro Santos",
		cpf:      "456.789.123-00",
		email:    "joao@example.com",
		phone:    "11999887766",
		balance:  "2000.00",
		password: "senha123",
	},
}

// Run creates the demo accounts and the demo Isabella -> Ana transfer that
// the refund-scam walkthrough starts from. Safe to run repeatedly.
func (s *SeedService) Run(ctx context.Context) error {
	logger.Info("seed service run", nil)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, seed := range demoAccounts {
		seed := seed
		group.Go(func() error {
			return s.ensureAccount(groupCtx, seed)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return s.ensureDemoTransfer(ctx)
}

func (s *SeedService) ensureAccount(ctx context.Context, seed seedAccount) error {
	_, err := s.accountRepo.ResolveByIdentity(ctx, seed.email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, commons.ErrAccountNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	balance, err := decimal.NewFromString(seed.balance)
	if err != nil {
		return fmt.Errorf("parse seed balance: %w", err)
	}

	created, err := s.accountRepo.Create(ctx, domain.Account{
		FullName:     seed.fullName,
		CPF:          seed.cpf,
		Email:        seed.email,
		Phone:        seed.phone,
		Balance:      balance,
		PasswordHash: string(hash),
	})
	if err != nil {
		return err
	}

	logger.Info("seed service account created", logger.Fields{
		"accountId": created.ID,
		"email":     created.Email,
	})
	return nil
}

func (s *SeedService) ensureDemoTransfer(ctx context.Context) error {
	sender, err := s.accountRepo.ResolveByIdentity(ctx, demoAccounts[0].email)
	if err != nil {
		return err
	}
	receiver, err := s.accountRepo.ResolveByIdentity(ctx, demoAccounts[1].email)
	if err != nil {
		return err
	}

	amount := decimal.RequireFromString("350.00")
	since := time.Now().UTC().Add(-365 * 24 * time.Hour)
	if _, err := s.ledgerRepo.FindRecentTransfer(ctx, sender.ID, receiver.ID, amount, since); err == nil {
		return nil
	} else if !errors.Is(err, commons.ErrRecordNotFound) {
		return err
	}

	record, err := s.ledgerRepo.PostTransfer(ctx, sender.ID, receiver.ID, amount)
	if err != nil {
		return err
	}

	logger.Info("seed service demo transfer created", logger.Fields{
		"transactionId": record.ID,
		"senderId":      sender.ID,
		"receiverId":    receiver.ID,
	})
	return nil
}
