package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

type testEnv struct {
	accounts   *memory.AccountRepository
	ledger     *memory.LedgerRepository
	alerts     *memory.FraudAlertRepository
	transfers  *services.TransferService
	refunds    *services.RefundService
	fraud      *services.FraudService
	statements *services.StatementService
	accountSvc *services.AccountService
}

func newTestEnv(window time.Duration) *testEnv {
	accounts := memory.NewAccountRepository()
	ledger := memory.NewLedgerRepository(accounts)
	alerts := memory.NewFraudAlertRepository()

	return &testEnv{
		accounts:   accounts,
		ledger:     ledger,
		alerts:     alerts,
		transfers:  services.NewTransferService(accounts, ledger),
		refunds:    services.NewRefundService(accounts, ledger),
		fraud:      services.NewFraudService(accounts, ledger, alerts, window),
		statements: services.NewStatementService(accounts, ledger),
		accountSvc: services.NewAccountService(accounts),
	}
}

func (e *testEnv) mustCreateAccount(t *testing.T, fullName, cpf, email, phone, balance string) domain.Account {
	t.Helper()

	account, err := e.accounts.Create(context.Background(), domain.Account{
		FullName:     fullName,
		CPF:          cpf,
		Email:        email,
		Phone:        phone,
		Balance:      decimal.RequireFromString(balance),
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create account %s: %v", fullName, err)
	}
	return account
}

func (e *testEnv) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()

	account, err := e.accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %d: %v", id, err)
	}
	return account.Balance
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransferServiceMovesFundsAndAppendsRecord(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Ana da Silva", "111", "ana@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Joao Pedro Santos", "222", "joao@example.com", "1192", "0.00")

	record, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("300.00"))
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if record.Kind != domain.TransactionKindTransfer {
		t.Errorf("expected kind TRANSFER, got %s", record.Kind)
	}
	if record.Status != domain.TransactionStatusCompleted {
		t.Errorf("expected status COMPLETED, got %s", record.Status)
	}
	if record.SenderID != a.ID || record.ReceiverID != b.ID {
		t.Errorf("unexpected record parties: sender=%d receiver=%d", record.SenderID, record.ReceiverID)
	}
	if record.Reference == "" {
		t.Error("expected a non-empty transaction reference")
	}

	if got := env.balance(t, a.ID); !got.Equal(dec("700.00")) {
		t.Errorf("expected sender balance 700.00, got %s", got)
	}
	if got := env.balance(t, b.ID); !got.Equal(dec("300.00")) {
		t.Errorf("expected receiver balance 300.00, got %s", got)
	}
}

func TestTransferServiceConservesTotalBalance(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Ana da Silva", "111", "ana@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Joao Pedro Santos", "222", "joao@example.com", "1192", "450.00")

	before := env.balance(t, a.ID).Add(env.balance(t, b.ID))

	if _, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("123.45")); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	after := env.balance(t, a.ID).Add(env.balance(t, b.ID))
	if !before.Equal(after) {
		t.Errorf("total balance changed: before=%s after=%s", before, after)
	}
}

func TestTransferServiceRejectsSelfTransfer(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Ana da Silva", "111", "ana@example.com", "1191", "1000.00")

	_, err := env.transfers.Execute(context.Background(), a.ID, a.ID, dec("10.00"))
	if !errors.Is(err, commons.ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}

	if got := env.balance(t, a.ID); !got.Equal(dec("1000.00")) {
		t.Errorf("expected balance unchanged at 1000.00, got %s", got)
	}
}

func TestTransferServiceRejectsNonPositiveAmounts(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Ana da Silva", "111", "ana@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Joao Pedro Santos", "222", "joao@example.com", "1192", "0.00")

	for _, amount := range []string{"0", "-5"} {
		_, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec(amount))
		if !errors.Is(err, commons.ErrInvalidAmount) {
			t.Errorf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	records, err := env.ledger.ListForAccount(context.Background(), a.ID, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no ledger records, got %d", len(records))
	}
}

func TestTransferServiceRejectsInsufficientBalance(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Ana da Silva", "111", "ana@example.com", "1191", "100.00")
	b := env.mustCreateAccount(t, "Joao Pedro Santos", "222", "joao@example.com", "1192", "0.00")

	_, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("100.01"))
	if !errors.Is(err, commons.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if got := env.balance(t, a.ID); !got.Equal(dec("100.00")) {
		t.Errorf("expected sender balance unchanged at 100.00, got %s", got)
	}
	if got := env.balance(t, b.ID); !got.Equal(dec("0.00")) {
		t.Errorf("expected receiver balance unchanged at 0.00, got %s", got)
	}

	records, err := env.ledger.ListForAccount(context.Background(), a.ID, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no ledger records, got %d", len(records))
	}
}

func TestTransferServiceRejectsUnknownAccounts(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Ana da Silva", "111", "ana@example.com", "1191", "1000.00")

	if _, err := env.transfers.Execute(context.Background(), a.ID, 999, dec("10.00")); !errors.Is(err, commons.ErrAccountNotFound) {
		t.Errorf("unknown receiver: expected ErrAccountNotFound, got %v", err)
	}
	if _, err := env.transfers.Execute(context.Background(), 999, a.ID, dec("10.00")); !errors.Is(err, commons.ErrAccountNotFound) {
		t.Errorf("unknown sender: expected ErrAccountNotFound, got %v", err)
	}
}
