package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

func seedAccounts(t *testing.T, accounts *AccountRepository, balances ...string) []domain.Account {
	t.Helper()

	out := make([]domain.Account, 0, len(balances))
	for i, balance := range balances {
		account, err := accounts.Create(context.Background(), domain.Account{
			FullName: "Account",
			CPF:      string(rune('a' + i)),
			Email:    string(rune('a'+i)) + "@example.com",
			Phone:    string(rune('0' + i)),
			Balance:  decimal.RequireFromString(balance),
		})
		if err != nil {
			t.Fatalf("create account: %v", err)
		}
		out = append(out, account)
	}
	return out
}

func TestLedgerRepositoryAssignsMonotonicIDs(t *testing.T) {
	accounts := NewAccountRepository()
	ledger := NewLedgerRepository(accounts)
	accs := seedAccounts(t, accounts, "1000.00", "0.00")

	var lastID int64
	for i := 0; i < 5; i++ {
		record, err := ledger.PostTransfer(context.Background(), accs[0].ID, accs[1].ID, decimal.RequireFromString("1.00"))
		if err != nil {
			t.Fatalf("post transfer %d: %v", i, err)
		}
		if record.ID <= lastID {
			t.Fatalf("expected monotonic ids, got %d after %d", record.ID, lastID)
		}
		lastID = record.ID
	}
}

func TestLedgerRepositoryMarkSupersededIsOneWay(t *testing.T) {
	accounts := NewAccountRepository()
	ledger := NewLedgerRepository(accounts)
	accs := seedAccounts(t, accounts, "1000.00", "0.00")

	record, err := ledger.PostTransfer(context.Background(), accs[0].ID, accs[1].ID, decimal.RequireFromString("10.00"))
	if err != nil {
		t.Fatalf("post transfer: %v", err)
	}

	if err := ledger.MarkSuperseded(context.Background(), record.ID); err != nil {
		t.Fatalf("mark superseded: %v", err)
	}
	if err := ledger.MarkSuperseded(context.Background(), record.ID); !errors.Is(err, commons.ErrAlreadyRefunded) {
		t.Errorf("second supersede: expected ErrAlreadyRefunded, got %v", err)
	}
	if err := ledger.MarkSuperseded(context.Background(), 999); !errors.Is(err, commons.ErrTransactionNotFound) {
		t.Errorf("missing record: expected ErrTransactionNotFound, got %v", err)
	}
}

func TestLedgerRepositoryFindRecentTransferReturnsMostRecent(t *testing.T) {
	accounts := NewAccountRepository()
	ledger := NewLedgerRepository(accounts)
	accs := seedAccounts(t, accounts, "1000.00", "0.00")

	amount := decimal.RequireFromString("25.00")
	if _, err := ledger.PostTransfer(context.Background(), accs[0].ID, accs[1].ID, amount); err != nil {
		t.Fatalf("post transfer: %v", err)
	}
	second, err := ledger.PostTransfer(context.Background(), accs[0].ID, accs[1].ID, amount)
	if err != nil {
		t.Fatalf("post transfer: %v", err)
	}

	since := time.Now().UTC().Add(-time.Hour)
	found, err := ledger.FindRecentTransfer(context.Background(), accs[0].ID, accs[1].ID, amount, since)
	if err != nil {
		t.Fatalf("find recent transfer: %v", err)
	}
	if found.ID != second.ID {
		t.Errorf("expected most recent record %d, got %d", second.ID, found.ID)
	}

	if _, err := ledger.FindRecentTransfer(context.Background(), accs[1].ID, accs[0].ID, amount, since); !errors.Is(err, commons.ErrRecordNotFound) {
		t.Errorf("reverse pair: expected ErrRecordNotFound, got %v", err)
	}
}

func TestLedgerRepositoryPostTransferRollsNothingOnFailure(t *testing.T) {
	accounts := NewAccountRepository()
	ledger := NewLedgerRepository(accounts)
	accs := seedAccounts(t, accounts, "50.00", "0.00")

	_, err := ledger.PostTransfer(context.Background(), accs[0].ID, accs[1].ID, decimal.RequireFromString("60.00"))
	if !errors.Is(err, commons.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	sender, err := accounts.GetByID(context.Background(), accs[0].ID)
	if err != nil {
		t.Fatalf("get sender: %v", err)
	}
	if !sender.Balance.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("expected sender balance unchanged, got %s", sender.Balance)
	}

	records, err := ledger.ListForAccount(context.Background(), accs[0].ID, 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestLedgerRepositoryListForAccountLimit(t *testing.T) {
	accounts := NewAccountRepository()
	ledger := NewLedgerRepository(accounts)
	accs := seedAccounts(t, accounts, "1000.00", "0.00")

	for i := 0; i < 4; i++ {
		if _, err := ledger.PostTransfer(context.Background(), accs[0].ID, accs[1].ID, decimal.RequireFromString("1.00")); err != nil {
			t.Fatalf("post transfer %d: %v", i, err)
		}
	}

	records, err := ledger.ListForAccount(context.Background(), accs[0].ID, 2)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID < records[1].ID {
		t.Error("expected newest record first")
	}
}
