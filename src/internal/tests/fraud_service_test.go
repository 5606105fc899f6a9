package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/domain"
)

func TestFraudServiceAlertsOnReverseTransferOfSameAmount(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Isabella Almeida Soares", "111", "isabella@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Ana da Silva", "222", "ana@example.com", "1192", "0.00")

	if _, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("300.00")); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	// B is now about to send the same amount back to A as a fresh transfer.
	check, err := env.fraud.CheckAlert(context.Background(), b.ID, a.ID, dec("300.00"))
	if err != nil {
		t.Fatalf("check alert failed: %v", err)
	}
	if !check.Alert {
		t.Fatal("expected an alert for a same-amount reverse transfer")
	}
	if !strings.Contains(check.Message, "Isabella Almeida Soares") {
		t.Errorf("expected message to name the counterparty, got %q", check.Message)
	}
	if !strings.Contains(check.Message, "300.00") {
		t.Errorf("expected message to include the earlier amount, got %q", check.Message)
	}
}

func TestFraudServiceNoAlertForUnrelatedAmount(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Isabella Almeida Soares", "111", "isabella@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Ana da Silva", "222", "ana@example.com", "1192", "0.00")

	if _, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("300.00")); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	check, err := env.fraud.CheckAlert(context.Background(), b.ID, a.ID, dec("299.00"))
	if err != nil {
		t.Fatalf("check alert failed: %v", err)
	}
	if check.Alert {
		t.Error("expected no alert for a different amount")
	}
}

func TestFraudServiceNoAlertForSameDirection(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Isabella Almeida Soares", "111", "isabella@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Ana da Silva", "222", "ana@example.com", "1192", "0.00")

	if _, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("300.00")); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	// A sending to B again is not the scam pattern.
	check, err := env.fraud.CheckAlert(context.Background(), a.ID, b.ID, dec("300.00"))
	if err != nil {
		t.Fatalf("check alert failed: %v", err)
	}
	if check.Alert {
		t.Error("expected no alert for a same-direction transfer")
	}
}

func TestFraudServiceNoAlertAfterWindowElapses(t *testing.T) {
	env := newTestEnv(10 * time.Millisecond)
	a := env.mustCreateAccount(t, "Isabella Almeida Soares", "111", "isabella@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Ana da Silva", "222", "ana@example.com", "1192", "0.00")

	if _, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("300.00")); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	check, err := env.fraud.CheckAlert(context.Background(), b.ID, a.ID, dec("300.00"))
	if err != nil {
		t.Fatalf("check alert failed: %v", err)
	}
	if check.Alert {
		t.Error("expected no alert once the window elapsed")
	}
}

func TestFraudServicePersistsRaisedAlert(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Isabella Almeida Soares", "111", "isabella@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Ana da Silva", "222", "ana@example.com", "1192", "0.00")

	original, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("300.00"))
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if _, err := env.fraud.CheckAlert(context.Background(), b.ID, a.ID, dec("300.00")); err != nil {
		t.Fatalf("check alert failed: %v", err)
	}

	alerts, err := env.alerts.ListForAccount(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 persisted alert, got %d", len(alerts))
	}
	if alerts[0].TransactionID != original.ID {
		t.Errorf("expected alert to reference transaction %d, got %d", original.ID, alerts[0].TransactionID)
	}
	if alerts[0].AlertType != domain.AlertTypePossibleRefundScam {
		t.Errorf("unexpected alert type %q", alerts[0].AlertType)
	}
	if alerts[0].Resolved {
		t.Error("expected alert to start unresolved")
	}
}

func TestFraudServiceAlertDoesNotBlockTransfer(t *testing.T) {
	env := newTestEnv(7 * 24 * time.Hour)
	a := env.mustCreateAccount(t, "Isabella Almeida Soares", "111", "isabella@example.com", "1191", "1000.00")
	b := env.mustCreateAccount(t, "Ana da Silva", "222", "ana@example.com", "1192", "0.00")

	if _, err := env.transfers.Execute(context.Background(), a.ID, b.ID, dec("300.00")); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	check, err := env.fraud.CheckAlert(context.Background(), b.ID, a.ID, dec("300.00"))
	if err != nil {
		t.Fatalf("check alert failed: %v", err)
	}
	if !check.Alert {
		t.Fatal("expected an alert")
	}

	// The caller may still choose to proceed.
	if _, err := env.transfers.Execute(context.Background(), b.ID, a.ID, dec("300.00")); err != nil {
		t.Fatalf("transfer after alert failed: %v", err)
	}
}
