package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a retail account in the closed ledger. CPF, email and phone are
// identity keys: each is unique and any one of them resolves the account.
type Account struct {
	ID           int64
	FullName     string
	CPF          string
	Email        string
	Phone        string
	Balance      decimal.Decimal
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
