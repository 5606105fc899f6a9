package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"fullName": account.FullName,
		"email":    account.Email,
	})

	const query = `
INSERT INTO accounts (
	full_name,
	cpf,
	email,
	phone,
	balance,
	password_hash
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`

	var id int64
	var createdAt time.Time
	var updatedAt time.Time

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.FullName,
		account.CPF,
		account.Email,
		account.Phone,
		account.Balance.StringFixed(2),
		account.PasswordHash,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		logger.Error("account repository create failed", err, logger.Fields{
			"fullName": account.FullName,
			"email":    account.Email,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	account.ID = id
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	logger.Info("account repository create success", logger.Fields{
		"accountId": account.ID,
	})

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	const query = `
SELECT id, full_name, cpf, email, phone, balance, password_hash, created_at, updated_at
FROM accounts
WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"accountId": id,
			})
			return domain.Account{}, commons.ErrAccountNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"accountId": id,
		})
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) ResolveByIdentity(ctx context.Context, identityKey string) (domain.Account, error) {
	key := strings.TrimSpace(identityKey)
	if key == "" {
		return domain.Account{}, commons.ErrAccountNotFound
	}

	// Identity keys are unique per account, so first match wins.
	const query = `
SELECT id, full_name, cpf, email, phone, balance, password_hash, created_at, updated_at
FROM accounts
WHERE cpf = $1 OR email = $1 OR phone = $1
LIMIT 1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository identity key not found", nil)
			return domain.Account{}, commons.ErrAccountNotFound
		}
		logger.Error("account repository resolve by identity failed", err, nil)
		return domain.Account{}, fmt.Errorf("resolve account by identity: %w", err)
	}

	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	var balance string

	if err := row.Scan(
		&account.ID,
		&account.FullName,
		&account.CPF,
		&account.Email,
		&account.Phone,
		&balance,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}

	parsed, err := decimal.NewFromString(strings.TrimSpace(balance))
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse account balance: %w", err)
	}
	account.Balance = parsed

	return account, nil
}
