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
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const transactionColumns = `id, reference, sender_id, receiver_id, amount, kind, status, created_at`

// PostTransfer debits the sender, credits the receiver and appends the
// TRANSFER record in one database transaction. Both account rows are locked
// in ascending id order before any balance is read.
func (r *LedgerRepository) PostTransfer(ctx context.Context, senderID int64, receiverID int64, amount decimal.Decimal) (domain.Transaction, error) {
	logger.Info("ledger repository post transfer", logger.Fields{
		"senderId":   senderID,
		"receiverId": receiverID,
		"amount":     amount.StringFixed(2),
	})

	var posted domain.Transaction
	err := r.withRetryOnUniqueViolation(func() error {
		return r.inTx(ctx, func(tx *sql.Tx) error {
			if err := lockAccounts(ctx, tx, senderID, receiverID); err != nil {
				return err
			}
			if err := moveFunds(ctx, tx, senderID, receiverID, amount); err != nil {
				return err
			}

			record, err := insertTransaction(ctx, tx, domain.Transaction{
				Reference:  uuid.NewString(),
				SenderID:   senderID,
				ReceiverID: receiverID,
				Amount:     amount,
				Kind:       domain.TransactionKindTransfer,
				Status:     domain.TransactionStatusCompleted,
			})
			if err != nil {
				return err
			}

			posted = record
			return nil
		})
	})
	if err != nil {
		logger.Error("ledger repository post transfer failed", err, logger.Fields{
			"senderId":   senderID,
			"receiverId": receiverID,
		})
		return domain.Transaction{}, err
	}

	logger.Info("ledger repository post transfer success", logger.Fields{
		"transactionId": posted.ID,
		"reference":     posted.Reference,
	})
	return posted, nil
}

// PostRefund moves original.Amount back from the requester to the original
// sender, appends the REFUND record and supersedes the original, all in one
// database transaction. The refund-uniqueness check runs again inside the
// transaction so two concurrent attempts cannot both pass it.
func (r *LedgerRepository) PostRefund(ctx context.Context, original domain.Transaction, requesterID int64) (domain.Transaction, error) {
	logger.Info("ledger repository post refund", logger.Fields{
		"originalTransactionId": original.ID,
		"requesterId":           requesterID,
	})

	var posted domain.Transaction
	err := r.withRetryOnUniqueViolation(func() error {
		return r.inTx(ctx, func(tx *sql.Tx) error {
			if err := lockAccounts(ctx, tx, requesterID, original.SenderID); err != nil {
				return err
			}

			var status domain.TransactionStatus
			err := tx.QueryRowContext(ctx,
				`SELECT status FROM transactions WHERE id = $1 AND kind = 'TRANSFER' FOR UPDATE`,
				original.ID,
			).Scan(&status)
			if errors.Is(err, sql.ErrNoRows) {
				return commons.ErrTransactionNotFound
			}
			if err != nil {
				return fmt.Errorf("lock original transaction: %w", err)
			}
			if status != domain.TransactionStatusCompleted {
				return commons.ErrAlreadyRefunded
			}

			exists, err := refundExists(ctx, tx, original)
			if err != nil {
				return err
			}
			if exists {
				return commons.ErrAlreadyRefunded
			}

			if err := moveFunds(ctx, tx, requesterID, original.SenderID, original.Amount); err != nil {
				return err
			}

			record, err := insertTransaction(ctx, tx, domain.Transaction{
				Reference:  uuid.NewString(),
				SenderID:   requesterID,
				ReceiverID: original.SenderID,
				Amount:     original.Amount,
				Kind:       domain.TransactionKindRefund,
				Status:     domain.TransactionStatusCompleted,
			})
			if err != nil {
				return err
			}

			if err := supersede(ctx, tx, original.ID); err != nil {
				return err
			}

			posted = record
			return nil
		})
	})
	if err != nil {
		logger.Error("ledger repository post refund failed", err, logger.Fields{
			"originalTransactionId": original.ID,
			"requesterId":           requesterID,
		})
		return domain.Transaction{}, err
	}

	logger.Info("ledger repository post refund success", logger.Fields{
		"transactionId":         posted.ID,
		"originalTransactionId": original.ID,
	})
	return posted, nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, id int64) (domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	record, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, commons.ErrTransactionNotFound
		}
		logger.Error("ledger repository get failed", err, logger.Fields{
			"transactionId": id,
		})
		return domain.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}

	return record, nil
}

func (r *LedgerRepository) MarkSuperseded(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := supersede(ctx, tx, id); err != nil {
			if errors.Is(err, commons.ErrAlreadyRefunded) {
				var exists bool
				if checkErr := tx.QueryRowContext(ctx,
					`SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id,
				).Scan(&exists); checkErr != nil {
					return fmt.Errorf("check transaction existence: %w", checkErr)
				}
				if !exists {
					return commons.ErrTransactionNotFound
				}
			}
			return err
		}
		return nil
	})
}

func (r *LedgerRepository) FindRecentTransfer(ctx context.Context, senderID int64, receiverID int64, amount decimal.Decimal, since time.Time) (domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE sender_id = $1
  AND receiver_id = $2
  AND amount = $3::numeric
  AND kind = 'TRANSFER'
  AND status = 'COMPLETED'
  AND created_at >= $4
ORDER BY created_at DESC, id DESC
LIMIT 1`

	record, err := scanTransaction(r.db.QueryRowContext(ctx, query, senderID, receiverID, amount.StringFixed(2), since))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, commons.ErrRecordNotFound
		}
		logger.Error("ledger repository find recent transfer failed", err, logger.Fields{
			"senderId":   senderID,
			"receiverId": receiverID,
		})
		return domain.Transaction{}, fmt.Errorf("find recent transfer: %w", err)
	}

	return record, nil
}

func (r *LedgerRepository) FindRefundOf(ctx context.Context, original domain.Transaction) (domain.Transaction, error) {
	record, err := scanTransaction(r.db.QueryRowContext(ctx, findRefundOfQuery,
		original.ReceiverID,
		original.SenderID,
		original.Amount.StringFixed(2),
		original.CreatedAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, commons.ErrRecordNotFound
		}
		logger.Error("ledger repository find refund of failed", err, logger.Fields{
			"originalTransactionId": original.ID,
		})
		return domain.Transaction{}, fmt.Errorf("find refund of transaction: %w", err)
	}

	return record, nil
}

func (r *LedgerRepository) ListForAccount(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE sender_id = $1 OR receiver_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		logger.Error("ledger repository list for account failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("list transactions for account: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return records, nil
}

const findRefundOfQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE sender_id = $1
  AND receiver_id = $2
  AND amount = $3::numeric
  AND kind = 'REFUND'
  AND created_at > $4
LIMIT 1`

func (r *LedgerRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	return nil
}

// lockAccounts takes row locks on both accounts in ascending id order so two
// opposite-direction postings on the same pair cannot deadlock.
func lockAccounts(ctx context.Context, tx *sql.Tx, a, b int64) error {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	for _, id := range []int64{first, second} {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return commons.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("lock account %d: %w", id, err)
		}
	}
	return nil
}

func moveFunds(ctx context.Context, tx *sql.Tx, fromID, toID int64, amount decimal.Decimal) error {
	const debitQuery = `
UPDATE accounts
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE id = $1
  AND balance >= $2::numeric`

	result, err := tx.ExecContext(ctx, debitQuery, fromID, amount.StringFixed(2))
	if err != nil {
		return fmt.Errorf("debit account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit account rows affected: %w", err)
	}
	if rows == 0 {
		return commons.ErrInsufficientBalance
	}

	const creditQuery = `
UPDATE accounts
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1`

	result, err = tx.ExecContext(ctx, creditQuery, toID, amount.StringFixed(2))
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	rows, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit account rows affected: %w", err)
	}
	if rows == 0 {
		return commons.ErrAccountNotFound
	}

	return nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, record domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (
	reference,
	sender_id,
	receiver_id,
	amount,
	kind,
	status
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`

	if err := tx.QueryRowContext(
		ctx,
		query,
		record.Reference,
		record.SenderID,
		record.ReceiverID,
		record.Amount.StringFixed(2),
		record.Kind,
		record.Status,
	).Scan(&record.ID, &record.CreatedAt); err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return record, nil
}

func refundExists(ctx context.Context, tx *sql.Tx, original domain.Transaction) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1
	FROM transactions
	WHERE sender_id = $1
	  AND receiver_id = $2
	  AND amount = $3::numeric
	  AND kind = 'REFUND'
	  AND created_at > $4
)`

	var exists bool
	if err := tx.QueryRowContext(ctx, query,
		original.ReceiverID,
		original.SenderID,
		original.Amount.StringFixed(2),
		original.CreatedAt,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check existing refund: %w", err)
	}
	return exists, nil
}

// supersede is the one-way COMPLETED -> SUPERSEDED transition. Zero affected
// rows means the record is not a completed transfer anymore.
func supersede(ctx context.Context, tx *sql.Tx, id int64) error {
	const query = `
UPDATE transactions
SET status = 'SUPERSEDED'
WHERE id = $1
  AND kind = 'TRANSFER'
  AND status = 'COMPLETED'`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("supersede transaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("supersede transaction rows affected: %w", err)
	}
	if rows == 0 {
		return commons.ErrAlreadyRefunded
	}
	return nil
}

func (r *LedgerRepository) withRetryOnUniqueViolation(fn func() error) error {
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		err = fn()
		if err == nil || !isUniqueViolation(err) {
			return err
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var record domain.Transaction
	var amount string

	if err := row.Scan(
		&record.ID,
		&record.Reference,
		&record.SenderID,
		&record.ReceiverID,
		&amount,
		&record.Kind,
		&record.Status,
		&record.CreatedAt,
	); err != nil {
		return domain.Transaction{}, err
	}

	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse transaction amount: %w", err)
	}
	record.Amount = parsed

	return record, nil
}
