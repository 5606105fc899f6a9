package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
	"github.com/api-sage/pix-ledger/src/internal/logger"
)

type FraudAlertRepository struct {
	db *sql.DB
}

func NewFraudAlertRepository(db *sql.DB) *FraudAlertRepository {
	return &FraudAlertRepository{db: db}
}

func (r *FraudAlertRepository) Create(ctx context.Context, alert domain.FraudAlert) (domain.FraudAlert, error) {
	const query = `
INSERT INTO fraud_alerts (
	transaction_id,
	account_id,
	alert_type,
	details
) VALUES ($1, $2, $3, $4)
RETURNING id, resolved, created_at`

	var id int64
	var resolved bool
	var createdAt time.Time

	if err := r.db.QueryRowContext(
		ctx,
		query,
		alert.TransactionID,
		alert.AccountID,
		alert.AlertType,
		alert.Details,
	).Scan(&id, &resolved, &createdAt); err != nil {
		logger.Error("fraud alert repository create failed", err, logger.Fields{
			"transactionId": alert.TransactionID,
			"accountId":     alert.AccountID,
		})
		return domain.FraudAlert{}, fmt.Errorf("create fraud alert: %w", err)
	}

	alert.ID = id
	alert.Resolved = resolved
	alert.CreatedAt = createdAt

	return alert, nil
}

func (r *FraudAlertRepository) ListForAccount(ctx context.Context, accountID int64) ([]domain.FraudAlert, error) {
	const query = `
SELECT id, transaction_id, account_id, alert_type, details, resolved, created_at
FROM fraud_alerts
WHERE account_id = $1
ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		logger.Error("fraud alert repository list failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("list fraud alerts for account: %w", err)
	}
	defer rows.Close()

	var alerts []domain.FraudAlert
	for rows.Next() {
		var alert domain.FraudAlert
		var details sql.NullString
		if err := rows.Scan(
			&alert.ID,
			&alert.TransactionID,
			&alert.AccountID,
			&alert.AlertType,
			&details,
			&alert.Resolved,
			&alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fraud alert row: %w", err)
		}
		if details.Valid {
			alert.Details = details.String
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraud alert rows: %w", err)
	}

	return alerts, nil
}

func (r *FraudAlertRepository) Resolve(ctx context.Context, id int64) error {
	const query = `
UPDATE fraud_alerts
SET resolved = TRUE
WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("fraud alert repository resolve failed", err, logger.Fields{
			"alertId": id,
		})
		return fmt.Errorf("resolve fraud alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve fraud alert rows affected: %w", err)
	}
	if rows == 0 {
		return commons.ErrRecordNotFound
	}
	return nil
}
