package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/commons"
	"github.com/api-sage/pix-ledger/src/internal/domain"
)

type FraudAlertRepository struct {
	mu     sync.Mutex
	nextID int64
	alerts []*domain.FraudAlert
}

func NewFraudAlertRepository() *FraudAlertRepository {
	return &FraudAlertRepository{}
}

func (r *FraudAlertRepository) Create(_ context.Context, alert domain.FraudAlert) (domain.FraudAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	alert.ID = r.nextID
	alert.Resolved = false
	alert.CreatedAt = time.Now().UTC()

	stored := alert
	r.alerts = append(r.alerts, &stored)
	return alert, nil
}

func (r *FraudAlertRepository) ListForAccount(_ context.Context, accountID int64) ([]domain.FraudAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.FraudAlert
	for i := len(r.alerts) - 1; i >= 0; i-- {
		if r.alerts[i].AccountID == accountID {
			out = append(out, *r.alerts[i])
		}
	}
	return out, nil
}

func (r *FraudAlertRepository) Resolve(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, alert := range r.alerts {
		if alert.ID == id {
			alert.Resolved = true
			return nil
		}
	}
	return commons.ErrRecordNotFound
}
