package domain

import "time"

const AlertTypePossibleRefundScam = "possible_refund_scam"

// FraudAlert is the persisted trace of an advisory alert raised before a
// transfer was confirmed. AccountID is the prospective sender who was warned,
// TransactionID the earlier reverse-direction transfer that triggered it.
type FraudAlert struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	AlertType     string
	Details       string
	Resolved      bool
	CreatedAt     time.Time
}

// FraudCheck is the advisory result returned to the caller. It never blocks
// the transfer.
type FraudCheck struct {
	Alert   bool
	Message string
}
