package domain

// StatementEntry annotates a ledger record with the counterparty and the
// direction as seen by the account the statement was requested for.
type StatementEntry struct {
	Transaction      Transaction
	CounterpartyID   int64
	CounterpartyName string
	Sent             bool
}
