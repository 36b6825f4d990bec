package ledger

import "context"

// Slot names in the backing key-value store. Each slot holds one JSON value.
const (
	KeyTransactions   = "transactions"
	KeyInitialBalance = "initialBalance"
	KeyBudget         = "budget"
	KeyCurrency       = "currency"
)

// Store persists raw slot values. Load reports found=false for a missing key.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}
