package repository

import "context"

// Ledger composes the completed-transition effects into one atomic unit:
// flip the transaction from pending to completed, credit the driver's
// balance and earnings, and increment the stats rollup. Either all three
// apply or none do.
type Ledger interface {
	// Complete applies the completed transition for the transaction,
	// storing receipt, exactly once. Returns whether the transition
	// happened; false without error means the transaction was already
	// terminal and nothing was changed.
	Complete(ctx context.Context, transactionID, receipt string) (bool, error)
}
