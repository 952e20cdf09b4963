package feed

import (
	"context"
	"time"

	"finsync/internal/core"
)

// TransactionFeed supplies a user's transactions for a closed date range.
type TransactionFeed interface {
	ListTransactions(ctx context.Context, username string, start, end time.Time) ([]core.Transaction, error)
}

// TransactionStore persists fetched transactions.
type TransactionStore interface {
	SaveTransactions(ctx context.Context, username string, txs []core.Transaction) (int, error)
}
