package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finsync/internal/core"
)

// Aggregator fetches from every configured institution in parallel and
// merges the results. A failing institution fails the whole fetch: a
// partially aggregated history would silently skew every downstream
// analysis.
type Aggregator struct {
	clients []*Client
	logger  *slog.Logger
}

// NewAggregator creates an aggregator over the given institution clients.
func NewAggregator(clients []*Client, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		clients: clients,
		logger:  logger.With("component", "feed"),
	}
}

// FetchAll retrieves the transactions of every institution for the date
// range, concurrently. The merged order is institution order, then the
// institution's own order.
func (a *Aggregator) FetchAll(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	if to.Before(from) {
		return nil, core.ErrInvalidRange
	}

	results := make([][]core.Transaction, len(a.clients))
	g, ctx := errgroup.WithContext(ctx)
	for i, client := range a.clients {
		g.Go(func() error {
			txs, err := client.Transactions(ctx, from, to)
			if err != nil {
				return fmt.Errorf("institution %s: %w", client.Name(), err)
			}
			a.logger.DebugContext(ctx, "Fetched institution transactions",
				"institution", client.Name(),
				"count", len(txs))
			results[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []core.Transaction
	for _, txs := range results {
		merged = append(merged, txs...)
	}
	a.logger.InfoContext(ctx, "Aggregated institution transactions",
		"institutions", len(a.clients),
		"transactions", len(merged),
		"from", from.Format(core.DateLayout),
		"to", to.Format(core.DateLayout))
	return merged, nil
}
