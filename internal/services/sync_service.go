package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finsync/internal/core"
	"finsync/internal/feed"
)

// AnalysisRequestPublisher enqueues an analysis request after a sync.
type AnalysisRequestPublisher interface {
	PublishAnalysisRequest(ctx context.Context, username string) (string, error)
}

// InstitutionFetcher pulls transactions from every linked institution.
// Satisfied by the feed aggregator.
type InstitutionFetcher interface {
	FetchAll(ctx context.Context, from, to time.Time) ([]core.Transaction, error)
}

// SyncResult reports what a mydata sync pulled and stored.
type SyncResult struct {
	Username  string `json:"username"`
	Fetched   int    `json:"fetched"`
	Saved     int    `json:"saved"`
	RequestID string `json:"request_id,omitempty"`
}

// SyncService pulls transactions from every linked institution, stores
// them, and queues a background analysis request.
type SyncService struct {
	fetcher   InstitutionFetcher
	store     feed.TransactionStore
	publisher AnalysisRequestPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewSyncService creates the sync service. publisher may be nil when no
// message broker is configured; the sync then stays synchronous.
func NewSyncService(fetcher InstitutionFetcher, store feed.TransactionStore, publisher AnalysisRequestPublisher, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		fetcher:   fetcher,
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "sync"),
		now:       time.Now,
	}
}

// Sync fetches the trailing window of transactions for the user from all
// institutions, persists them, and publishes an analysis request.
func (s *SyncService) Sync(ctx context.Context, username string, windowMonths int) (SyncResult, error) {
	if username == "" {
		return SyncResult{}, core.ErrEmptyUsername
	}
	if windowMonths < 1 {
		windowMonths = 3
	}

	now := s.now()
	from := now.AddDate(0, -windowMonths, 0)
	txs, err := s.fetcher.FetchAll(ctx, from, now)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch institution transactions: %w", err)
	}

	saved, err := s.store.SaveTransactions(ctx, username, txs)
	if err != nil {
		return SyncResult{}, fmt.Errorf("save transactions: %w", err)
	}

	result := SyncResult{Username: username, Fetched: len(txs), Saved: saved}
	if s.publisher != nil {
		requestID, err := s.publisher.PublishAnalysisRequest(ctx, username)
		if err != nil {
			// The sync itself succeeded; a lost analysis request is
			// retried on the next sync.
			s.logger.WarnContext(ctx, "Failed to publish analysis request",
				"username", username, "error", err)
		} else {
			result.RequestID = requestID
		}
	}

	s.logger.InfoContext(ctx, "Sync complete",
		"username", username, "fetched", result.Fetched, "saved", result.Saved)
	return result, nil
}
