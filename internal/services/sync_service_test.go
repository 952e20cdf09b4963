package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsync/internal/core"
)

type fakeFetcher struct {
	txs []core.Transaction
	err error
}

func (f *fakeFetcher) FetchAll(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	return f.txs, f.err
}

type fakeStore struct {
	saved    []core.Transaction
	username string
	err      error
}

func (s *fakeStore) SaveTransactions(ctx context.Context, username string, txs []core.Transaction) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.username = username
	s.saved = txs
	return len(txs), nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishAnalysisRequest(ctx context.Context, username string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, username)
	return "req-1", nil
}

func TestSyncService_Sync(t *testing.T) {
	txs := []core.Transaction{
		{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix", Source: "shinhan_card"},
		{TranDtime: "2023-06-01T08:00:00", Amount: -650000, MerchantName: "Apartment Rent", Source: "kb_bank"},
	}
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewSyncService(&fakeFetcher{txs: txs}, store, pub, discardLogger())

	result, err := svc.Sync(context.Background(), "alice", 3)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Fetched != 2 || result.Saved != 2 {
		t.Errorf("result = %+v, want fetched 2 / saved 2", result)
	}
	if result.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", result.RequestID)
	}
	if store.username != "alice" {
		t.Errorf("saved under username %q, want alice", store.username)
	}
	if len(pub.published) != 1 || pub.published[0] != "alice" {
		t.Errorf("published requests = %v, want [alice]", pub.published)
	}
}

func TestSyncService_EmptyUsername(t *testing.T) {
	svc := NewSyncService(&fakeFetcher{}, &fakeStore{}, nil, discardLogger())
	if _, err := svc.Sync(context.Background(), "", 3); !errors.Is(err, core.ErrEmptyUsername) {
		t.Errorf("error = %v, want ErrEmptyUsername", err)
	}
}

func TestSyncService_FetchErrorFailsSync(t *testing.T) {
	fetchErr := errors.New("kb_bank responded 50001")
	svc := NewSyncService(&fakeFetcher{err: fetchErr}, &fakeStore{}, nil, discardLogger())

	if _, err := svc.Sync(context.Background(), "alice", 3); !errors.Is(err, fetchErr) {
		t.Errorf("error = %v, want wrapped %v", err, fetchErr)
	}
}

func TestSyncService_PublishFailureDoesNotFailSync(t *testing.T) {
	txs := []core.Transaction{{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix"}}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewSyncService(&fakeFetcher{txs: txs}, &fakeStore{}, pub, discardLogger())

	result, err := svc.Sync(context.Background(), "alice", 3)
	if err != nil {
		t.Fatalf("Sync() error = %v, want nil when only the publish fails", err)
	}
	if result.RequestID != "" {
		t.Errorf("RequestID = %q, want empty after failed publish", result.RequestID)
	}
}

func TestSyncService_NilPublisher(t *testing.T) {
	txs := []core.Transaction{{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix"}}
	svc := NewSyncService(&fakeFetcher{txs: txs}, &fakeStore{}, nil, discardLogger())

	result, err := svc.Sync(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.RequestID != "" {
		t.Errorf("RequestID = %q, want empty without a publisher", result.RequestID)
	}
}
