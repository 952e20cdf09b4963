package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finsync/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finsync.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_SaveAndList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix", TranType: "expense", CategoryCode: "subscription", Source: "shinhan_card"},
		{TranDtime: "2023-06-01T08:00:00", Amount: -650000, MerchantName: "Apartment Rent", TranType: "expense", Source: "kb_bank"},
		{TranDtime: "2023-05-25T09:00:00", Amount: 3200000, MerchantName: "Employer", TranType: "income", Source: "kb_bank"},
	}
	saved, err := repo.SaveTransactions(ctx, "alice", txs)
	if err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
	if saved != 3 {
		t.Errorf("saved = %d, want 3", saved)
	}

	got, err := repo.ListTransactions(ctx, "alice",
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d transactions, want 2 inside June", len(got))
	}
	// Ordered by datetime.
	if got[0].MerchantName != "Apartment Rent" || got[1].MerchantName != "Netflix" {
		t.Errorf("order = [%s, %s], want rent then Netflix", got[0].MerchantName, got[1].MerchantName)
	}
	if got[1].CurrencyCode != "KRW" {
		t.Errorf("CurrencyCode = %q, want the KRW default", got[1].CurrencyCode)
	}
	if got[1].CategoryCode != "subscription" {
		t.Errorf("CategoryCode = %q, want subscription", got[1].CategoryCode)
	}
}

func TestSQLiteRepository_SkipsMalformedRows(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix"},
		{TranDtime: "garbage", Amount: -5000, MerchantName: "Broken"},
	}
	saved, err := repo.SaveTransactions(ctx, "alice", txs)
	if err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
	if saved != 1 {
		t.Errorf("saved = %d, want 1 (malformed row skipped)", saved)
	}

	count, err := repo.CountTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("CountTransactions() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSQLiteRepository_Validation(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.SaveTransactions(ctx, "  ", nil); !errors.Is(err, core.ErrEmptyUsername) {
		t.Errorf("SaveTransactions error = %v, want ErrEmptyUsername", err)
	}
	if _, err := repo.ListTransactions(ctx, "", time.Now(), time.Now()); !errors.Is(err, core.ErrEmptyUsername) {
		t.Errorf("ListTransactions error = %v, want ErrEmptyUsername", err)
	}
	if _, err := repo.ListTransactions(ctx, "alice", time.Now(), time.Now().AddDate(0, 0, -1)); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("ListTransactions error = %v, want ErrInvalidRange", err)
	}
}

func TestSQLiteRepository_IsolatesUsers(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.SaveTransactions(ctx, "alice", []core.Transaction{
		{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix"},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListTransactions(ctx, "bob",
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("bob sees %d of alice's transactions, want 0", len(got))
	}
}
