package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finsync/internal/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func institutionServer(t *testing.T, rspCode, rspMsg string, txs []core.Transaction) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from_date") == "" || r.URL.Query().Get("to_date") == "" {
			t.Errorf("missing date range query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"rsp_code": rspCode,
			"rsp_msg":  rspMsg,
			"data":     txs,
		})
	}))
}

func TestClient_Transactions(t *testing.T) {
	txs := []core.Transaction{
		{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix"},
	}
	ts := institutionServer(t, "00000", "success", txs)
	defer ts.Close()

	client := NewClient(Institution{Name: "shinhan_card", BaseURL: ts.URL, Path: "/transactions"}, nil)
	got, err := client.Transactions(context.Background(),
		time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}
	if got[0].Source != "shinhan_card" {
		t.Errorf("Source = %q, want shinhan_card", got[0].Source)
	}
}

func TestClient_Transactions_ErrorResponseCode(t *testing.T) {
	ts := institutionServer(t, "50001", "internal error", nil)
	defer ts.Close()

	client := NewClient(Institution{Name: "kb_bank", BaseURL: ts.URL, Path: "/transactions"}, nil)
	_, err := client.Transactions(context.Background(), time.Now().AddDate(0, -3, 0), time.Now())
	if err == nil {
		t.Fatal("expected error for non-success rsp_code")
	}
	if !strings.Contains(err.Error(), "50001") {
		t.Errorf("error %q should mention the response code", err)
	}
}

func TestClient_Transactions_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(Institution{Name: "kb_bank", BaseURL: ts.URL, Path: "/transactions"}, nil)
	_, err := client.Transactions(context.Background(), time.Now().AddDate(0, -3, 0), time.Now())
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestAggregator_FetchAll(t *testing.T) {
	bank := institutionServer(t, "00000", "success", []core.Transaction{
		{TranDtime: "2023-06-01T08:00:00", Amount: -650000, MerchantName: "Apartment Rent"},
	})
	defer bank.Close()
	card := institutionServer(t, "00000", "success", []core.Transaction{
		{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix"},
		{TranDtime: "2023-06-08T10:00:00", Amount: -10900, MerchantName: "Spotify"},
	})
	defer card.Close()

	agg := NewAggregator([]*Client{
		NewClient(Institution{Name: "kb_bank", BaseURL: bank.URL, Path: "/transactions"}, nil),
		NewClient(Institution{Name: "shinhan_card", BaseURL: card.URL, Path: "/transactions"}, nil),
	}, discardLogger())

	got, err := agg.FetchAll(context.Background(),
		time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d transactions, want 3", len(got))
	}
	// Merged in institution order.
	if got[0].Source != "kb_bank" || got[1].Source != "shinhan_card" {
		t.Errorf("merge order = [%s, %s, %s], want bank first", got[0].Source, got[1].Source, got[2].Source)
	}
}

func TestAggregator_OneFailureFailsAll(t *testing.T) {
	ok := institutionServer(t, "00000", "success", []core.Transaction{
		{TranDtime: "2023-06-05T10:00:00", Amount: -17000, MerchantName: "Netflix"},
	})
	defer ok.Close()
	failing := institutionServer(t, "50001", "internal error", nil)
	defer failing.Close()

	agg := NewAggregator([]*Client{
		NewClient(Institution{Name: "shinhan_card", BaseURL: ok.URL, Path: "/transactions"}, nil),
		NewClient(Institution{Name: "kb_bank", BaseURL: failing.URL, Path: "/transactions"}, nil),
	}, discardLogger())

	_, err := agg.FetchAll(context.Background(),
		time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected the whole fetch to fail")
	}
	if !strings.Contains(err.Error(), "kb_bank") {
		t.Errorf("error %q should name the failing institution", err)
	}
}

func TestAggregator_InvalidRange(t *testing.T) {
	agg := NewAggregator(nil, discardLogger())
	_, err := agg.FetchAll(context.Background(),
		time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("error = %v, want ErrInvalidRange", err)
	}
}
