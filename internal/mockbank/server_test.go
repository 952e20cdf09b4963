package mockbank

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"finsync/internal/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandler_ServesEnvelope(t *testing.T) {
	ts := httptest.NewServer(Handler(discardLogger()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/shinhan_card/transactions?from_date=2023-04-01&to_date=2023-06-30")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.RspCode != "00000" {
		t.Errorf("rsp_code = %q, want 00000", env.RspCode)
	}
	if len(env.Data) == 0 {
		t.Fatal("expected transactions in the range")
	}
	for _, tx := range env.Data {
		if tx.Source != "shinhan_card" {
			t.Errorf("Source = %q, want shinhan_card", tx.Source)
		}
		if tx.TranDtime < "2023-04-01" || tx.TranDtime > "2023-07-01" {
			t.Errorf("transaction %s outside requested range", tx.TranDtime)
		}
	}
}

func TestHandler_InvalidDates(t *testing.T) {
	ts := httptest.NewServer(Handler(discardLogger()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/kb_bank/transactions?from_date=bad&to_date=2023-06-30")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.RspCode == "00000" {
		t.Error("malformed from_date should not succeed")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	from, to := mustDate(t, "2023-01-01"), mustDate(t, "2023-03-31")

	first := generate("shinhan_card", from, to)
	for i := 0; i < 5; i++ {
		if again := generate("shinhan_card", from, to); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed from first run", i)
		}
	}

	// Five fixtures, three full months each.
	if len(first) != 15 {
		t.Errorf("generated %d transactions, want 15", len(first))
	}
}

func TestGenerate_RespectsRange(t *testing.T) {
	// Only the day-25 salary and day-20 gas fall inside Jan 18..28.
	from, to := mustDate(t, "2023-01-18"), mustDate(t, "2023-01-28")
	got := generate("kb_bank", from, to)
	if len(got) != 2 {
		t.Fatalf("generated %d transactions, want 2: %+v", len(got), got)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(core.DateLayout, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
