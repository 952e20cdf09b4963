// Package mockbank serves deterministic institution endpoints for local
// development. Each endpoint speaks the same envelope the real
// institution APIs do, so the feed clients need no special casing.
package mockbank

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"finsync/internal/core"
)

type envelope struct {
	RspCode string             `json:"rsp_code"`
	RspMsg  string             `json:"rsp_msg"`
	Data    []core.Transaction `json:"data"`
}

// fixture describes one repeating charge emitted on a fixed day of every
// month inside the requested range.
type fixture struct {
	merchant string
	day      int
	amount   int64
	category string
	tranType string
}

var fixturesByInstitution = map[string][]fixture{
	"kb_bank": {
		{merchant: "Monthly Salary", day: 25, amount: 3_200_000, category: "income", tranType: "income"},
		{merchant: "Apartment Rent", day: 1, amount: -650_000, category: "housing", tranType: "expense"},
		{merchant: "KB Insurance", day: 15, amount: -89_000, category: "insurance", tranType: "expense"},
		{merchant: "City Gas", day: 20, amount: -42_500, category: "utilities", tranType: "expense"},
	},
	"shinhan_card": {
		{merchant: "Netflix", day: 5, amount: -17_000, category: "subscription", tranType: "expense"},
		{merchant: "Spotify", day: 8, amount: -10_900, category: "subscription", tranType: "expense"},
		{merchant: "Fitness Club", day: 3, amount: -99_000, category: "health", tranType: "expense"},
		{merchant: "Mobile Plan", day: 12, amount: -55_000, category: "utilities", tranType: "expense"},
		{merchant: "GS25", day: 18, amount: -8_700, category: "", tranType: "expense"},
	},
	"shinhan_invest": {
		{merchant: "Index Fund Auto Buy", day: 10, amount: -300_000, category: "investment", tranType: "expense"},
		{merchant: "Dividend Payout", day: 28, amount: 12_400, category: "income", tranType: "income"},
	},
}

// Handler returns the mock institution mux. Paths mirror the real
// institution transaction endpoints.
func Handler(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mockbank")

	mux := http.NewServeMux()
	for name := range fixturesByInstitution {
		inst := name
		mux.HandleFunc("GET /"+inst+"/transactions", func(w http.ResponseWriter, r *http.Request) {
			serveTransactions(w, r, inst, logger)
		})
	}
	return mux
}

func serveTransactions(w http.ResponseWriter, r *http.Request, institution string, logger *slog.Logger) {
	from, err := time.Parse(core.DateLayout, r.URL.Query().Get("from_date"))
	if err != nil {
		writeEnvelope(w, envelope{RspCode: "40001", RspMsg: "invalid from_date"})
		return
	}
	to, err := time.Parse(core.DateLayout, r.URL.Query().Get("to_date"))
	if err != nil {
		writeEnvelope(w, envelope{RspCode: "40001", RspMsg: "invalid to_date"})
		return
	}

	txs := generate(institution, from, to)
	logger.InfoContext(r.Context(), "Serving mock transactions",
		"institution", institution, "count", len(txs))
	writeEnvelope(w, envelope{RspCode: "00000", RspMsg: "success", Data: txs})
}

// generate emits each fixture once per month whose scheduled day falls
// inside [from, to]. Output order is stable for a given range.
func generate(institution string, from, to time.Time) []core.Transaction {
	fixtures := fixturesByInstitution[institution]
	txs := make([]core.Transaction, 0, len(fixtures)*4)

	month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !month.After(to) {
		for _, f := range fixtures {
			day := time.Date(month.Year(), month.Month(), f.day, 9, 0, 0, 0, time.UTC)
			if day.Before(from) || day.After(to.AddDate(0, 0, 1)) {
				continue
			}
			txs = append(txs, core.Transaction{
				TranDtime:    day.Format("2006-01-02T15:04:05"),
				Amount:       f.amount,
				CurrencyCode: "KRW",
				MerchantName: f.merchant,
				TranType:     f.tranType,
				CategoryCode: f.category,
				Source:       institution,
			})
		}
		month = month.AddDate(0, 1, 0)
	}
	return txs
}

func writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(env)
}
