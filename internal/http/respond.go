package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// apiResponse is the envelope every API endpoint answers with.
type apiResponse struct {
	Result  string `json:"result"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Result: "success", Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Result: "error", Message: message})
}

// yearMonthParams reads year and month query parameters, defaulting to
// the current month and rejecting months outside 1..12.
func yearMonthParams(r *http.Request, now time.Time) (int, int, bool) {
	year := now.Year()
	month := int(now.Month())
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		month = m
	}
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// intParam reads one integer query parameter, using def when absent.
func intParam(r *http.Request, name string, def int) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// thresholdParam reads the anomaly threshold query parameter. Zero means
// unset and lets the engine default apply.
func thresholdParam(r *http.Request) (float64, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("threshold"))
	if v == "" {
		return 0, true
	}
	t, err := strconv.ParseFloat(v, 64)
	if err != nil || t < 0 {
		return 0, false
	}
	return t, true
}
