package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"finsync/internal/core"
	"finsync/internal/services"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidMonth),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidSpan):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondError(w, status, err.Error())
}

func (s *Server) handleRecurringAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.analysis.RecurringAnalysis(r.Context(), r.PathValue("username"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	prediction, err := s.analysis.Prediction(r.Context(), r.PathValue("username"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.analysis.Categories(r.Context(), r.PathValue("username"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	threshold, ok := thresholdParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "threshold must be a non-negative number")
		return
	}
	report, err := s.analysis.Anomalies(r.Context(), r.PathValue("username"), threshold)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analysis.Summary(r.Context(), r.PathValue("username"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(r, time.Now())
	if !ok {
		respondError(w, http.StatusBadRequest, "year and month must be valid")
		return
	}
	calendar, err := s.analysis.Calendar(r.Context(), r.PathValue("username"), year, month)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, calendar)
}

func (s *Server) handleMonthlyTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(r, time.Now())
	if !ok {
		respondError(w, http.StatusBadRequest, "year and month must be valid")
		return
	}
	grouped, err := s.analysis.MonthlyTransactions(r.Context(), r.PathValue("username"), year, month)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, grouped)
}

func (s *Server) handleDailyTransactions(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = time.Now().Format(core.DateLayout)
	}
	txs, err := s.analysis.DailyTransactions(r.Context(), r.PathValue("username"), date)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleMultiMonthSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	startYear, ok1 := intParam(r, "start_year", now.Year())
	startMonth, ok2 := intParam(r, "start_month", int(now.Month()))
	endYear, ok3 := intParam(r, "end_year", now.Year())
	endMonth, ok4 := intParam(r, "end_month", int(now.Month()))
	if !ok1 || !ok2 || !ok3 || !ok4 {
		respondError(w, http.StatusBadRequest, "start and end year and month must be valid")
		return
	}
	summaries, err := s.analysis.MultiMonthSummary(r.Context(), r.PathValue("username"), startYear, startMonth, endYear, endMonth)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleTransactionPattern(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(r, "months", 0)
	if !ok {
		respondError(w, http.StatusBadRequest, "months must be a number")
		return
	}
	pattern, err := s.analysis.TransactionPattern(r.Context(), r.PathValue("username"), months)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pattern)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(r, time.Now())
	if !ok {
		respondError(w, http.StatusBadRequest, "year and month must be valid")
		return
	}
	summary, err := s.analysis.MonthlySummary(r.Context(), r.PathValue("username"), year, month)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMonthlyStatistics(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(r, time.Now())
	if !ok {
		respondError(w, http.StatusBadRequest, "year and month must be valid")
		return
	}
	stats, err := s.analysis.MonthlyStatistics(r.Context(), r.PathValue("username"), year, month)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		respondError(w, http.StatusServiceUnavailable, "sync is not configured")
		return
	}
	result, err := s.sync.Sync(r.Context(), r.PathValue("username"), 0)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
