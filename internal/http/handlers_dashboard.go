package http

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartbills/internal/core"
)

type summaryResponse struct {
	Today        string                 `json:"today"`
	TotalMonthly float64                `json:"total_monthly"`
	PerCategory  map[string]float64     `json:"per_category"`
	Upcoming     []subscriptionResponse `json:"upcoming"`
}

type budgetResponse struct {
	TotalMonthly float64 `json:"total_monthly"`
	Ceiling      float64 `json:"ceiling"`
	// UsagePercent is null when the ceiling is zero but spend is not:
	// usage is unbounded and JSON has no infinity.
	UsagePercent *float64 `json:"usage_percent"`
	Remaining    float64  `json:"remaining"`
	Status       string   `json:"status"`
}

// requestToday resolves the reference day for aggregation, once per
// request. An explicit today= query parameter overrides the clock.
func requestToday(r *http.Request) (core.Date, bool) {
	if v := strings.TrimSpace(r.URL.Query().Get("today")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Date{}, false
		}
		return d, true
	}
	now := time.Now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day()), true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	today, ok := requestToday(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "today must be YYYY-MM-DD")
		return
	}

	subs, err := s.subscriptions.List(r.Context(), userID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	summary := core.Aggregate(subs, today)

	upcoming := make([]subscriptionResponse, 0, len(summary.Upcoming))
	for _, sub := range summary.Upcoming {
		upcoming = append(upcoming, toSubscriptionResponse(sub))
	}

	perCategory := make(map[string]float64, len(summary.PerCategory))
	for cat, total := range summary.PerCategory {
		perCategory[cat] = core.Round2(total)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Today:        today.String(),
		TotalMonthly: core.Round2(summary.TotalMonthly),
		PerCategory:  perCategory,
		Upcoming:     upcoming,
	})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	ceilingParam := strings.TrimSpace(r.URL.Query().Get("ceiling"))
	if ceilingParam == "" {
		writeError(w, http.StatusBadRequest, "missing ceiling parameter")
		return
	}
	ceiling, err := strconv.ParseFloat(ceilingParam, 64)
	if err != nil || ceiling < 0 {
		writeError(w, http.StatusBadRequest, "ceiling must be a non-negative number")
		return
	}

	today, ok := requestToday(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "today must be YYYY-MM-DD")
		return
	}

	subs, err := s.subscriptions.List(r.Context(), userID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	summary := core.Aggregate(subs, today)
	report := core.EvaluateBudget(summary.TotalMonthly, ceiling)

	resp := budgetResponse{
		TotalMonthly: core.Round2(summary.TotalMonthly),
		Ceiling:      ceiling,
		Remaining:    core.Round2(report.Remaining),
		Status:       string(report.Status),
	}
	if !math.IsInf(report.UsagePercent, 1) {
		usage := core.Round2(report.UsagePercent)
		resp.UsagePercent = &usage
	}

	writeJSON(w, http.StatusOK, resp)
}
