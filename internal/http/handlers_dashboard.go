package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())
	trendMonths := defaultTrendMonths

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			respondError(w, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}
		month = m
	}
	if v := strings.TrimSpace(r.URL.Query().Get("trend_months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			trendMonths = clampTrendMonths(n)
		}
	}

	household, err := s.households.GetOrCreateForUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	dashboard, err := s.dashboards.Compute(r.Context(), household.ID, claims.UserID, year, month, trendMonths)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newDashboardPayload(dashboard))
}

func clampTrendMonths(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxTrendMonths {
		return maxTrendMonths
	}
	return n
}
