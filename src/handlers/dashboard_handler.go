package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/username/dompetku/backend/src/logger"
	"github.com/username/dompetku/backend/src/security/validation"
	"github.com/username/dompetku/backend/src/services"
)

type DashboardHandler struct {
	reportService services.ReportService
}

func NewDashboardHandler(reportService services.ReportService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	summary, err := h.reportService.DashboardSummary(userID, time.Now())
	if err != nil {
		logger.L.Error("Failed to build dashboard summary", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleMonthlyReport returns per-month income/expense totals. The optional
// "months" query parameter selects the window size, capped at 36.
func (h *DashboardHandler) HandleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	monthCount := 12
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 36 {
			sendJSONError(w, "months must be a number between 1 and 36", http.StatusBadRequest)
			return
		}
		monthCount = parsed
	}

	points, err := h.reportService.MonthlyReport(userID, monthCount, time.Now())
	if err != nil {
		logger.L.Error("Failed to build monthly report", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve monthly report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}

func (h *DashboardHandler) HandleCategoryReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	dateFrom := q.Get("date_from")
	dateTo := q.Get("date_to")
	if dateFrom != "" {
		if _, err := validation.ValidateDateString(dateFrom, "date_from"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if dateTo != "" {
		if _, err := validation.ValidateDateString(dateTo, "date_to"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	breakdown, err := h.reportService.CategoryReport(userID, dateFrom, dateTo)
	if err != nil {
		logger.L.Error("Failed to build category report", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve category report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(breakdown)
}
