package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"finsight/internal/core"
)

// insightsRequest is the POST /insights body. monthly_budget is optional;
// an absent value falls back to the configured default.
type insightsRequest struct {
	Transactions    []core.Transaction `json:"transactions"`
	MonthlyBudget   *float64           `json:"monthly_budget"`
	CurrentBalance  float64            `json:"current_balance"`
	AvgDailyExpense float64            `json:"avg_daily_expense"`
}

// handleInsights runs the insight engine over the submitted transactions and
// returns the report. With storage configured the snapshot is persisted and
// an export message published; neither failure fails the request.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := core.Params{
		MonthlyBudget:   s.defaultBudget,
		CurrentBalance:  req.CurrentBalance,
		AvgDailyExpense: req.AvgDailyExpense,
	}
	if req.MonthlyBudget != nil {
		params.MonthlyBudget = *req.MonthlyBudget
	}
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := core.GenerateInsights(req.Transactions, params)

	if s.storage != nil {
		reportID := uuid.NewString()
		if err := s.storage.SaveReport(r.Context(), reportID, "", report); err != nil {
			slog.ErrorContext(r.Context(), "Failed persisting report snapshot",
				"report_id", reportID, "error", err)
		} else if s.publisher != nil {
			if err := s.publisher.PublishReportExport(r.Context(), reportID, 1); err != nil {
				slog.WarnContext(r.Context(), "Failed publishing report export message",
					"report_id", reportID, "error", err)
			}
		}
	}

	NewResponse().JSON(report).Write(w)
}
