package http

import (
	"errors"
	"net/http"

	"finsight/internal/forecast"
)

// handleForecast projects the balance over the requested horizon. A missing
// model artifact is a service-level condition, not a client error.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	days, err := parseForecastDays(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.model == nil {
		writeError(w, http.StatusServiceUnavailable, forecast.ErrModelUnavailable.Error())
		return
	}

	points, err := s.model.Forecast(r.Context(), days)
	if err != nil {
		if errors.Is(err, forecast.ErrModelUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "forecast failed")
		return
	}

	NewResponse().JSON(map[string]any{
		"days":   days,
		"points": points,
	}).Write(w)
}
