package http

import (
	"net/http"
	"strings"
)

// classifyRequest is the POST /classify body.
type classifyRequest struct {
	Reference string  `json:"reference"`
	Withdraw  float64 `json:"withdraw"`
	Deposit   float64 `json:"deposit"`
}

// handleClassify categorizes a single transaction.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Reference) == "" {
		writeError(w, http.StatusBadRequest, "reference must not be empty")
		return
	}
	if req.Withdraw < 0 || req.Deposit < 0 {
		writeError(w, http.StatusBadRequest, "withdraw and deposit must not be negative")
		return
	}

	result := s.classifier.Classify(r.Context(), req.Reference, req.Withdraw, req.Deposit)
	NewResponse().JSON(result).Write(w)
}
