package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/statement"
	"finsight/internal/storage"
)

// statementResponse summarizes an ingested statement.
type statementResponse struct {
	ID           string `json:"id"`
	SourceName   string `json:"source_name"`
	Transactions int    `json:"transactions"`
	NeedsReview  int    `json:"needs_review"`
}

// handleCreateStatement ingests a CSV statement: parse, classify every row,
// persist under a fresh id.
func (s *Server) handleCreateStatement(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "statement storage is not configured")
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := statement.Parse(bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	needsReview := 0
	for i := range txs {
		result := s.classifier.Classify(r.Context(), txs[i].Reference, txs[i].Withdraw, txs[i].Deposit)
		txs[i].Category = result.CategoryInternal
		if result.NeedsUserReview {
			needsReview++
		}
	}

	sourceName := strings.TrimSpace(r.URL.Query().Get("source"))
	if sourceName == "" {
		sourceName = "upload"
	}

	st := storage.Statement{
		ID:               uuid.NewString(),
		SourceName:       sourceName,
		TransactionCount: len(txs),
		UploadedAt:       time.Now().UTC(),
		Transactions:     txs,
	}
	structured := log.NewStructuredLogger(log.FromContext(r.Context()))
	if err := s.storage.SaveStatement(r.Context(), st); err != nil {
		structured.LogError(r.Context(), "Failed persisting statement", err,
			log.ComponentStatement, log.OpCreate, log.NewFields())
		writeError(w, http.StatusInternalServerError, "failed to persist statement")
		return
	}

	structured.LogStatementIngested(r.Context(), st.ID, len(txs))

	NewResponse().Status(http.StatusCreated).JSON(statementResponse{
		ID:           st.ID,
		SourceName:   st.SourceName,
		Transactions: len(txs),
		NeedsReview:  needsReview,
	}).Write(w)
}

// statementDetail is the GET /statements/{id} payload.
type statementDetail struct {
	ID           string             `json:"id"`
	SourceName   string             `json:"source_name"`
	UploadedAt   time.Time          `json:"uploaded_at"`
	Transactions []core.Transaction `json:"transactions"`
}

// handleGetStatement returns a stored statement with its transactions.
func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "statement storage is not configured")
		return
	}

	id := r.PathValue("id")
	st, err := s.storage.GetStatement(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "statement not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load statement")
		return
	}

	NewResponse().JSON(statementDetail{
		ID:           st.ID,
		SourceName:   st.SourceName,
		UploadedAt:   st.UploadedAt,
		Transactions: st.Transactions,
	}).Write(w)
}
