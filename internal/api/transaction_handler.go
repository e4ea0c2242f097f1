package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"cashplan/internal/model"
	"cashplan/internal/service"
)

type createTransactionRequest struct {
	AccountID     uint            `json:"accountId"`
	CategoryID    *uint           `json:"categoryId,omitempty"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	ExecutionDate *string         `json:"executionDate,omitempty"` // YYYY-MM-DD, defaults to today
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	execDate := time.Now().UTC()
	if req.ExecutionDate != nil {
		parsed, err := parseDate(*req.ExecutionDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "executionDate must be YYYY-MM-DD")
			return
		}
		execDate = parsed
	}

	tx, err := s.ledger.Record(r.Context(), user.ID, service.TransactionInput{
		AccountID:     req.AccountID,
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          model.TransactionType(req.Type),
		ExecutionDate: execDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = &parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		// The query window is end-exclusive; the whole "to" day counts.
		end := parsed.AddDate(0, 0, 1)
		to = &end
	}

	txs, err := s.ledger.List(r.Context(), user.ID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, txs)
}

func parseDate(v string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", v, time.UTC)
}
