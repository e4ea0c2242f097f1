package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"cashplan/internal/model"
	"cashplan/internal/service"
)

type createRecurringRequest struct {
	AccountID       uint                   `json:"accountId"`
	CategoryID      *uint                  `json:"categoryId,omitempty"`
	Description     string                 `json:"description"`
	Amount          decimal.Decimal        `json:"amount"`
	Type            string                 `json:"type"`
	Frequency       string                 `json:"frequency"`
	CustomFrequency *model.CustomFrequency `json:"customFrequency,omitempty"`
	StartDate       string                 `json:"startDate"`
	EndDate         *string                `json:"endDate,omitempty"`
	AutoExecute     *bool                  `json:"autoExecute,omitempty"`
	AdvanceDays     int                    `json:"advanceDays"`
	Notes           string                 `json:"notes"`
	Tags            []string               `json:"tags,omitempty"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req createRecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input := service.CreateInput{
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Amount:          req.Amount,
		Type:            model.TransactionType(req.Type),
		Frequency:       model.Frequency(req.Frequency),
		CustomFrequency: req.CustomFrequency,
		AutoExecute:     req.AutoExecute,
		AdvanceDays:     req.AdvanceDays,
		Notes:           req.Notes,
		Tags:            req.Tags,
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		input.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
			return
		}
		input.EndDate = &end
	}

	rec, err := s.recurring.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	recs, err := s.recurring.List(r.Context(), userFrom(r).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := s.recurring.Get(r.Context(), userFrom(r).ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

type updateRecurringRequest struct {
	AccountID       *uint                  `json:"accountId,omitempty"`
	CategoryID      *uint                  `json:"categoryId,omitempty"`
	Description     *string                `json:"description,omitempty"`
	Amount          *decimal.Decimal       `json:"amount,omitempty"`
	Type            *string                `json:"type,omitempty"`
	Frequency       *string                `json:"frequency,omitempty"`
	CustomFrequency *model.CustomFrequency `json:"customFrequency,omitempty"`
	StartDate       *string                `json:"startDate,omitempty"`
	EndDate         *string                `json:"endDate,omitempty"`
	AutoExecute     *bool                  `json:"autoExecute,omitempty"`
	AdvanceDays     *int                   `json:"advanceDays,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateRecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := service.UpdateInput{
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Amount:          req.Amount,
		CustomFrequency: req.CustomFrequency,
		AutoExecute:     req.AutoExecute,
		AdvanceDays:     req.AdvanceDays,
		Notes:           req.Notes,
		Tags:            req.Tags,
	}
	if req.Type != nil {
		t := model.TransactionType(*req.Type)
		patch.Type = &t
	}
	if req.Frequency != nil {
		f := model.Frequency(*req.Frequency)
		patch.Frequency = &f
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
			return
		}
		patch.EndDate = &end
	}

	rec, err := s.recurring.Update(r.Context(), userFrom(r).ID, id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.recurring.Remove(r.Context(), userFrom(r).ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePauseRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := s.recurring.Pause(r.Context(), userFrom(r).ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleResumeRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := s.recurring.Resume(r.Context(), userFrom(r).ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

type executeRecurringRequest struct {
	ExecutionDate *string `json:"executionDate,omitempty"` // YYYY-MM-DD, defaults to today
	Force         bool    `json:"force"`
}

func (s *Server) handleExecuteRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req executeRecurringRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	input := service.ExecuteInput{ID: id, Force: req.Force}
	if req.ExecutionDate != nil {
		execDate, err := parseDate(*req.ExecutionDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "executionDate must be YYYY-MM-DD")
			return
		}
		input.ExecutionDate = &execDate
	}

	tx, err := s.recurring.Execute(r.Context(), userFrom(r).ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 365 {
			WriteError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	recs, err := s.recurring.Upcoming(r.Context(), userFrom(r).ID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, recs)
}

func (s *Server) handleRecurringHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	txs, err := s.recurring.History(r.Context(), userFrom(r).ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, txs)
}

// pathID parses the {id} path segment; on failure it writes a 400 and returns
// ok=false.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "id must be a number")
		return 0, false
	}
	return uint(value), true
}
