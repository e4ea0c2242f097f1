package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cashplan/internal/model"
	"cashplan/internal/repository"
)

// RecurringService owns every state transition of recurring transactions:
// creation, updates, pause/resume, manual execution and the daily sweep. It is
// the only writer of the recurring_transactions table and the only creator of
// generated ledger rows.
type RecurringService struct {
	db     *gorm.DB
	repo   *repository.RecurringRepository
	txRepo *repository.TransactionRepository
	ledger *LedgerService
	log    zerolog.Logger
	now    func() time.Time

	locks lockTable
}

func NewRecurringService(db *gorm.DB, repo *repository.RecurringRepository, txRepo *repository.TransactionRepository, ledger *LedgerService, log zerolog.Logger) *RecurringService {
	return &RecurringService{
		db:     db,
		repo:   repo,
		txRepo: txRepo,
		ledger: ledger,
		log:    log,
		now:    time.Now,
	}
}

// SetClock replaces the wall clock; tests use this to pin "now".
func (s *RecurringService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateInput is the data required to create a recurring transaction.
type CreateInput struct {
	AccountID       uint
	CategoryID      *uint
	Description     string
	Amount          decimal.Decimal
	Type            model.TransactionType
	Frequency       model.Frequency
	CustomFrequency *model.CustomFrequency
	StartDate       time.Time
	EndDate         *time.Time
	AutoExecute     *bool // defaults to true
	AdvanceDays     int
	Notes           string
	Tags            []string
}

// UpdateInput is a partial patch; nil fields keep their current value.
type UpdateInput struct {
	AccountID       *uint
	CategoryID      *uint
	Description     *string
	Amount          *decimal.Decimal
	Type            *model.TransactionType
	Frequency       *model.Frequency
	CustomFrequency *model.CustomFrequency
	StartDate       *time.Time
	EndDate         *time.Time
	AutoExecute     *bool
	AdvanceDays     *int
	Notes           *string
	Tags            []string
}

// ExecuteInput drives a single execution of one obligation.
type ExecuteInput struct {
	ID            uint
	ExecutionDate *time.Time // defaults to now
	Force         bool       // skip the duplicate-day guard
}

// SweepError records one obligation's failure during the sweep.
type SweepError struct {
	RecurringID uint   `json:"recurringId"`
	Err         string `json:"error"`
}

// SweepResult is what one executePendingTransactions run produced.
type SweepResult struct {
	Executed int          `json:"executed"`
	Errors   []SweepError `json:"errors"`
}

// Create validates the input, computes the first next-execution date from the
// start date and persists the obligation as active.
func (s *RecurringService) Create(ctx context.Context, userID uint, input CreateInput) (*model.RecurringTransaction, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, model.ErrDescriptionRequired
	}
	if input.AccountID == 0 {
		return nil, model.ErrAccountRequired
	}
	if !input.Amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}
	if !input.Type.Valid() {
		return nil, model.ErrInvalidTransactionType
	}
	if !input.Frequency.Valid() {
		return nil, model.ErrInvalidFrequency
	}
	if input.StartDate.IsZero() {
		return nil, model.ErrStartDateRequired
	}

	next, err := NextDate(input.StartDate, input.Frequency, input.CustomFrequency)
	if err != nil {
		return nil, err
	}

	autoExecute := true
	if input.AutoExecute != nil {
		autoExecute = *input.AutoExecute
	}

	rec := &model.RecurringTransaction{
		UserID:            userID,
		AccountID:         input.AccountID,
		CategoryID:        input.CategoryID,
		Description:       input.Description,
		Amount:            input.Amount,
		Type:              input.Type,
		Frequency:         input.Frequency,
		CustomFrequency:   input.CustomFrequency,
		StartDate:         truncateToDay(input.StartDate),
		EndDate:           input.EndDate,
		Status:            model.RecurringStatusActive,
		IsActive:          true,
		AutoExecute:       autoExecute,
		AdvanceDays:       input.AdvanceDays,
		NextExecutionDate: &next,
		Notes:             input.Notes,
		Tags:              input.Tags,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info().Uint("recurring_id", rec.ID).Uint("user_id", userID).
		Str("frequency", string(rec.Frequency)).Time("next", next).
		Msg("recurring transaction created")
	return rec, nil
}

// Update applies a partial patch. When the patch touches frequency, start date
// or custom frequency, the next execution date is recomputed from the merged
// values, never from the stale stored ones.
func (s *RecurringService) Update(ctx context.Context, userID, id uint, patch UpdateInput) (*model.RecurringTransaction, error) {
	rec, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	recompute := false
	if patch.AccountID != nil {
		rec.AccountID = *patch.AccountID
	}
	if patch.CategoryID != nil {
		rec.CategoryID = patch.CategoryID
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, model.ErrDescriptionRequired
		}
		rec.Description = *patch.Description
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, model.ErrInvalidAmount
		}
		rec.Amount = *patch.Amount
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, model.ErrInvalidTransactionType
		}
		rec.Type = *patch.Type
	}
	if patch.Frequency != nil {
		if !patch.Frequency.Valid() {
			return nil, model.ErrInvalidFrequency
		}
		rec.Frequency = *patch.Frequency
		recompute = true
	}
	if patch.CustomFrequency != nil {
		rec.CustomFrequency = patch.CustomFrequency
		recompute = true
	}
	if patch.StartDate != nil {
		rec.StartDate = truncateToDay(*patch.StartDate)
		recompute = true
	}
	if patch.EndDate != nil {
		rec.EndDate = patch.EndDate
	}
	if patch.AutoExecute != nil {
		rec.AutoExecute = *patch.AutoExecute
	}
	if patch.AdvanceDays != nil {
		rec.AdvanceDays = *patch.AdvanceDays
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		rec.Tags = patch.Tags
	}

	if recompute && !rec.Status.Terminal() {
		ref := rec.StartDate
		if rec.LastExecutedAt != nil {
			ref = *rec.LastExecutedAt
		}
		next, err := NextDate(ref, rec.Frequency, rec.CustomFrequency)
		if err != nil {
			return nil, err
		}
		rec.NextExecutionDate = &next
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Pause deactivates the obligation. Pausing an already paused obligation
// succeeds and changes nothing.
func (s *RecurringService) Pause(ctx context.Context, userID, id uint) (*model.RecurringTransaction, error) {
	rec, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == model.RecurringStatusPaused {
		return rec, nil
	}
	if rec.Status.Terminal() {
		return nil, model.ErrInactiveRecurring
	}
	rec.Status = model.RecurringStatusPaused
	rec.IsActive = false
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Resume reactivates a paused obligation and recomputes the next execution
// date so a stale, overdue date is never silently reused: the new date is
// always after the current time.
func (s *RecurringService) Resume(ctx context.Context, userID, id uint) (*model.RecurringTransaction, error) {
	rec, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status.Terminal() {
		return nil, model.ErrInactiveRecurring
	}

	ref := rec.StartDate
	if rec.LastExecutedAt != nil {
		ref = *rec.LastExecutedAt
	}
	next, err := s.nextAfter(ref, s.now(), rec.Frequency, rec.CustomFrequency)
	if err != nil {
		return nil, err
	}

	rec.Status = model.RecurringStatusActive
	rec.IsActive = true
	rec.NextExecutionDate = &next
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// nextAfter applies NextDate repeatedly from ref until the result lands
// strictly after the given time.
func (s *RecurringService) nextAfter(ref, after time.Time, freq model.Frequency, custom *model.CustomFrequency) (time.Time, error) {
	next, err := NextDate(ref, freq, custom)
	if err != nil {
		return time.Time{}, err
	}
	for i := 0; i < maxRollSteps && !next.After(after); i++ {
		next, err = NextDate(next, freq, custom)
		if err != nil {
			return time.Time{}, err
		}
	}
	if !next.After(after) {
		return time.Time{}, model.ErrNoMatchingDate
	}
	return next, nil
}

// Execute performs one execution of the obligation: it writes the generated
// ledger transaction (balance included) and advances the obligation's state in
// a single database transaction. A second execution on the same calendar day
// is rejected unless Force is set.
func (s *RecurringService) Execute(ctx context.Context, userID uint, input ExecuteInput) (*model.Transaction, error) {
	// Serialize executions per obligation; the duplicate-day check below is a
	// read-then-write sequence.
	unlock := s.locks.lock(input.ID)
	defer unlock()

	rec, err := s.repo.FindByID(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive || rec.Status != model.RecurringStatusActive {
		return nil, model.ErrInactiveRecurring
	}

	execDate := s.now()
	if input.ExecutionDate != nil {
		execDate = *input.ExecutionDate
	}

	if !input.Force {
		exists, err := s.txRepo.ExistsForRecurringOnDay(ctx, rec.ID, model.DayKey(execDate))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrDuplicateExecution
		}
	}

	next, err := NextDate(execDate, rec.Frequency, rec.CustomFrequency)
	if err != nil {
		return nil, err
	}

	generated := &model.Transaction{
		UserID:                 rec.UserID,
		AccountID:              rec.AccountID,
		CategoryID:             rec.CategoryID,
		Description:            rec.Description,
		Amount:                 rec.Amount,
		Type:                   rec.Type,
		Status:                 model.TransactionStatusCompleted,
		ExecutionDate:          execDate,
		ExecutionDay:           model.DayKey(execDate),
		RecurringTransactionID: &rec.ID,
	}

	executedAt := execDate
	err = s.db.WithContext(ctx).Transaction(func(h *gorm.DB) error {
		if err := s.ledger.RecordInTx(ctx, h, generated); err != nil {
			return err
		}

		rec.LastExecutedAt = &executedAt
		rec.ExecutionCount++
		rec.NextExecutionDate = &next

		// Reaching the end date completes the obligation; the completed state
		// always wins over the computed next date.
		if rec.EndDate != nil && !execDate.Before(*rec.EndDate) {
			rec.Status = model.RecurringStatusCompleted
			rec.IsActive = false
			rec.NextExecutionDate = nil
		}

		return s.repo.WithTx(h).Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("recurring_id", rec.ID).Time("execution_date", execDate).
		Int("execution_count", rec.ExecutionCount).Str("status", string(rec.Status)).
		Msg("recurring transaction executed")
	return generated, nil
}

// ExecutePending is the daily sweep: it executes every due, active,
// auto-executing obligation using its scheduled date, not the wall clock, so
// cadence stays stable when the sweep runs late. One obligation's failure
// never aborts the rest.
func (s *RecurringService) ExecutePending(ctx context.Context) SweepResult {
	var result SweepResult

	now := s.now()
	due, err := s.repo.AllDue(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep: load due recurring transactions")
		result.Errors = append(result.Errors, SweepError{Err: err.Error()})
		return result
	}

	for _, rec := range due {
		if rec.NextExecutionDate == nil {
			continue
		}
		if rec.EndDate != nil && rec.NextExecutionDate.After(*rec.EndDate) {
			continue
		}
		execDate := *rec.NextExecutionDate
		if _, err := s.Execute(ctx, rec.UserID, ExecuteInput{ID: rec.ID, ExecutionDate: &execDate}); err != nil {
			s.log.Warn().Err(err).Uint("recurring_id", rec.ID).Msg("sweep: execution failed")
			result.Errors = append(result.Errors, SweepError{RecurringID: rec.ID, Err: err.Error()})
			continue
		}
		result.Executed++
	}

	s.log.Info().Int("executed", result.Executed).Int("errors", len(result.Errors)).
		Msg("sweep finished")
	return result
}

// Get returns one obligation for its owner.
func (s *RecurringService) Get(ctx context.Context, userID, id uint) (*model.RecurringTransaction, error) {
	return s.repo.FindByID(ctx, userID, id)
}

// List returns all of the user's obligations.
func (s *RecurringService) List(ctx context.Context, userID uint) ([]model.RecurringTransaction, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Remove hard-deletes the obligation after the ownership check.
func (s *RecurringService) Remove(ctx context.Context, userID, id uint) error {
	return s.repo.Delete(ctx, userID, id)
}

// Upcoming returns active obligations scheduled within the next days days.
func (s *RecurringService) Upcoming(ctx context.Context, userID uint, days int) ([]model.RecurringTransaction, error) {
	if days <= 0 {
		days = 7
	}
	return s.repo.Upcoming(ctx, userID, s.now(), days)
}

// History returns the generated transactions of one obligation, newest first.
func (s *RecurringService) History(ctx context.Context, userID, id uint) ([]model.Transaction, error) {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, userID, id)
}

// lockTable hands out one mutex per obligation id.
type lockTable struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (t *lockTable) lock(id uint) func() {
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[uint]*sync.Mutex)
	}
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
