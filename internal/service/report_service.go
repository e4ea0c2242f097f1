package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cashplan/internal/model"
	"cashplan/internal/repository"
)

// ReportService builds human-readable summaries for notifications and the
// periodic report jobs. It only reads; obligation state is never touched here.
type ReportService struct {
	recurringRepo *repository.RecurringRepository
	txRepo        *repository.TransactionRepository
	now           func() time.Time
}

func NewReportService(recurringRepo *repository.RecurringRepository, txRepo *repository.TransactionRepository) *ReportService {
	return &ReportService{recurringRepo: recurringRepo, txRepo: txRepo, now: time.Now}
}

// maxAdvanceNotice caps how far ahead the scan looks, whatever a record's
// advanceDays says.
const maxAdvanceNotice = 31

// DueToday groups notifiable executions by owning user: everything scheduled
// today, plus records whose advanceDays lead time has started. Used by the
// morning notification scan.
func (s *ReportService) DueToday(ctx context.Context) (map[uint][]model.RecurringTransaction, error) {
	now := s.now()
	recs, err := s.recurringRepo.AllUpcomingWithin(ctx, now, maxAdvanceNotice)
	if err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	byUser := make(map[uint][]model.RecurringTransaction)
	for _, rec := range recs {
		if rec.NextExecutionDate == nil {
			continue
		}
		lead := int(rec.NextExecutionDate.Sub(today).Hours() / 24)
		if lead == 0 || lead <= rec.AdvanceDays {
			byUser[rec.UserID] = append(byUser[rec.UserID], rec)
		}
	}
	return byUser, nil
}

// DueTodayText formats one user's notifiable executions for delivery. Entries
// inside their advance-notice window carry the scheduled date.
func (s *ReportService) DueTodayText(recs []model.RecurringTransaction) string {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString("Upcoming transactions:\n")
	for _, rec := range recs {
		b.WriteString(fmt.Sprintf("• %s — %s %s", rec.Description, rec.Amount.StringFixed(2), rec.Type))
		if rec.NextExecutionDate != nil && rec.NextExecutionDate.After(today) {
			b.WriteString(" on " + rec.NextExecutionDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// LedgerSummary totals a user's ledger over [from, to) per transaction type.
func (s *ReportService) LedgerSummary(ctx context.Context, userID uint, from, to time.Time) (string, error) {
	txs, err := s.txRepo.ListByUser(ctx, userID, &from, &to)
	if err != nil {
		return "", err
	}

	income := decimal.Zero
	expense := decimal.Zero
	generated := 0
	for _, tx := range txs {
		switch tx.Type {
		case model.TransactionTypeIncome:
			income = income.Add(tx.Amount)
		default:
			expense = expense.Add(tx.Amount)
		}
		if tx.RecurringTransactionID != nil {
			generated++
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Ledger %s – %s\n", from.Format("2006-01-02"), to.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("• transactions: %d (%d recurring)\n", len(txs), generated))
	b.WriteString(fmt.Sprintf("• income: %s\n", income.StringFixed(2)))
	b.WriteString(fmt.Sprintf("• spending: %s\n", expense.StringFixed(2)))
	b.WriteString(fmt.Sprintf("• net: %s", income.Sub(expense).StringFixed(2)))
	return b.String(), nil
}

// WeeklyWindow returns the last seven days ending now.
func (s *ReportService) WeeklyWindow() (time.Time, time.Time) {
	now := s.now()
	return now.AddDate(0, 0, -7), now
}

// MonthlyWindow returns the previous calendar month.
func (s *ReportService) MonthlyWindow() (time.Time, time.Time) {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0), first
}
