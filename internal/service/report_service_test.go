package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashplan/internal/model"
)

func TestDueTodayGroupsByUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	aliceAccount := env.seedAccount(t, alice.ID, 1000)
	bobAccount := env.seedAccount(t, bob.ID, 1000)

	env.svc.SetClock(fixedClock(date(2024, time.January, 1)))
	_, err := env.svc.Create(ctx, alice.ID, monthlyRent(aliceAccount.ID))
	require.NoError(t, err)

	daily := monthlyRent(bobAccount.ID)
	daily.Description = "Coffee subscription"
	daily.Frequency = model.FrequencyDaily
	daily.StartDate = date(2024, time.January, 31)
	_, err = env.svc.Create(ctx, bob.ID, daily)
	require.NoError(t, err)

	// Scheduled Feb 5 with a week of advance notice: already notifiable.
	insurance := monthlyRent(aliceAccount.ID)
	insurance.Description = "Insurance"
	insurance.StartDate = date(2024, time.January, 5)
	insurance.AdvanceDays = 7
	_, err = env.svc.Create(ctx, alice.ID, insurance)
	require.NoError(t, err)

	// Scheduled Feb 10, no advance notice: stays out of today's scan.
	car := monthlyRent(bobAccount.ID)
	car.Description = "Car payment"
	car.StartDate = date(2024, time.January, 10)
	_, err = env.svc.Create(ctx, bob.ID, car)
	require.NoError(t, err)

	reports := NewReportService(env.recurring, env.txs)
	reports.now = fixedClock(date(2024, time.February, 1))

	byUser, err := reports.DueToday(ctx)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	require.Len(t, byUser[alice.ID], 2)
	assert.Equal(t, "Rent", byUser[alice.ID][0].Description)
	assert.Equal(t, "Insurance", byUser[alice.ID][1].Description)
	require.Len(t, byUser[bob.ID], 1)
	assert.Equal(t, "Coffee subscription", byUser[bob.ID][0].Description)

	text := reports.DueTodayText(byUser[alice.ID])
	assert.Contains(t, text, "Rent")
	assert.Contains(t, text, "1200.00")
	assert.Contains(t, text, "Insurance")
	assert.Contains(t, text, "on 2024-02-05")
}

func TestLedgerSummaryTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "summary@example.com")
	account := env.seedAccount(t, user.ID, 0)

	_, err := env.ledger.Record(ctx, user.ID, TransactionInput{
		AccountID:     account.ID,
		Description:   "Salary",
		Amount:        decimal.NewFromInt(3000),
		Type:          model.TransactionTypeIncome,
		ExecutionDate: date(2024, time.March, 5),
	})
	require.NoError(t, err)

	env.svc.SetClock(fixedClock(date(2024, time.March, 10)))
	rec, err := env.svc.Create(ctx, user.ID, monthlyRent(account.ID))
	require.NoError(t, err)
	execDate := date(2024, time.March, 10)
	_, err = env.svc.Execute(ctx, user.ID, ExecuteInput{ID: rec.ID, ExecutionDate: &execDate})
	require.NoError(t, err)

	reports := NewReportService(env.recurring, env.txs)
	text, err := reports.LedgerSummary(ctx, user.ID, date(2024, time.March, 1), date(2024, time.April, 1))
	require.NoError(t, err)
	assert.Contains(t, text, "transactions: 2 (1 recurring)")
	assert.Contains(t, text, "income: 3000.00")
	assert.Contains(t, text, "spending: 1200.00")
	assert.Contains(t, text, "net: 1800.00")
}

func TestMonthlyWindowIsPreviousMonth(t *testing.T) {
	reports := NewReportService(nil, nil)
	reports.now = fixedClock(date(2024, time.March, 15))

	from, to := reports.MonthlyWindow()
	assert.Equal(t, date(2024, time.February, 1), from)
	assert.Equal(t, date(2024, time.March, 1), to)
}
