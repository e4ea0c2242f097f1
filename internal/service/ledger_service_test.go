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

func TestRecordAdjustsBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "ledger@example.com")
	account := env.seedAccount(t, user.ID, 1000)

	_, err := env.ledger.Record(ctx, user.ID, TransactionInput{
		AccountID:     account.ID,
		Description:   "Salary",
		Amount:        decimal.NewFromInt(2500),
		Type:          model.TransactionTypeIncome,
		ExecutionDate: date(2024, time.March, 1),
	})
	require.NoError(t, err)
	assert.True(t, env.balance(t, user.ID, account.ID).Equal(decimal.NewFromInt(3500)))

	_, err = env.ledger.Record(ctx, user.ID, TransactionInput{
		AccountID:     account.ID,
		Description:   "Groceries",
		Amount:        decimal.NewFromFloat(123.45),
		Type:          model.TransactionTypeExpense,
		ExecutionDate: date(2024, time.March, 2),
	})
	require.NoError(t, err)
	assert.True(t, env.balance(t, user.ID, account.ID).Equal(decimal.NewFromFloat(3376.55)))
}

func TestRecordRejectsForeignAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "ledger-owner@example.com")
	stranger := env.seedUser(t, "ledger-stranger@example.com")
	account := env.seedAccount(t, owner.ID, 1000)

	_, err := env.ledger.Record(ctx, stranger.ID, TransactionInput{
		AccountID:     account.ID,
		Description:   "Sneaky",
		Amount:        decimal.NewFromInt(10),
		Type:          model.TransactionTypeExpense,
		ExecutionDate: date(2024, time.March, 1),
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.True(t, env.balance(t, owner.ID, account.ID).Equal(decimal.NewFromInt(1000)))
}

func TestRecordValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "ledger-invalid@example.com")
	account := env.seedAccount(t, user.ID, 0)

	valid := TransactionInput{
		AccountID:     account.ID,
		Description:   "Coffee",
		Amount:        decimal.NewFromInt(4),
		Type:          model.TransactionTypeExpense,
		ExecutionDate: date(2024, time.March, 1),
	}

	tests := []struct {
		name   string
		mutate func(*TransactionInput)
		want   error
	}{
		{"empty description", func(in *TransactionInput) { in.Description = " " }, model.ErrDescriptionRequired},
		{"missing account", func(in *TransactionInput) { in.AccountID = 0 }, model.ErrAccountRequired},
		{"zero amount", func(in *TransactionInput) { in.Amount = decimal.Zero }, model.ErrInvalidAmount},
		{"bad type", func(in *TransactionInput) { in.Type = "refund" }, model.ErrInvalidTransactionType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := env.ledger.Record(ctx, user.ID, input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListFiltersByDateWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "ledger-list@example.com")
	account := env.seedAccount(t, user.ID, 1000)

	for _, day := range []time.Time{
		date(2024, time.March, 1),
		date(2024, time.March, 15),
		date(2024, time.April, 1),
	} {
		_, err := env.ledger.Record(ctx, user.ID, TransactionInput{
			AccountID:     account.ID,
			Description:   "Entry " + day.Format("2006-01-02"),
			Amount:        decimal.NewFromInt(1),
			Type:          model.TransactionTypeExpense,
			ExecutionDate: day,
		})
		require.NoError(t, err)
	}

	from := date(2024, time.March, 1)
	to := date(2024, time.April, 1)
	march, err := env.ledger.List(ctx, user.ID, &from, &to)
	require.NoError(t, err)
	assert.Len(t, march, 2)

	all, err := env.ledger.List(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
