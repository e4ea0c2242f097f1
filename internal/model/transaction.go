package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells which direction money moves.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether the type is one of the known values.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionStatus is the ledger state of a transaction row.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is a single ledger entry. Rows generated from a recurring
// transaction carry RecurringTransactionID; ExecutionDay is the calendar-day
// key the duplicate-execution guard queries against.
type Transaction struct {
	ID                     uint              `gorm:"primaryKey" json:"id"`
	UserID                 uint              `gorm:"index" json:"userId"`
	AccountID              uint              `gorm:"index" json:"accountId"`
	CategoryID             *uint             `gorm:"index" json:"categoryId,omitempty"`
	Description            string            `json:"description"`
	Amount                 decimal.Decimal   `gorm:"type:decimal(20,4)" json:"amount"`
	Type                   TransactionType   `json:"type"`
	Status                 TransactionStatus `gorm:"default:completed" json:"status"`
	ExecutionDate          time.Time         `gorm:"index" json:"executionDate"`
	ExecutionDay           string            `gorm:"index:idx_recurring_execution_day" json:"-"`
	RecurringTransactionID *uint             `gorm:"index:idx_recurring_execution_day" json:"recurringTransactionId,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
}

// DayKey formats a date the way ExecutionDay stores it.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
