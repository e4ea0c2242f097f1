package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cashplan/internal/model"
)

// TransactionRepository handles ledger rows.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ExistsForRecurringOnDay reports whether the obligation already generated a
// transaction on the given calendar day. Callers serialize per obligation, so
// the read-then-write sequence built on this check is safe.
func (r *TransactionRepository) ExistsForRecurringOnDay(ctx context.Context, recurringID uint, day string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("recurring_transaction_id = ? AND execution_day = ?", recurringID, day).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check same-day execution: %w", err)
	}
	return count > 0, nil
}

// ListByRecurring returns all transactions generated from the obligation,
// most recent first.
func (r *TransactionRepository) ListByRecurring(ctx context.Context, userID, recurringID uint) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recurring_transaction_id = ?", userID, recurringID).
		Order("execution_date DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	return txs, nil
}

// ListByUser returns the user's ledger, optionally bounded to a half-open
// [from, to) window.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uint, from, to *time.Time) ([]model.Transaction, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("execution_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("execution_date < ?", *to)
	}
	var txs []model.Transaction
	if err := q.Order("execution_date DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}
