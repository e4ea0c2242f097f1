package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cashplan/internal/model"
)

// RecurringRepository handles recurring-transaction rows. All ownership-scoped
// reads take a userID; the cross-owner queries (AllDue, AllUpcomingOn) exist
// only for the batch jobs.
type RecurringRepository struct {
	db *gorm.DB
}

func NewRecurringRepository(db *gorm.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *RecurringRepository) WithTx(tx *gorm.DB) *RecurringRepository {
	return &RecurringRepository{db: tx}
}

func (r *RecurringRepository) Create(ctx context.Context, rec *model.RecurringTransaction) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create recurring transaction: %w", err)
	}
	return nil
}

func (r *RecurringRepository) Save(ctx context.Context, rec *model.RecurringTransaction) error {
	if err := r.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("save recurring transaction: %w", err)
	}
	return nil
}

func (r *RecurringRepository) FindByID(ctx context.Context, userID, id uint) (*model.RecurringTransaction, error) {
	var rec model.RecurringTransaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recurring transaction: %w", err)
	}
	return &rec, nil
}

func (r *RecurringRepository) ListByUser(ctx context.Context, userID uint) ([]model.RecurringTransaction, error) {
	var recs []model.RecurringTransaction
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("next_execution_date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	return recs, nil
}

func (r *RecurringRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.RecurringTransaction{})
	if res.Error != nil {
		return fmt.Errorf("delete recurring transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// AllDue returns every active, auto-executing obligation whose next execution
// date is at or before now. Cross-owner: used by the daily sweep only.
func (r *RecurringRepository) AllDue(ctx context.Context, now time.Time) ([]model.RecurringTransaction, error) {
	var recs []model.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND status = ? AND auto_execute = ?", true, model.RecurringStatusActive, true).
		Where("next_execution_date IS NOT NULL AND next_execution_date <= ?", now).
		Order("next_execution_date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list due recurring transactions: %w", err)
	}
	return recs, nil
}

// Upcoming returns the user's active obligations scheduled inside [now, now+days].
func (r *RecurringRepository) Upcoming(ctx context.Context, userID uint, now time.Time, days int) ([]model.RecurringTransaction, error) {
	until := now.AddDate(0, 0, days)
	var recs []model.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND status = ?", userID, true, model.RecurringStatusActive).
		Where("next_execution_date IS NOT NULL AND next_execution_date >= ? AND next_execution_date <= ?", now, until).
		Order("next_execution_date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming recurring transactions: %w", err)
	}
	return recs, nil
}

// AllUpcomingWithin returns every active obligation scheduled between the given
// day and days after it, inclusive. Cross-owner: used by the read-only
// notification scan.
func (r *RecurringRepository) AllUpcomingWithin(ctx context.Context, day time.Time, days int) ([]model.RecurringTransaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days+1)
	var recs []model.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND status = ?", true, model.RecurringStatusActive).
		Where("next_execution_date IS NOT NULL AND next_execution_date >= ? AND next_execution_date < ?", start, end).
		Order("user_id ASC, next_execution_date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("scan upcoming recurring transactions: %w", err)
	}
	return recs, nil
}
