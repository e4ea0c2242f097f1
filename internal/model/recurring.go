package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the recurrence cadence of a recurring transaction.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyCustom    Frequency = "custom"
)

// Valid reports whether the frequency is one of the known values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// IntervalUnit is the base unit of a custom frequency.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
	UnitYears  IntervalUnit = "years"
)

// CustomFrequency describes a recurrence that none of the fixed frequencies
// cover: an interval of Unit steps plus optional restriction sets. A restriction
// set only applies when non-empty; the next execution date must satisfy every
// present set at once.
type CustomFrequency struct {
	Unit         IntervalUnit `json:"unit"`
	Interval     int          `json:"interval"`
	DaysOfWeek   []int        `json:"daysOfWeek,omitempty"`   // 0 = Sunday .. 6 = Saturday
	DaysOfMonth  []int        `json:"daysOfMonth,omitempty"`  // 1..31
	MonthsOfYear []int        `json:"monthsOfYear,omitempty"` // 1..12
}

// Validate checks ranges and the unit tag.
func (c *CustomFrequency) Validate() error {
	switch c.Unit {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
	default:
		return NewValidationError("custom frequency unit must be one of days, weeks, months, years")
	}
	if c.Interval < 1 {
		return NewValidationError("custom frequency interval must be at least 1")
	}
	for _, d := range c.DaysOfWeek {
		if d < 0 || d > 6 {
			return NewValidationError("daysOfWeek values must be between 0 and 6")
		}
	}
	for _, d := range c.DaysOfMonth {
		if d < 1 || d > 31 {
			return NewValidationError("daysOfMonth values must be between 1 and 31")
		}
	}
	for _, m := range c.MonthsOfYear {
		if m < 1 || m > 12 {
			return NewValidationError("monthsOfYear values must be between 1 and 12")
		}
	}
	return nil
}

// RecurringStatus is the lifecycle state of a recurring transaction.
type RecurringStatus string

const (
	RecurringStatusActive    RecurringStatus = "active"
	RecurringStatusPaused    RecurringStatus = "paused"
	RecurringStatusCompleted RecurringStatus = "completed"
	RecurringStatusCancelled RecurringStatus = "cancelled"
)

// Terminal reports whether the status allows no further executions.
func (s RecurringStatus) Terminal() bool {
	return s == RecurringStatusCompleted || s == RecurringStatusCancelled
}

// RecurringTransaction is a recurring obligation: the template from which
// ledger transactions are generated on schedule. The recurring service is the
// only writer of this table.
type RecurringTransaction struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	UserID            uint             `gorm:"index" json:"userId"`
	AccountID         uint             `gorm:"index" json:"accountId"`
	CategoryID        *uint            `gorm:"index" json:"categoryId,omitempty"`
	Description       string           `json:"description"`
	Amount            decimal.Decimal  `gorm:"type:decimal(20,4)" json:"amount"`
	Type              TransactionType  `json:"type"`
	Frequency         Frequency        `json:"frequency"`
	CustomFrequency   *CustomFrequency `gorm:"serializer:json" json:"customFrequency,omitempty"`
	StartDate         time.Time        `json:"startDate"`
	EndDate           *time.Time       `json:"endDate,omitempty"`
	Status            RecurringStatus  `gorm:"default:active" json:"status"`
	IsActive          bool             `gorm:"default:true" json:"isActive"`
	AutoExecute       bool             `gorm:"default:true" json:"autoExecute"`
	AdvanceDays       int              `json:"advanceDays"`
	LastExecutedAt    *time.Time       `json:"lastExecutedAt,omitempty"`
	NextExecutionDate *time.Time       `gorm:"index" json:"nextExecutionDate,omitempty"`
	ExecutionCount    int              `json:"executionCount"`
	Notes             string           `json:"notes,omitempty"`
	Tags              []string         `gorm:"serializer:json" json:"tags,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}
