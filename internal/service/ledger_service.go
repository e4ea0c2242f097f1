package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cashplan/internal/model"
	"cashplan/internal/repository"
)

// LedgerService creates transaction rows and keeps account balances in step
// with them. Every transaction, manual or generated from a recurring
// obligation, goes through this path so balances never drift from the ledger.
type LedgerService struct {
	db          *gorm.DB
	txRepo      *repository.TransactionRepository
	accountRepo *repository.AccountRepository
}

func NewLedgerService(db *gorm.DB, txRepo *repository.TransactionRepository, accountRepo *repository.AccountRepository) *LedgerService {
	return &LedgerService{db: db, txRepo: txRepo, accountRepo: accountRepo}
}

// TransactionInput is the data required to record a manual transaction.
type TransactionInput struct {
	AccountID     uint
	CategoryID    *uint
	Description   string
	Amount        decimal.Decimal
	Type          model.TransactionType
	ExecutionDate time.Time
}

// Record validates input and writes the transaction plus balance update in one
// database transaction.
func (s *LedgerService) Record(ctx context.Context, userID uint, input TransactionInput) (*model.Transaction, error) {
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
	if _, err := s.accountRepo.FindByID(ctx, userID, input.AccountID); err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		UserID:        userID,
		AccountID:     input.AccountID,
		CategoryID:    input.CategoryID,
		Description:   input.Description,
		Amount:        input.Amount,
		Type:          input.Type,
		Status:        model.TransactionStatusCompleted,
		ExecutionDate: input.ExecutionDate,
		ExecutionDay:  model.DayKey(input.ExecutionDate),
	}

	err := s.db.WithContext(ctx).Transaction(func(h *gorm.DB) error {
		return s.RecordInTx(ctx, h, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordInTx writes the transaction and applies the balance delta using the
// caller's transaction handle. The recurring service uses this to keep the
// generated transaction atomic with the obligation update.
func (s *LedgerService) RecordInTx(ctx context.Context, h *gorm.DB, tx *model.Transaction) error {
	if err := s.txRepo.WithTx(h).Create(ctx, tx); err != nil {
		return err
	}
	return s.accountRepo.WithTx(h).AddToBalance(ctx, tx.AccountID, balanceDelta(tx))
}

// History returns every transaction generated from the obligation, most
// recent first.
func (s *LedgerService) History(ctx context.Context, userID, recurringID uint) ([]model.Transaction, error) {
	return s.txRepo.ListByRecurring(ctx, userID, recurringID)
}

// List returns the user's ledger inside an optional date window.
func (s *LedgerService) List(ctx context.Context, userID uint, from, to *time.Time) ([]model.Transaction, error) {
	return s.txRepo.ListByUser(ctx, userID, from, to)
}

// balanceDelta maps a transaction to the signed amount applied to its account.
// Income adds; expense and transfer subtract from the source account.
func balanceDelta(tx *model.Transaction) decimal.Decimal {
	if tx.Type == model.TransactionTypeIncome {
		return tx.Amount
	}
	return tx.Amount.Neg()
}
