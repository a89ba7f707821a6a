package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/period"
)

// TransactionInput is the user-editable part of a transaction.
type TransactionInput struct {
	Name       string
	Amount     core.Money
	Date       core.Date
	Kind       core.Kind
	CategoryID *int64
}

// TransactionService manages live transactions. Every mutation refreshes the
// cached statistics of the affected period in the same store transaction.
type TransactionService struct {
	store   period.Store
	periods *period.Manager
}

func NewTransactionService(store period.Store, periods *period.Manager) *TransactionService {
	return &TransactionService{
		store:   store,
		periods: periods,
	}
}

// Create records a transaction in the user's active period, creating the
// period when needed.
func (s *TransactionService) Create(ctx context.Context, userID int64, in TransactionInput, now time.Time) (core.Transaction, error) {
	t := core.Transaction{
		UserID:     userID,
		CategoryID: in.CategoryID,
		Name:       in.Name,
		Amount:     in.Amount,
		Date:       in.Date,
		Kind:       in.Kind,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := s.store.InTx(ctx, func(repo period.Repository) error {
		active, err := s.periods.EnsureActivePeriod(ctx, repo, userID, now)
		if err != nil {
			return err
		}
		t.PeriodID = &active.ID
		if t, err = repo.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		_, err = s.periods.RefreshStats(ctx, repo, active.ID)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created", log.NewFields().
		WithUser(userID).
		WithTransaction(t.ID, string(t.Kind), t.Amount.Cents).
		WithComponent(log.ComponentTransaction).
		ToSlice()...)
	return t, nil
}

// Update edits a live transaction in place. The transaction stays in its
// period; archived transactions are not found.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, in TransactionInput, now time.Time) (core.Transaction, error) {
	var t core.Transaction
	err := s.store.InTx(ctx, func(repo period.Repository) error {
		cur, err := repo.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}
		t = cur
		t.Name = in.Name
		t.Amount = in.Amount
		t.Date = in.Date
		t.Kind = in.Kind
		t.CategoryID = in.CategoryID
		t.UpdatedAt = now
		if err := t.Validate(); err != nil {
			return err
		}
		if err := repo.UpdateTransaction(ctx, t); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		return s.refresh(ctx, repo, t)
	})
	if err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction updated", log.NewFields().
		WithUser(userID).
		WithTransaction(t.ID, string(t.Kind), t.Amount.Cents).
		WithComponent(log.ComponentTransaction).
		ToSlice()...)
	return t, nil
}

// Delete removes a live transaction.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	err := s.store.InTx(ctx, func(repo period.Repository) error {
		t, err := repo.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteTransaction(ctx, userID, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return s.refresh(ctx, repo, t)
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted", "user_id", userID, "transaction_id", id)
	return nil
}

// ListActive returns a page of the active period's transactions, newest first.
func (s *TransactionService) ListActive(ctx context.Context, userID int64, page core.Page, now time.Time) (core.Period, []core.Transaction, error) {
	active, err := s.periods.GetOrCreateActivePeriod(ctx, userID, now)
	if err != nil {
		return core.Period{}, nil, err
	}
	txs, err := s.store.ListPeriodTransactions(ctx, active.ID, page)
	if err != nil {
		return core.Period{}, nil, fmt.Errorf("list transactions: %w", err)
	}
	return active, txs, nil
}

func (s *TransactionService) refresh(ctx context.Context, repo period.Repository, t core.Transaction) error {
	if !t.Assigned() {
		return nil
	}
	_, err := s.periods.RefreshStats(ctx, repo, *t.PeriodID)
	return err
}
