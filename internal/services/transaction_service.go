package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/store"
)

// TransactionService orchestrates ledger writes: persist first, then publish
// a change event so the refresh worker can rewarm cached reports. A publish
// failure never fails the request; the write already happened.
type TransactionService struct {
	transactions store.TransactionWriter
	goals        store.GoalWriter
	amqpClient   *amqp.Client
}

func NewTransactionService(transactions store.TransactionWriter, goals store.GoalWriter, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		goals:        goals,
		amqpClient:   amqpClient,
	}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	id, err := s.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publishChange(ctx, tx.CoupleID, id, amqp.OpCreate)

	return id, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, coupleID string, id int64) error {
	if err := s.transactions.DeleteTransaction(ctx, coupleID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishChange(ctx, coupleID, id, amqp.OpDelete)

	return nil
}

func (s *TransactionService) CreateGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}

	id, err := s.goals.CreateGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("save goal: %w", err)
	}
	return id, nil
}

func (s *TransactionService) UpdateGoalAmount(ctx context.Context, coupleID string, id int64, current core.Money) error {
	if err := current.Validate(); err != nil {
		return err
	}

	if err := s.goals.UpdateGoalAmount(ctx, coupleID, id, current); err != nil {
		return fmt.Errorf("update goal amount: %w", err)
	}
	return nil
}

func (s *TransactionService) DeleteGoal(ctx context.Context, coupleID string, id int64) error {
	if err := s.goals.DeleteGoal(ctx, coupleID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

func (s *TransactionService) publishChange(ctx context.Context, coupleID string, id int64, op string) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change event",
			"transaction_id", id, "op", op)
		return
	}

	if err := s.amqpClient.PublishTransactionChanged(ctx, coupleID, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"transaction_id", id, "op", op, "error", err)
	}
}
