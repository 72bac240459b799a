package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
	"bilancio/internal/store/memory"
)

func TestTransactionService_CreateAndDelete(t *testing.T) {
	mem := memory.New()
	svc := NewTransactionService(mem, mem, nil) // no broker in tests
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, core.Transaction{
		CoupleID:    "couple-1",
		CategoryID:  4,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1250},
		Date:        time.Now(),
		Description: "coffee beans",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero id")
	}

	if err := svc.DeleteTransaction(ctx, "couple-1", id); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	err = svc.DeleteTransaction(ctx, "couple-1", id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_CreateInvalid(t *testing.T) {
	svc := NewTransactionService(memory.New(), memory.New(), nil)

	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{
			name: "zero amount",
			tx: core.Transaction{
				CoupleID: "couple-1", CategoryID: 4, Type: core.Expense,
				Amount: core.Money{}, Date: time.Now(), Description: "x",
			},
			want: core.ErrInvalidAmount,
		},
		{
			name: "bad type",
			tx: core.Transaction{
				CoupleID: "couple-1", CategoryID: 4, Type: "TRANSFER",
				Amount: core.Money{Cents: 100}, Date: time.Now(), Description: "x",
			},
			want: core.ErrInvalidType,
		},
		{
			name: "empty description",
			tx: core.Transaction{
				CoupleID: "couple-1", CategoryID: 4, Type: core.Expense,
				Amount: core.Money{Cents: 100}, Date: time.Now(),
			},
			want: core.ErrEmptyDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), tt.tx)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionService_Goals(t *testing.T) {
	mem := memory.New()
	svc := NewTransactionService(mem, mem, nil)
	ctx := context.Background()

	id, err := svc.CreateGoal(ctx, core.SavingsGoal{
		CoupleID:     "couple-1",
		Name:         "Emergency fund",
		TargetAmount: core.Money{Cents: 300000},
		Priority:     core.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	if err := svc.UpdateGoalAmount(ctx, "couple-1", id, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("UpdateGoalAmount: %v", err)
	}

	goals, err := mem.ListGoals(ctx, "couple-1")
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(goals) != 1 || goals[0].CurrentAmount.Cents != 50000 {
		t.Errorf("unexpected goals after update: %+v", goals)
	}

	if err := svc.DeleteGoal(ctx, "couple-1", id); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	err = svc.DeleteGoal(ctx, "couple-1", id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
