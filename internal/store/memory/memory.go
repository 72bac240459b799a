// Package memory is an in-process store used by tests and the default dev
// backend. It mirrors the SQLite repository's behavior closely enough that
// handlers and services cannot tell them apart.
package memory

import (
	"context"
	"sync"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type Store struct {
	mu           sync.Mutex
	nextID       int64
	transactions []core.Transaction
	categories   []core.Category
	goals        []core.SavingsGoal
	invitations  []core.Invitation
}

func New() *Store {
	return &Store{categories: defaultCategories()}
}

// defaultCategories seeds the same taxonomy the SQLite migrations install.
func defaultCategories() []core.Category {
	return []core.Category{
		{ID: 1, Name: "Salary", Icon: "💼", Color: "#81b29a", Type: core.Income, IsDefault: true},
		{ID: 2, Name: "Other income", Icon: "💶", Color: "#6a994e", Type: core.Income, IsDefault: true},
		{ID: 3, Name: "Housing", Icon: "🏠", Color: "#3d405b", Type: core.Expense, IsDefault: true},
		{ID: 4, Name: "Groceries", Icon: "🛒", Color: "#e07a5f", Type: core.Expense, IsDefault: true},
		{ID: 5, Name: "Transport", Icon: "🚌", Color: "#f2cc8f", Type: core.Expense, IsDefault: true},
		{ID: 6, Name: "Dining out", Icon: "🍽️", Color: "#bc6c25", Type: core.Expense, IsDefault: true},
		{ID: 7, Name: "Health", Icon: "🩺", Color: "#669bbc", Type: core.Expense, IsDefault: true},
		{ID: 8, Name: "Leisure", Icon: "🎟️", Color: "#9d4edd", Type: core.Expense, IsDefault: true},
		{ID: 9, Name: "Other", Icon: "📦", Color: "#8d99ae", Type: core.Expense, IsDefault: true},
	}
}

func (s *Store) nextIdentity() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextIdentity()
	s.transactions = append(s.transactions, tx)
	return tx.ID, nil
}

func (s *Store) DeleteTransaction(_ context.Context, coupleID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.transactions {
		if tx.ID == id && tx.CoupleID == coupleID {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListTransactions(_ context.Context, coupleID string, from, to time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.CoupleID != coupleID {
			continue
		}
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) ListGoals(_ context.Context, coupleID string) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.SavingsGoal
	for _, g := range s.goals {
		if g.CoupleID == coupleID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.SavingsGoal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.nextIdentity()
	s.goals = append(s.goals, g)
	return g.ID, nil
}

func (s *Store) UpdateGoalAmount(_ context.Context, coupleID string, id int64, current core.Money) error {
	if current.Cents < 0 {
		return core.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].ID == id && s.goals[i].CoupleID == coupleID {
			s.goals[i].CurrentAmount = current
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteGoal(_ context.Context, coupleID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.ID == id && g.CoupleID == coupleID {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateInvitation(_ context.Context, inv core.Invitation) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.nextIdentity()
	s.invitations = append(s.invitations, inv)
	return inv.ID, nil
}

func (s *Store) GetInvitationByToken(_ context.Context, token string) (core.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return core.Invitation{}, store.ErrNotFound
}

func (s *Store) MarkInvitationAccepted(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invitations {
		if s.invitations[i].Token == token {
			s.invitations[i].Status = core.InvitationAccepted
			return nil
		}
	}
	return store.ErrNotFound
}

var _ store.Backend = (*Store)(nil)
