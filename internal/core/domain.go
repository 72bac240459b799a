package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"

	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"

	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

type (
	// TransactionType discriminates money coming in from money going out.
	// The literal values are persisted as-is, so they must stay stable.
	TransactionType string

	// Priority ranks savings goals.
	Priority string

	// InvitationStatus tracks the lifecycle of a couple-pairing invitation.
	InvitationStatus string

	Money struct {
		Cents int64 `json:"cents"`
	}

	Transaction struct {
		ID          int64
		CoupleID    string
		CategoryID  int64
		Type        TransactionType
		Amount      Money
		Date        time.Time
		Description string
		Notes       string
	}

	Category struct {
		ID        int64
		Name      string
		Icon      string
		Color     string
		Type      TransactionType
		IsDefault bool
	}

	SavingsGoal struct {
		ID            int64
		CoupleID      string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    time.Time // zero when no deadline set
		Priority      Priority
	}

	// Invitation pairs a second user into an existing couple. It is its own
	// entity with its own token and expiry columns; no other table is
	// overloaded to carry pairing state.
	Invitation struct {
		ID           int64
		Token        string
		CoupleID     string
		InviterID    string
		InviteeEmail string
		Status       InvitationStatus
		CreatedAt    time.Time
		ExpiresAt    time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCoupleID    = errors.New("empty couple id")
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrInvalidEmail     = errors.New("invalid invitee email")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.CoupleID) == "" {
		return ErrEmptyCoupleID
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.CoupleID) == "" {
		return ErrEmptyCoupleID
	}
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if len(g.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !g.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// IsCompleted reports whether the goal is fully funded. Derived, never stored.
func (g SavingsGoal) IsCompleted() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}

func (i Invitation) Validate() error {
	if strings.TrimSpace(i.Token) == "" {
		return errors.New("empty invitation token")
	}
	if strings.TrimSpace(i.CoupleID) == "" {
		return ErrEmptyCoupleID
	}
	if strings.TrimSpace(i.InviteeEmail) == "" || !strings.Contains(i.InviteeEmail, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Expired reports whether the invitation can no longer be accepted at now.
func (i Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
