package store

import (
	"context"
	"errors"
	"time"

	"bilancio/internal/core"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvitationExpired = errors.New("invitation expired")
	ErrInvitationUsed    = errors.New("invitation already accepted")
)

// Ports for outbound persistence adapters. The insight engine and the HTTP
// handlers only ever see these interfaces; SQLite and the in-memory store
// both satisfy them.
type (
	TransactionLister interface {
		// ListTransactions returns every transaction for a couple within the
		// inclusive [from, to] range.
		ListTransactions(ctx context.Context, coupleID string, from, to time.Time) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		DeleteTransaction(ctx context.Context, coupleID string, id int64) error
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	GoalLister interface {
		ListGoals(ctx context.Context, coupleID string) ([]core.SavingsGoal, error)
	}

	GoalWriter interface {
		CreateGoal(ctx context.Context, g core.SavingsGoal) (int64, error)
		UpdateGoalAmount(ctx context.Context, coupleID string, id int64, current core.Money) error
		DeleteGoal(ctx context.Context, coupleID string, id int64) error
	}

	// InvitationStore covers the couple-pairing insert/lookup/update sequence.
	InvitationStore interface {
		CreateInvitation(ctx context.Context, inv core.Invitation) (int64, error)
		GetInvitationByToken(ctx context.Context, token string) (core.Invitation, error)
		MarkInvitationAccepted(ctx context.Context, token string) error
	}

	// ReportCacheReader serves report payloads the refresh worker precomputed.
	// Backends without a durable cache simply don't implement it.
	ReportCacheReader interface {
		GetReportCache(ctx context.Context, coupleID, period string, periodStart time.Time) ([]byte, time.Time, error)
	}

	// ReportCacheInvalidator drops a couple's precomputed reports after a
	// write, so a warm read never serves pre-write numbers.
	ReportCacheInvalidator interface {
		DeleteReportCache(ctx context.Context, coupleID string) error
	}
)

// Backend bundles everything a fully featured deployment needs.
type Backend interface {
	TransactionLister
	TransactionWriter
	CategoryReader
	GoalLister
	GoalWriter
	InvitationStore
}
