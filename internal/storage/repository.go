package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable backend. It implements every store port.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ store.Backend                = (*SQLiteRepository)(nil)
	_ store.ReportCacheReader      = (*SQLiteRepository)(nil)
	_ store.ReportCacheInvalidator = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements store.TransactionWriter.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (couple_id, category_id, type, amount_cents, date, description, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.CoupleID, tx.CategoryID, string(tx.Type), tx.Amount.Cents, tx.Date, tx.Description, tx.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"couple_id", tx.CoupleID,
		"type", string(tx.Type),
		"amount_cents", tx.Amount.Cents)

	return id, nil
}

// DeleteTransaction soft deletes; aggregation queries filter deleted rows out.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, coupleID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND couple_id = ? AND deleted_at IS NULL`, id, coupleID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListTransactions implements store.TransactionLister.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, coupleID string, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, couple_id, category_id, type, amount_cents, date, description, notes
		FROM transactions
		WHERE couple_id = ? AND date >= ? AND date <= ? AND deleted_at IS NULL
		ORDER BY date, id`, coupleID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var typ string
		if err := rows.Scan(&tx.ID, &tx.CoupleID, &tx.CategoryID, &typ,
			&tx.Amount.Cents, &tx.Date, &tx.Description, &tx.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ListCategories implements store.CategoryReader.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, icon, color, type, is_default
		FROM categories ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &typ, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// ListGoals implements store.GoalLister.
func (r *SQLiteRepository) ListGoals(ctx context.Context, coupleID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, couple_id, name, target_cents, current_cents, target_date, priority
		FROM goals
		WHERE couple_id = ? AND deleted_at IS NULL
		ORDER BY id`, coupleID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var priority string
		var targetDate sql.NullTime
		if err := rows.Scan(&g.ID, &g.CoupleID, &g.Name, &g.TargetAmount.Cents,
			&g.CurrentAmount.Cents, &targetDate, &priority); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if targetDate.Valid {
			g.TargetDate = targetDate.Time
		}
		g.Priority = core.Priority(priority)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// CreateGoal implements store.GoalWriter.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}

	var targetDate any
	if !g.TargetDate.IsZero() {
		targetDate = g.TargetDate
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (couple_id, name, target_cents, current_cents, target_date, priority)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.CoupleID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, targetDate, string(g.Priority))
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) UpdateGoalAmount(ctx context.Context, coupleID string, id int64, current core.Money) error {
	if current.Cents < 0 {
		return core.ErrInvalidAmount
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET current_cents = ?
		WHERE id = ? AND couple_id = ? AND deleted_at IS NULL`, current.Cents, id, coupleID)
	if err != nil {
		return fmt.Errorf("update goal amount: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, coupleID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND couple_id = ? AND deleted_at IS NULL`, id, coupleID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateInvitation implements store.InvitationStore.
func (r *SQLiteRepository) CreateInvitation(ctx context.Context, inv core.Invitation) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (token, couple_id, inviter_id, invitee_email, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.Token, inv.CoupleID, inv.InviterID, inv.InviteeEmail,
		string(inv.Status), inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		return 0, fmt.Errorf("insert invitation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("invitation id: %w", err)
	}

	slog.InfoContext(ctx, "Invitation created",
		"id", id, "couple_id", inv.CoupleID, "expires_at", inv.ExpiresAt)

	return id, nil
}

func (r *SQLiteRepository) GetInvitationByToken(ctx context.Context, token string) (core.Invitation, error) {
	var inv core.Invitation
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token, couple_id, inviter_id, invitee_email, status, created_at, expires_at
		FROM invitations WHERE token = ?`, token).Scan(
		&inv.ID, &inv.Token, &inv.CoupleID, &inv.InviterID,
		&inv.InviteeEmail, &status, &inv.CreatedAt, &inv.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invitation{}, store.ErrNotFound
	}
	if err != nil {
		return core.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}
	inv.Status = core.InvitationStatus(status)
	return inv, nil
}

func (r *SQLiteRepository) MarkInvitationAccepted(ctx context.Context, token string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE invitations SET status = 'accepted'
		WHERE token = ? AND status = 'pending'`, token)
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("accept invitation rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	// Acceptance is what makes the pairing real, so this is where the couple
	// row gets created.
	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO couples (id, created_at)
		SELECT couple_id, CURRENT_TIMESTAMP FROM invitations WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("create couple: %w", err)
	}

	return tx.Commit()
}

// SaveReportCache stores a precomputed report payload for a period so the
// dashboard can read warm data after the worker recomputes it.
func (r *SQLiteRepository) SaveReportCache(ctx context.Context, coupleID, period string, periodStart time.Time, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO report_cache (couple_id, period, period_start, payload, refreshed_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (couple_id, period, period_start)
		DO UPDATE SET payload = excluded.payload, refreshed_at = CURRENT_TIMESTAMP`,
		coupleID, period, periodStart, string(payload))
	if err != nil {
		return fmt.Errorf("save report cache: %w", err)
	}
	return nil
}

// DeleteReportCache drops every cached report for a couple. Called after a
// write so readers fall back to a fresh computation until the worker rewarms.
func (r *SQLiteRepository) DeleteReportCache(ctx context.Context, coupleID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM report_cache WHERE couple_id = ?`, coupleID)
	if err != nil {
		return fmt.Errorf("delete report cache: %w", err)
	}
	return nil
}

// GetReportCache returns the cached payload, or store.ErrNotFound when the
// worker has not computed this period yet.
func (r *SQLiteRepository) GetReportCache(ctx context.Context, coupleID, period string, periodStart time.Time) ([]byte, time.Time, error) {
	var payload string
	var refreshedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT payload, refreshed_at FROM report_cache
		WHERE couple_id = ? AND period = ? AND period_start = ?`,
		coupleID, period, periodStart).Scan(&payload, &refreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get report cache: %w", err)
	}
	return []byte(payload), refreshedAt, nil
}
