package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"budget/internal/core"
	"budget/internal/storage"
)

const timestampLayout = time.RFC3339Nano

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
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

	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const transactionColumns = `id, user_id, type, category, amount_cents, date, created_at`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                   core.Transaction
		kind, date, created string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &kind, &t.Category, &t.Amount.Cents, &date, &created); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.Date = d

	ts, err := time.Parse(timestampLayout, created)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	t.CreatedAt = ts
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ?
		 ORDER BY date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}
	t.CreatedAt = t.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, string(t.Kind), t.Category, t.Amount.Cents, t.Date.String(), t.CreatedAt.Format(timestampLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents)

	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, ownerID, id string, u storage.TransactionUpdate) (core.Transaction, error) {
	if err := u.Apply(core.Transaction{OwnerID: ownerID}).Validate(); err != nil {
		return core.Transaction{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE transactions SET type = ?, category = ?, amount_cents = ?, date = ?
		 WHERE id = ? AND user_id = ?
		 RETURNING `+transactionColumns,
		string(u.Kind), u.Category, u.Amount.Cents, u.Date.String(), id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, ownerID string) (core.BudgetDoc, error) {
	var (
		raw              string
		created, updated string
		doc              = core.BudgetDoc{OwnerID: ownerID}
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT categories, total_budget_cents, created_at, updated_at FROM budgets WHERE user_id = ?`, ownerID).
		Scan(&raw, &doc.TotalBudget.Cents, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetDoc{}, storage.ErrNotFound
	}
	if err != nil {
		return core.BudgetDoc{}, fmt.Errorf("get budget: %w", err)
	}

	if doc.Categories, err = storage.DecodeBudgetCategories([]byte(raw)); err != nil {
		return core.BudgetDoc{}, err
	}
	if doc.CreatedAt, err = time.Parse(timestampLayout, created); err != nil {
		return core.BudgetDoc{}, fmt.Errorf("parse created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(timestampLayout, updated); err != nil {
		return core.BudgetDoc{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return doc, nil
}

func (r *Repository) UpsertBudget(ctx context.Context, doc core.BudgetDoc) (core.BudgetDoc, error) {
	if doc.OwnerID == "" {
		return core.BudgetDoc{}, core.ErrMissingOwner
	}
	raw, err := storage.EncodeBudgetCategories(doc.Categories)
	if err != nil {
		return core.BudgetDoc{}, err
	}
	now := r.now().UTC().Format(timestampLayout)

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, categories, total_budget_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     categories = excluded.categories,
		     total_budget_cents = excluded.total_budget_cents,
		     updated_at = excluded.updated_at`,
		doc.OwnerID, string(raw), doc.TotalBudget.Cents, now, now)
	if err != nil {
		return core.BudgetDoc{}, fmt.Errorf("upsert budget: %w", err)
	}
	return r.GetBudget(ctx, doc.OwnerID)
}

func (r *Repository) GetProfile(ctx context.Context, ownerID string) (core.Profile, error) {
	var (
		p       = core.Profile{OwnerID: ownerID}
		updated string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT full_name, yearly_income, monthly_expenses, financial_goal, currency, updated_at
		 FROM profiles WHERE user_id = ?`, ownerID).
		Scan(&p.FullName, &p.YearlyIncome, &p.MonthlyExpenses, &p.FinancialGoal, &p.Currency, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(timestampLayout, updated); err != nil {
		return core.Profile{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return p, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if p.OwnerID == "" {
		return core.Profile{}, core.ErrMissingOwner
	}
	p.UpdatedAt = r.now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, full_name, yearly_income, monthly_expenses, financial_goal, currency, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     full_name = excluded.full_name,
		     yearly_income = excluded.yearly_income,
		     monthly_expenses = excluded.monthly_expenses,
		     financial_goal = excluded.financial_goal,
		     currency = excluded.currency,
		     updated_at = excluded.updated_at`,
		p.OwnerID, p.FullName, p.YearlyIncome, p.MonthlyExpenses, p.FinancialGoal, p.Currency, p.UpdatedAt.Format(timestampLayout))
	if err != nil {
		return core.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}
