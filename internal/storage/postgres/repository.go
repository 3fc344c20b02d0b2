// Package postgres stores transactions, budgets and profiles in PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"budget/internal/core"
	"budget/internal/storage"
)

type Repository struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Repository)(nil)

// NewRepository connects to databaseURL, applies migrations and returns a
// ready repository.
func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const transactionColumns = `id::text, user_id, type, category, amount_cents, date, created_at`

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t    core.Transaction
		kind string
		date time.Time
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &kind, &t.Category, &t.Amount.Cents, &date, &t.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)
	t.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
	return t, nil
}

// validID reports whether id can match a UUID primary key. Anything else
// cannot exist and is treated as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *Repository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = $1
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
	if !validID(id) {
		return core.Transaction{}, storage.ErrNotFound
	}
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
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
	if !validID(t.ID) {
		return core.Transaction{}, fmt.Errorf("insert transaction: id %q is not a uuid", t.ID)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	saved, err := scanTransaction(r.pool.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, type, category, amount_cents, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+transactionColumns,
		t.ID, t.OwnerID, string(t.Kind), t.Category, t.Amount.Cents, t.Date.Time, t.CreatedAt.UTC()))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to Postgres",
		"id", saved.ID,
		"kind", saved.Kind,
		"amount_cents", saved.Amount.Cents)

	return saved, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, ownerID, id string, u storage.TransactionUpdate) (core.Transaction, error) {
	if err := u.Apply(core.Transaction{OwnerID: ownerID}).Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !validID(id) {
		return core.Transaction{}, storage.ErrNotFound
	}

	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`UPDATE transactions SET type = $1, category = $2, amount_cents = $3, date = $4
		 WHERE id = $5 AND user_id = $6
		 RETURNING `+transactionColumns,
		string(u.Kind), u.Category, u.Amount.Cents, u.Date.Time, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, ownerID string) (core.BudgetDoc, error) {
	var (
		raw []byte
		doc = core.BudgetDoc{OwnerID: ownerID}
	)
	err := r.pool.QueryRow(ctx,
		`SELECT categories, total_budget_cents, created_at, updated_at FROM budgets WHERE user_id = $1`, ownerID).
		Scan(&raw, &doc.TotalBudget.Cents, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.BudgetDoc{}, storage.ErrNotFound
	}
	if err != nil {
		return core.BudgetDoc{}, fmt.Errorf("get budget: %w", err)
	}
	if doc.Categories, err = storage.DecodeBudgetCategories(raw); err != nil {
		return core.BudgetDoc{}, err
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

	err = r.pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, categories, total_budget_cents, created_at, updated_at)
		 VALUES ($1, $2::jsonb, $3, now(), now())
		 ON CONFLICT (user_id) DO UPDATE SET
		     categories = EXCLUDED.categories,
		     total_budget_cents = EXCLUDED.total_budget_cents,
		     updated_at = now()
		 RETURNING created_at, updated_at`,
		doc.OwnerID, string(raw), doc.TotalBudget.Cents).
		Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return core.BudgetDoc{}, fmt.Errorf("upsert budget: %w", err)
	}
	return doc, nil
}

func (r *Repository) GetProfile(ctx context.Context, ownerID string) (core.Profile, error) {
	p := core.Profile{OwnerID: ownerID}
	err := r.pool.QueryRow(ctx,
		`SELECT full_name, yearly_income, monthly_expenses, financial_goal, currency, updated_at
		 FROM profiles WHERE user_id = $1`, ownerID).
		Scan(&p.FullName, &p.YearlyIncome, &p.MonthlyExpenses, &p.FinancialGoal, &p.Currency, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if p.OwnerID == "" {
		return core.Profile{}, core.ErrMissingOwner
	}
	if p.Currency == "" {
		p.Currency = core.DefaultCurrency
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, full_name, yearly_income, monthly_expenses, financial_goal, currency, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		     full_name = EXCLUDED.full_name,
		     yearly_income = EXCLUDED.yearly_income,
		     monthly_expenses = EXCLUDED.monthly_expenses,
		     financial_goal = EXCLUDED.financial_goal,
		     currency = EXCLUDED.currency,
		     updated_at = now()
		 RETURNING updated_at`,
		p.OwnerID, p.FullName, p.YearlyIncome, p.MonthlyExpenses, p.FinancialGoal, p.Currency).
		Scan(&p.UpdatedAt)
	if err != nil {
		return core.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}
