/*
Package sqlite provides a SQLite-backed implementation of finance.Store.

PURPOSE:
  Persists the records the engine consumes (transactions, categories,
  budgets with their allocations, goals, debts) so the HTTP host can load
  them per user. The engine never sees this package; it receives plain
  slices.

KEY TABLES:
  transactions:       One row per money movement, amount as decimal text
  categories:         Hierarchy via parent_id plus the resolved path
  budgets:            Budget header rows
  budget_allocations: Category allocations, replaced with their budget
  goals:              Savings goals; the only rows the engine mutates
  debts:              Debts; nullable amounts stay NULL

AMOUNTS:
  Every monetary value is stored as TEXT and parsed with shopspring/decimal,
  so nothing round-trips through float64.

INDEXES:
  - idx_transactions_user_date: range loads for analytics (hot path)
  - idx_allocations_budget: allocation lookup per budget

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Multi-row writes (a budget and its
  allocations) run inside one database transaction.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/finance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - finance/store.go: Interface definition
  - finance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// Store implements finance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ finance.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		amount TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		category_id TEXT,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		is_recurring BOOLEAN DEFAULT FALSE,
		description TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date
		ON transactions(user_id, date);

	CREATE TABLE IF NOT EXISTS categories (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		parent_id TEXT,
		path_json TEXT,
		level INTEGER DEFAULT 0,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS budgets (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		period TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		alert_threshold TEXT,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS budget_allocations (
		user_id TEXT NOT NULL,
		budget_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		category_id TEXT NOT NULL,
		allocated_amount TEXT NOT NULL,
		is_flexible BOOLEAN DEFAULT FALSE,
		priority INTEGER DEFAULT 0,
		PRIMARY KEY (user_id, budget_id, category_id),
		FOREIGN KEY (user_id, budget_id) REFERENCES budgets(user_id, id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_budget
		ON budget_allocations(user_id, budget_id);

	CREATE TABLE IF NOT EXISTS goals (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		target_amount TEXT NOT NULL,
		current_amount TEXT NOT NULL,
		start_date TEXT NOT NULL,
		target_date TEXT NOT NULL,
		status TEXT NOT NULL,
		monthly_contribution TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS debts (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		balance TEXT,
		interest_rate TEXT,
		minimum_payment TEXT,
		priority INTEGER DEFAULT 0,
		PRIMARY KEY (user_id, id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// SaveTransaction inserts or replaces a transaction.
func (s *Store) SaveTransaction(ctx context.Context, tx finance.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO transactions
		(user_id, id, amount, tx_type, category_id, date, status, is_recurring, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		tx.UserID,
		tx.ID,
		tx.Amount.String(),
		tx.Type,
		nullString(string(tx.CategoryID)),
		formatDate(tx.Date),
		tx.Status,
		tx.IsRecurring,
		nullString(tx.Description),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// TransactionsInRange returns transactions dated in [from, to], ordered by date.
func (s *Store) TransactionsInRange(ctx context.Context, userID finance.UserID, from, to time.Time) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT user_id, id, amount, tx_type, category_id, date, status, is_recurring, description
		FROM transactions
		WHERE user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, formatDate(from))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, formatDate(to))
	}
	query += ` ORDER BY date ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []finance.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (finance.Transaction, error) {
	var (
		tx          finance.Transaction
		amount      string
		categoryID  sql.NullString
		date        string
		description sql.NullString
	)
	err := rows.Scan(
		&tx.UserID, &tx.ID, &amount, &tx.Type, &categoryID,
		&date, &tx.Status, &tx.IsRecurring, &description,
	)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return tx, fmt.Errorf("transaction %s: bad amount %q: %w", tx.ID, amount, err)
	}
	if tx.Date, err = parseDate(date); err != nil {
		return tx, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	tx.CategoryID = finance.CategoryID(categoryID.String)
	tx.Description = description.String
	return tx, nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (s *Store) SaveCategory(ctx context.Context, c finance.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathJSON, _ := json.Marshal(c.Path)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO categories (user_id, id, name, parent_id, path_json, level)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.UserID, c.ID, c.Name, nullString(string(c.ParentID)), string(pathJSON), c.Level)
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (s *Store) Categories(ctx context.Context, userID finance.UserID) ([]finance.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, id, name, parent_id, path_json, level
		FROM categories WHERE user_id = ? ORDER BY level, name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []finance.Category
	for rows.Next() {
		var (
			c        finance.Category
			parentID sql.NullString
			pathJSON sql.NullString
		)
		if err := rows.Scan(&c.UserID, &c.ID, &c.Name, &parentID, &pathJSON, &c.Level); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ParentID = finance.CategoryID(parentID.String)
		if pathJSON.Valid && pathJSON.String != "" && pathJSON.String != "null" {
			if err := json.Unmarshal([]byte(pathJSON.String), &c.Path); err != nil {
				return nil, fmt.Errorf("category %s: bad path: %w", c.ID, err)
			}
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// =============================================================================
// BUDGETS
// =============================================================================

// SaveBudget replaces a budget and its allocations atomically.
func (s *Store) SaveBudget(ctx context.Context, b finance.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx,
		`DELETE FROM budget_allocations WHERE user_id = ? AND budget_id = ?`, b.UserID, b.ID); err != nil {
		return fmt.Errorf("failed to clear allocations: %w", err)
	}
	_, err = sqlTx.ExecContext(ctx, `
		INSERT OR REPLACE INTO budgets
		(user_id, id, name, total_amount, period, start_date, end_date, alert_threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.UserID, b.ID, b.Name, b.TotalAmount.String(), b.Period,
		formatDate(b.StartDate), formatDate(b.EndDate), nullDecimal(b.AlertThreshold, !b.AlertThreshold.IsZero()))
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}

	for i, a := range b.CategoryAllocations {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO budget_allocations
			(user_id, budget_id, position, category_id, allocated_amount, is_flexible, priority)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, b.UserID, b.ID, i, a.CategoryID, a.AllocatedAmount.String(), a.IsFlexible, a.Priority)
		if err != nil {
			if isUniqueConstraintError(err) {
				return finance.InvalidArgument("categoryAllocations", "category %q is allocated twice", a.CategoryID)
			}
			return fmt.Errorf("failed to save allocation: %w", err)
		}
	}

	return sqlTx.Commit()
}

func (s *Store) Budgets(ctx context.Context, userID finance.UserID) ([]finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, id, name, total_amount, period, start_date, end_date, alert_threshold
		FROM budgets WHERE user_id = ? ORDER BY start_date, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}

	var budgets []finance.Budget
	for rows.Next() {
		var (
			b         finance.Budget
			total     string
			start     string
			end       string
			threshold sql.NullString
		)
		if err := rows.Scan(&b.UserID, &b.ID, &b.Name, &total, &b.Period, &start, &end, &threshold); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		var dec decoder
		b.TotalAmount = dec.decimal("total_amount", total)
		b.StartDate = dec.date("start_date", start)
		b.EndDate = dec.date("end_date", end)
		if threshold.Valid {
			b.AlertThreshold = dec.decimal("alert_threshold", threshold.String)
		}
		if dec.err != nil {
			rows.Close()
			return nil, fmt.Errorf("budget %s: %w", b.ID, dec.err)
		}
		budgets = append(budgets, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range budgets {
		allocs, err := s.allocations(ctx, budgets[i].UserID, budgets[i].ID)
		if err != nil {
			return nil, err
		}
		budgets[i].CategoryAllocations = allocs
	}
	return budgets, nil
}

func (s *Store) allocations(ctx context.Context, userID finance.UserID, budgetID finance.BudgetID) ([]finance.CategoryAllocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, allocated_amount, is_flexible, priority
		FROM budget_allocations WHERE user_id = ? AND budget_id = ? ORDER BY position
	`, userID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var out []finance.CategoryAllocation
	for rows.Next() {
		var (
			a      finance.CategoryAllocation
			amount string
		)
		if err := rows.Scan(&a.CategoryID, &amount, &a.IsFlexible, &a.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		var dec decoder
		if a.AllocatedAmount = dec.decimal("allocated_amount", amount); dec.err != nil {
			return nil, fmt.Errorf("budget %s allocation %s: %w", budgetID, a.CategoryID, dec.err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// GOALS
// =============================================================================

func (s *Store) SaveGoal(ctx context.Context, g finance.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals
		(user_id, id, name, target_amount, current_amount, start_date, target_date, status, monthly_contribution, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.UserID, g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		formatDate(g.StartDate), formatDate(g.TargetDate), g.Status,
		nullDecimal(g.MonthlyContribution.Decimal, g.MonthlyContribution.Valid),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

const goalColumns = `user_id, id, name, target_amount, current_amount, start_date, target_date, status, monthly_contribution`

func (s *Store) Goals(ctx context.Context, userID finance.UserID) ([]finance.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY target_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []finance.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Goal returns a NotFoundError when the goal does not exist.
func (s *Store) Goal(ctx context.Context, userID finance.UserID, id finance.GoalID) (*finance.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &finance.NotFoundError{Entity: "goal", ID: string(id), Message: "Goal not found"}
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner) (finance.Goal, error) {
	var (
		g       finance.Goal
		target  string
		current string
		start   string
		end     string
		monthly sql.NullString
	)
	if err := row.Scan(&g.UserID, &g.ID, &g.Name, &target, &current, &start, &end, &g.Status, &monthly); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return g, err
		}
		return g, fmt.Errorf("failed to scan goal: %w", err)
	}
	var dec decoder
	g.TargetAmount = dec.decimal("target_amount", target)
	g.CurrentAmount = dec.decimal("current_amount", current)
	g.StartDate = dec.date("start_date", start)
	g.TargetDate = dec.date("target_date", end)
	g.MonthlyContribution = dec.nullDecimal("monthly_contribution", monthly)
	if dec.err != nil {
		return g, fmt.Errorf("goal %s: %w", g.ID, dec.err)
	}
	return g, nil
}

// =============================================================================
// DEBTS
// =============================================================================

func (s *Store) SaveDebt(ctx context.Context, d finance.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO debts (user_id, id, name, balance, interest_rate, minimum_payment, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.UserID, d.ID, d.Name,
		nullDecimal(d.Balance.Decimal, d.Balance.Valid),
		nullDecimal(d.InterestRate.Decimal, d.InterestRate.Valid),
		nullDecimal(d.MinimumPayment.Decimal, d.MinimumPayment.Valid),
		d.Priority)
	if err != nil {
		return fmt.Errorf("failed to save debt: %w", err)
	}
	return nil
}

func (s *Store) Debts(ctx context.Context, userID finance.UserID) ([]finance.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, id, name, balance, interest_rate, minimum_payment, priority
		FROM debts WHERE user_id = ? ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer rows.Close()

	var debts []finance.Debt
	for rows.Next() {
		var (
			d                       finance.Debt
			balance, rate, minimum sql.NullString
		)
		if err := rows.Scan(&d.UserID, &d.ID, &d.Name, &balance, &rate, &minimum, &d.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		var dec decoder
		d.Balance = dec.nullDecimal("balance", balance)
		d.InterestRate = dec.nullDecimal("interest_rate", rate)
		d.MinimumPayment = dec.nullDecimal("minimum_payment", minimum)
		if dec.err != nil {
			return nil, fmt.Errorf("debt %s: %w", d.ID, dec.err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transactions", "categories", "budget_allocations", "budgets", "goals", "debts"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d decimal.Decimal, valid bool) sql.NullString {
	if !valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// decoder parses stored column text and keeps the first failure.
type decoder struct {
	err error
}

func (d *decoder) decimal(column, s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("bad %s %q: %w", column, s, err)
	}
	return v
}

func (d *decoder) nullDecimal(column string, s sql.NullString) decimal.NullDecimal {
	if !s.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.decimal(column, s.String))
}

func (d *decoder) date(column, s string) time.Time {
	t, err := parseDate(s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", column, err)
	}
	return t
}

func formatDate(t time.Time) string { return finance.DateOf(t).Format(time.DateOnly) }

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return t, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed"))
}
