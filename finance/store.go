/*
store.go - Persistence interface for the records the engine consumes

PURPOSE:
  The engine itself is pure: it takes slices of records and returns results.
  The host (api package) loads those slices through this interface, already
  scoped to one user, and writes back the only mutable state the engine
  produces (goal progress).

IMPLEMENTATIONS:
  - finance/store/memory.go: In-memory for tests and dev
  - store/sqlite/sqlite.go: SQLite persistence

CONCURRENCY:
  Implementations must be safe for concurrent use. Goal progress updates are
  read-modify-write; callers serialize them per goal (see api.goalLocks).

SEE ALSO:
  - api/handlers.go: loads records and calls the engine
*/
package finance

import (
	"context"
	"time"
)

// Store loads and saves per-user records.
type Store interface {
	// TransactionsInRange returns the user's transactions dated in [from, to],
	// ordered by date. A zero from/to leaves that side open.
	TransactionsInRange(ctx context.Context, userID UserID, from, to time.Time) ([]Transaction, error)
	SaveTransaction(ctx context.Context, tx Transaction) error

	Categories(ctx context.Context, userID UserID) ([]Category, error)
	SaveCategory(ctx context.Context, c Category) error

	Budgets(ctx context.Context, userID UserID) ([]Budget, error)
	SaveBudget(ctx context.Context, b Budget) error

	Goals(ctx context.Context, userID UserID) ([]Goal, error)
	// Goal returns a NotFoundError when the goal does not exist.
	Goal(ctx context.Context, userID UserID, id GoalID) (*Goal, error)
	SaveGoal(ctx context.Context, g Goal) error

	Debts(ctx context.Context, userID UserID) ([]Debt, error)
	SaveDebt(ctx context.Context, d Debt) error

	// Reset removes every record. Used by demo loading.
	Reset(ctx context.Context) error
}
