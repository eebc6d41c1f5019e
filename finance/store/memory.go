// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions map[finance.UserID][]finance.Transaction
	categories   map[finance.UserID][]finance.Category
	budgets      map[finance.UserID][]finance.Budget
	goals        map[finance.UserID][]finance.Goal
	debts        map[finance.UserID][]finance.Debt
}

func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.transactions = make(map[finance.UserID][]finance.Transaction)
	m.categories = make(map[finance.UserID][]finance.Category)
	m.budgets = make(map[finance.UserID][]finance.Budget)
	m.goals = make(map[finance.UserID][]finance.Goal)
	m.debts = make(map[finance.UserID][]finance.Debt)
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

// SaveTransaction inserts or replaces by ID, keeping the slice date-ordered.
func (m *Memory) SaveTransaction(_ context.Context, tx finance.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := removeByID(m.transactions[tx.UserID], func(t finance.Transaction) bool { return t.ID == tx.ID })

	// Binary search for insertion point
	i := sort.Search(len(txs), func(i int) bool {
		return txs[i].Date.After(tx.Date)
	})
	txs = append(txs, finance.Transaction{})
	copy(txs[i+1:], txs[i:])
	txs[i] = tx
	m.transactions[tx.UserID] = txs
	return nil
}

func (m *Memory) TransactionsInRange(_ context.Context, userID finance.UserID, from, to time.Time) ([]finance.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []finance.Transaction
	for _, tx := range m.transactions[userID] {
		if !from.IsZero() && finance.DateOf(tx.Date).Before(finance.DateOf(from)) {
			continue
		}
		if !to.IsZero() && finance.DateOf(tx.Date).After(finance.DateOf(to)) {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

func (m *Memory) SaveCategory(_ context.Context, c finance.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs := removeByID(m.categories[c.UserID], func(x finance.Category) bool { return x.ID == c.ID })
	m.categories[c.UserID] = append(cs, c)
	return nil
}

func (m *Memory) Categories(_ context.Context, userID finance.UserID) ([]finance.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]finance.Category(nil), m.categories[userID]...), nil
}

func (m *Memory) SaveBudget(_ context.Context, b finance.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.CategoryAllocations = append([]finance.CategoryAllocation(nil), b.CategoryAllocations...)
	bs := removeByID(m.budgets[b.UserID], func(x finance.Budget) bool { return x.ID == b.ID })
	m.budgets[b.UserID] = append(bs, b)
	return nil
}

func (m *Memory) Budgets(_ context.Context, userID finance.UserID) ([]finance.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]finance.Budget(nil), m.budgets[userID]...), nil
}

func (m *Memory) SaveGoal(_ context.Context, g finance.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	gs := removeByID(m.goals[g.UserID], func(x finance.Goal) bool { return x.ID == g.ID })
	m.goals[g.UserID] = append(gs, g)
	return nil
}

func (m *Memory) Goals(_ context.Context, userID finance.UserID) ([]finance.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]finance.Goal(nil), m.goals[userID]...), nil
}

func (m *Memory) Goal(_ context.Context, userID finance.UserID, id finance.GoalID) (*finance.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.goals[userID] {
		if g.ID == id {
			out := g
			return &out, nil
		}
	}
	return nil, &finance.NotFoundError{Entity: "goal", ID: string(id), Message: "Goal not found"}
}

func (m *Memory) SaveDebt(_ context.Context, d finance.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds := removeByID(m.debts[d.UserID], func(x finance.Debt) bool { return x.ID == d.ID })
	m.debts[d.UserID] = append(ds, d)
	return nil
}

func (m *Memory) Debts(_ context.Context, userID finance.UserID) ([]finance.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]finance.Debt(nil), m.debts[userID]...), nil
}

// removeByID returns a copy of items without the elements matching.
func removeByID[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items)+1)
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}

var _ finance.Store = (*Memory)(nil)
