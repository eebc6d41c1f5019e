package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/finance/store"
)

func expense(id string, user finance.UserID, date time.Time, amount string) finance.Transaction {
	return finance.Transaction{
		ID:     finance.TransactionID(id),
		UserID: user,
		Amount: finance.MustDecimal(amount),
		Type:   finance.TxExpense,
		Date:   date,
		Status: finance.StatusCompleted,
	}
}

func TestMemory_TransactionsOrderedAndScoped(t *testing.T) {
	// GIVEN: Transactions saved out of order for two users
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveTransaction(ctx, expense("t3", "u1", finance.NewDate(2025, 3, 20), "30")))
	require.NoError(t, m.SaveTransaction(ctx, expense("t1", "u1", finance.NewDate(2025, 1, 5), "10")))
	require.NoError(t, m.SaveTransaction(ctx, expense("t2", "u1", finance.NewDate(2025, 2, 10), "20")))
	require.NoError(t, m.SaveTransaction(ctx, expense("x1", "u2", finance.NewDate(2025, 2, 10), "99")))

	// WHEN: Loading all of u1's transactions
	txs, err := m.TransactionsInRange(ctx, "u1", time.Time{}, time.Time{})
	require.NoError(t, err)

	// THEN: Only u1's, in date order
	require.Len(t, txs, 3)
	assert.Equal(t, finance.TransactionID("t1"), txs[0].ID)
	assert.Equal(t, finance.TransactionID("t2"), txs[1].ID)
	assert.Equal(t, finance.TransactionID("t3"), txs[2].ID)

	// AND: Range bounds are inclusive
	txs, err = m.TransactionsInRange(ctx, "u1", finance.NewDate(2025, 2, 10), finance.NewDate(2025, 3, 20))
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestMemory_SaveReplacesByID(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveTransaction(ctx, expense("t1", "u1", finance.NewDate(2025, 1, 5), "10")))
	require.NoError(t, m.SaveTransaction(ctx, expense("t1", "u1", finance.NewDate(2025, 1, 6), "15")))

	txs, err := m.TransactionsInRange(ctx, "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(15)))
}

func TestMemory_GoalNotFound(t *testing.T) {
	m := store.NewMemory()

	_, err := m.Goal(context.Background(), "u1", "missing")

	assert.ErrorIs(t, err, finance.ErrNotFound)
	assert.Equal(t, "Goal not found", err.Error())
}

func TestMemory_ReturnedSlicesAreCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveGoal(ctx, finance.Goal{ID: "g1", UserID: "u1", Name: "Trip"}))

	goals, err := m.Goals(ctx, "u1")
	require.NoError(t, err)
	goals[0].Name = "changed"

	g, err := m.Goal(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, "Trip", g.Name)
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveDebt(ctx, finance.Debt{ID: "d1", UserID: "u1"}))
	require.NoError(t, m.SaveCategory(ctx, finance.Category{ID: "c1", UserID: "u1"}))

	require.NoError(t, m.Reset(ctx))

	debts, _ := m.Debts(ctx, "u1")
	cats, _ := m.Categories(ctx, "u1")
	assert.Empty(t, debts)
	assert.Empty(t, cats)
}

func TestMemory_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a'+i%26)) + string(rune('a'+i/26))
			_ = m.SaveTransaction(ctx, expense(id, "u1", finance.NewDate(2025, 1, 1+i%28), "1"))
		}(i)
	}
	wg.Wait()

	txs, err := m.TransactionsInRange(ctx, "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, txs, 50)
}
