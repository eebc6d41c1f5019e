package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/analytics"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// TOTALS AND RECONCILIATION
// =============================================================================

func TestAnalyzeSpending_Totals(t *testing.T) {
	// GIVEN: A month of mixed transactions
	// WHEN: Analyzing March with default filters
	// THEN: Failed and out-of-window transactions are ignored, pending are included,
	//       transfers are not part of the default types

	result, err := analytics.AnalyzeSpending(marchTransactions(), categories, analytics.SpendingQuery{
		Filter: analytics.Filter{Range: marchWindow()},
	})
	require.NoError(t, err)

	assert.Equal(t, "1400.34", result.TotalSpent.StringFixed(2))
	assert.Equal(t, "3000.00", result.TotalIncome.StringFixed(2))
	assert.Equal(t, "1599.66", result.NetAmount.StringFixed(2))
	assert.Equal(t, "53.32", result.SavingsRate.StringFixed(2))
	assert.Equal(t, 6, result.TransactionCount)
	assert.Equal(t, "280.07", result.AverageExpense.StringFixed(2))
	assert.Equal(t, finance.GranularityMonth, result.GroupBy)
}

func TestAnalyzeSpending_CategoryBreakdownReconciles(t *testing.T) {
	// GIVEN: Amounts with sub-cent precision
	// WHEN: Breaking spend down by category
	// THEN: TotalSpent equals the sum of the category amounts exactly

	result, err := analytics.AnalyzeSpending(marchTransactions(), categories, analytics.SpendingQuery{
		Filter: analytics.Filter{Range: marchWindow()},
	})
	require.NoError(t, err)

	sum := decimal.Zero
	pct := decimal.Zero
	for _, c := range result.SpendingByCategory {
		sum = sum.Add(c.Amount)
		pct = pct.Add(c.Percentage)
	}
	assert.True(t, result.TotalSpent.Equal(sum), "total %s != sum %s", result.TotalSpent, sum)
	assert.InDelta(t, 100.0, pct.InexactFloat64(), 0.05)

	require.Len(t, result.SpendingByCategory, 3)
	assert.Equal(t, "Rent", result.SpendingByCategory[0].CategoryName)
	assert.Equal(t, "Food", result.SpendingByCategory[1].CategoryName)
	assert.Equal(t, "Living > Food", result.SpendingByCategory[1].CategoryPath)
	assert.Equal(t, "190.34", result.SpendingByCategory[1].Amount.StringFixed(2))
	assert.Equal(t, 3, result.SpendingByCategory[1].TransactionCount)
	assert.Equal(t, finance.UncategorizedName, result.SpendingByCategory[2].CategoryName)
	assert.Equal(t, finance.CategoryID(""), result.SpendingByCategory[2].CategoryID)

	top, ok := result.TopCategory()
	require.True(t, ok)
	assert.Equal(t, finance.CategoryID("c-rent"), top.CategoryID)
}

func TestAnalyzeSpending_ReconcilesForManySmallAmounts(t *testing.T) {
	// GIVEN: Many amounts that each carry a fraction of a cent
	var txs []finance.Transaction
	cats := []finance.CategoryID{"c-food", "c-rent", "c-fun"}
	for i := 0; i < 300; i++ {
		amount := decimal.NewFromFloat(0.333).Add(decimal.NewFromInt(int64(i % 7)))
		txs = append(txs, tx("t", finance.TxExpense, cats[i%3], march(1+i%28), amount.String()))
	}

	result, err := analytics.AnalyzeSpending(txs, categories, analytics.SpendingQuery{
		Filter:  analytics.Filter{Range: marchWindow()},
		GroupBy: finance.GranularityWeek,
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, c := range result.SpendingByCategory {
		sum = sum.Add(c.Amount)
	}
	series := decimal.Zero
	for _, p := range result.TimeSeries {
		series = series.Add(p.Spent)
	}
	assert.True(t, result.TotalSpent.Equal(sum))
	assert.True(t, result.TotalSpent.Equal(series))
}

// =============================================================================
// FILTERS
// =============================================================================

func TestAnalyzeSpending_ExcludePending(t *testing.T) {
	result, err := analytics.AnalyzeSpending(marchTransactions(), categories, analytics.SpendingQuery{
		Filter: analytics.Filter{Range: marchWindow(), IncludePending: analytics.Bool(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, "1360.34", result.TotalSpent.StringFixed(2))
}

func TestAnalyzeSpending_TransferCountedButNotSummed(t *testing.T) {
	result, err := analytics.AnalyzeSpending(marchTransactions(), categories, analytics.SpendingQuery{
		Filter: analytics.Filter{
			Range: marchWindow(),
			Types: []finance.TransactionType{finance.TxExpense, finance.TxTransfer},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, result.TransactionCount) // 5 expenses + 1 transfer
	assert.Equal(t, "1400.34", result.TotalSpent.StringFixed(2))
	assert.True(t, result.TotalIncome.IsZero())
}

func TestAnalyzeSpending_CategoryAndAmountFilters(t *testing.T) {
	result, err := analytics.AnalyzeSpending(marchTransactions(), categories, analytics.SpendingQuery{
		Filter: analytics.Filter{
			Range:      marchWindow(),
			Categories: []finance.CategoryID{"c-food"},
			MinAmount:  decimal.NewNullDecimal(d("45")),
			MaxAmount:  decimal.NewNullDecimal(d("100")),
		},
	})
	require.NoError(t, err)

	// 100.33 is above max, 40 is below min: only 50.01 remains
	assert.Equal(t, "50.01", result.TotalSpent.StringFixed(2))
	assert.Equal(t, 1, result.TransactionCount)
}

func TestAnalyzeSpending_ExcludeRecurring(t *testing.T) {
	rent := tx("r", finance.TxExpense, "c-rent", march(1), "1200")
	rent.IsRecurring = true
	txs := []finance.Transaction{rent, tx("f", finance.TxExpense, "c-food", march(2), "25")}

	result, err := analytics.AnalyzeSpending(txs, categories, analytics.SpendingQuery{
		Filter: analytics.Filter{IncludeRecurring: analytics.Bool(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, "25.00", result.TotalSpent.StringFixed(2))
}

// =============================================================================
// TIME SERIES
// =============================================================================

func TestAnalyzeSpending_TimeSeriesSorted(t *testing.T) {
	result, err := analytics.AnalyzeSpending(marchTransactions(), categories, analytics.SpendingQuery{})
	require.NoError(t, err)

	require.Len(t, result.TimeSeries, 2)
	assert.Equal(t, finance.BucketKey("2025-03"), result.TimeSeries[0].Period)
	assert.Equal(t, finance.NewDate(2025, time.March, 1), result.TimeSeries[0].Start)
	assert.Equal(t, finance.BucketKey("2025-04"), result.TimeSeries[1].Period)
	assert.Equal(t, "70.00", result.TimeSeries[1].Spent.StringFixed(2))
	assert.Equal(t, "-70.00", result.TimeSeries[1].Net.StringFixed(2))
}

// =============================================================================
// SOFT-EMPTY AND HARD-FAILURE
// =============================================================================

func TestAnalyzeSpending_InvertedWindowIsEmpty(t *testing.T) {
	// GIVEN: End date before start date
	// WHEN: Analyzing
	// THEN: A zeroed result, no error

	result, err := analytics.AnalyzeSpending(marchTransactions(), categories, analytics.SpendingQuery{
		Filter: analytics.Filter{Range: finance.NewDateRange(march(31), march(1))},
	})
	require.NoError(t, err)

	assert.True(t, result.TotalSpent.IsZero())
	assert.True(t, result.TotalIncome.IsZero())
	assert.True(t, result.NetAmount.IsZero())
	assert.NotNil(t, result.SpendingByCategory)
	assert.Empty(t, result.SpendingByCategory)
	assert.Empty(t, result.TimeSeries)
}

func TestAnalyzeSpending_NoTransactions(t *testing.T) {
	result, err := analytics.AnalyzeSpending(nil, nil, analytics.SpendingQuery{})
	require.NoError(t, err)
	assert.True(t, result.SavingsRate.IsZero())
	assert.True(t, result.AverageExpense.IsZero())
	_, ok := result.TopCategory()
	assert.False(t, ok)
}

func TestAnalyzeSpending_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		q    analytics.SpendingQuery
	}{
		{"granularity", analytics.SpendingQuery{GroupBy: "fortnight"}},
		{"category id", analytics.SpendingQuery{Filter: analytics.Filter{Categories: []finance.CategoryID{"bad id"}}}},
		{"transaction type", analytics.SpendingQuery{Filter: analytics.Filter{Types: []finance.TransactionType{"gift"}}}},
		{"negative min", analytics.SpendingQuery{Filter: analytics.Filter{MinAmount: decimal.NewNullDecimal(d("-1"))}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analytics.AnalyzeSpending(marchTransactions(), categories, tc.q)
			assert.ErrorIs(t, err, finance.ErrInvalidArgument)
		})
	}
}
