package analytics_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/analytics"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func marchBudget(allocs ...finance.CategoryAllocation) finance.Budget {
	return finance.Budget{
		ID:                  "b-march",
		UserID:              "u1",
		Name:                "March",
		TotalAmount:         d("1000"),
		Period:              finance.BudgetMonthly,
		StartDate:           march(1),
		EndDate:             march(31),
		CategoryAllocations: allocs,
	}
}

func alloc(cat finance.CategoryID, amount string) finance.CategoryAllocation {
	return finance.CategoryAllocation{CategoryID: cat, AllocatedAmount: d(amount)}
}

func spend(cat finance.CategoryID, amounts ...string) []finance.Transaction {
	var out []finance.Transaction
	for i, a := range amounts {
		out = append(out, tx("s", finance.TxExpense, cat, march(2+i), a))
	}
	return out
}

// =============================================================================
// VARIANCE
// =============================================================================

func TestBudgetVariance_OverBudget(t *testing.T) {
	// GIVEN: A 1000 budget with 500 allocated to Food
	// WHEN: 600 is spent on Food within the period
	// THEN: spent 600, remaining -100, utilization 120, status over

	budgets := []finance.Budget{marchBudget(alloc("c-food", "500"))}
	txs := spend("c-food", "250", "350")

	v, err := analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-march", txs, categories, finance.DateRange{})
	require.NoError(t, err)

	require.Len(t, v.Allocations, 1)
	a := v.Allocations[0]
	assert.Equal(t, "Food", a.CategoryName)
	assert.Equal(t, "600.00", a.SpentAmount.StringFixed(2))
	assert.Equal(t, "-100.00", a.RemainingAmount.StringFixed(2))
	assert.True(t, a.UtilizationPercentage.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, analytics.StatusOver, a.Status)
	assert.True(t, a.AlertTriggered)
	assert.Equal(t, 2, a.TransactionCount)

	assert.Equal(t, "600.00", v.TotalSpent.StringFixed(2))
	assert.Equal(t, "400.00", v.RemainingAmount.StringFixed(2))
	assert.Equal(t, "500.00", v.UnallocatedAmount.StringFixed(2))
	assert.Equal(t, analytics.StatusUnder, v.Status)
	assert.Len(t, v.OverBudget(), 1)
	assert.Empty(t, v.Alerts())
}

func TestBudgetVariance_StatusMatchesUtilization(t *testing.T) {
	// GIVEN: Spend exactly at, just under and just over the allocation
	// THEN: status is over iff utilization > 100, at iff == 100

	cases := []struct {
		spent  string
		status analytics.VarianceStatus
	}{
		{"500", analytics.StatusAt},
		{"499.90", analytics.StatusUnder},
		{"500.05", analytics.StatusOver},
		{"0", analytics.StatusUnder},
		{"500.01", analytics.StatusOver},
		{"499.99", analytics.StatusUnder},
	}
	for _, tc := range cases {
		budgets := []finance.Budget{marchBudget(alloc("c-food", "500"))}
		v, err := analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-march", spend("c-food", tc.spent), categories, finance.DateRange{})
		require.NoError(t, err)

		a := v.Allocations[0]
		assert.Equal(t, tc.status, a.Status, "spent %s", tc.spent)
		hundred := decimal.NewFromInt(100)
		assert.Equal(t, a.UtilizationPercentage.GreaterThan(hundred), a.Status == analytics.StatusOver)
		assert.Equal(t, a.UtilizationPercentage.Equal(hundred), a.Status == analytics.StatusAt)
	}
}

func TestBudgetVariance_OverspendNeverReportsAt(t *testing.T) {
	// GIVEN: 1000.04 spent against 1000 allocated (100.004%)
	b := marchBudget(alloc("c-rent", "1000"))
	b.TotalAmount = d("2000")

	// WHEN: Variance is calculated
	v := analytics.NewBudgetVarianceCalculator().Variance(b, spend("c-rent", "1000.04"), categories, finance.DateRange{})

	// THEN: The allocation is over and its utilization does not round onto 100
	a := v.Allocations[0]
	assert.Equal(t, "-0.04", a.RemainingAmount.StringFixed(2))
	assert.Equal(t, analytics.StatusOver, a.Status)
	assert.Equal(t, "100.01", a.UtilizationPercentage.StringFixed(2))
	assert.Len(t, v.OverBudget(), 1)
}

func TestUtilization(t *testing.T) {
	cases := []struct {
		spent, allocated string
		pct              string
		status           analytics.VarianceStatus
	}{
		{"600", "500", "120.00", analytics.StatusOver},
		{"1000.04", "1000", "100.01", analytics.StatusOver},
		{"999.96", "1000", "99.99", analytics.StatusUnder},
		{"1000", "1000", "100.00", analytics.StatusAt},
		{"250", "1000", "25.00", analytics.StatusUnder},
		{"0", "0", "0.00", analytics.StatusUnder},
		{"50", "0", "0.00", analytics.StatusUnder},
	}
	for _, tc := range cases {
		pct, status := analytics.Utilization(d(tc.spent), d(tc.allocated))
		assert.Equal(t, tc.pct, pct.StringFixed(2), "%s/%s", tc.spent, tc.allocated)
		assert.Equal(t, tc.status, status, "%s/%s", tc.spent, tc.allocated)
	}
}

func TestBudgetVariance_AlertThreshold(t *testing.T) {
	// GIVEN: 400 of 500 spent (80%)
	budgets := []finance.Budget{marchBudget(alloc("c-food", "500"))}
	txs := spend("c-food", "400")

	// WHEN: Default threshold (80)
	v, err := analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-march", txs, categories, finance.DateRange{})
	require.NoError(t, err)

	// THEN: Alert triggers but the status stays under
	assert.True(t, v.Allocations[0].AlertTriggered)
	assert.Equal(t, analytics.StatusUnder, v.Allocations[0].Status)
	assert.Len(t, v.Alerts(), 1)

	// WHEN: The budget raises its own threshold to 90
	budgets[0].AlertThreshold = d("90")
	v, err = analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-march", txs, categories, finance.DateRange{})
	require.NoError(t, err)
	assert.False(t, v.Allocations[0].AlertTriggered)
	assert.True(t, v.AlertThreshold.Equal(d("90")))
}

func TestBudgetVariance_UnbudgetedSpend(t *testing.T) {
	budgets := []finance.Budget{marchBudget(alloc("c-food", "500"))}
	txs := append(spend("c-food", "100"), spend("c-fun", "75")...)

	v, err := analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-march", txs, categories, finance.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, "75.00", v.UnbudgetedSpent.StringFixed(2))
	assert.Equal(t, "175.00", v.TotalSpent.StringFixed(2))
	assert.Equal(t, "17.50", v.UtilizationPercentage.StringFixed(2))
}

func TestBudgetVariance_IgnoresSpendOutsidePeriod(t *testing.T) {
	budgets := []finance.Budget{marchBudget(alloc("c-food", "500"))}
	txs := []finance.Transaction{
		tx("a", finance.TxExpense, "c-food", finance.NewDate(2025, 2, 28), "300"),
		tx("b", finance.TxExpense, "c-food", march(31), "20"),
		tx("c", finance.TxExpense, "c-food", finance.NewDate(2025, 4, 1), "300"),
	}

	v, err := analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-march", txs, categories, finance.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "20.00", v.Allocations[0].SpentAmount.StringFixed(2))
}

func TestBudgetVariance_QueryWindowNarrowsPeriod(t *testing.T) {
	budgets := []finance.Budget{marchBudget(alloc("c-food", "500"))}
	txs := spend("c-food", "100", "100", "100") // March 2, 3, 4

	v, err := analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-march", txs, categories,
		finance.NewDateRange(march(3), finance.NewDate(2025, 4, 30)))
	require.NoError(t, err)

	assert.Equal(t, march(3), v.Window.Start)
	assert.Equal(t, march(31), v.Window.End)
	assert.Equal(t, "200.00", v.TotalSpent.StringFixed(2))
}

func TestBudgetVariance_NoOverlap(t *testing.T) {
	calc := analytics.NewBudgetVarianceCalculator()
	budgets := []finance.Budget{marchBudget(alloc("c-food", "500"))}
	may := finance.NewDateRange(finance.NewDate(2025, 5, 1), finance.NewDate(2025, 5, 31))

	v, err := calc.Calculate(budgets, "b-march", spend("c-food", "100"), categories, may)
	require.NoError(t, err)
	assert.False(t, v.HasOverlap)
	assert.True(t, v.TotalSpent.IsZero())

	assert.Empty(t, calc.CalculateAll(budgets, spend("c-food", "100"), categories, may))
	assert.Len(t, calc.CalculateAll(budgets, spend("c-food", "100"), categories, marchWindow()), 1)
}

// =============================================================================
// ERRORS
// =============================================================================

func TestBudgetVariance_UnknownBudget(t *testing.T) {
	budgets := []finance.Budget{marchBudget()}

	_, err := analytics.NewBudgetVarianceCalculator().Calculate(budgets, "b-april", nil, nil, finance.DateRange{})

	assert.ErrorIs(t, err, finance.ErrNotFound)
	assert.Equal(t, "Budget not found", err.Error())
}

func TestBudgetVariance_MalformedBudgetID(t *testing.T) {
	_, err := analytics.NewBudgetVarianceCalculator().Calculate(nil, "b march", nil, nil, finance.DateRange{})
	assert.ErrorIs(t, err, finance.ErrInvalidArgument)
}
