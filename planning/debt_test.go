package planning_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/planning"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func debt(name, balance, rate, minimum string) finance.Debt {
	dbt := finance.NewDebt(name, d(balance), d(rate), d(minimum))
	dbt.ID = finance.DebtID("d-" + name)
	return dbt
}

func plan(t *testing.T, strategy planning.Strategy, extra string, debts ...finance.Debt) *planning.PayoffPlan {
	t.Helper()
	p, err := planning.NewDebtPlanner().Plan(planning.PayoffRequest{
		Debts:        debts,
		ExtraPayment: d(extra),
		Strategy:     strategy,
	})
	require.NoError(t, err)
	return p
}

// =============================================================================
// AMORTIZATION
// =============================================================================

func TestDebtPlan_ZeroInterestSingleDebt(t *testing.T) {
	// GIVEN: 1200 at 0% with a 100 minimum and no extra
	// WHEN: Planning
	// THEN: Twelve months, final balance zero

	p := plan(t, planning.Avalanche, "0", debt("card", "1200", "0", "100"))

	require.Len(t, p.Timeline, 12)
	assert.True(t, p.Timeline[11].TotalBalance.IsZero())
	assert.Equal(t, 12, p.MonthsToPayoff)
	assert.True(t, p.TotalInterestPaid.IsZero())
	assert.Equal(t, "1200.00", p.TotalPaid.StringFixed(2))
	assert.False(t, p.CapReached)
	require.Len(t, p.PayoffOrder, 1)
	assert.Equal(t, 12, p.PayoffOrder[0].Month)
	assert.Equal(t, []string{"card"}, p.Timeline[11].PaidOff)
}

func TestDebtPlan_InterestRoundedMonthly(t *testing.T) {
	// 1000 at 12% accrues 10.00 in month one
	p := plan(t, planning.Avalanche, "0", debt("loan", "1000", "12", "100"))

	first := p.Timeline[0]
	assert.Equal(t, "10.00", first.Interest.StringFixed(2))
	assert.Equal(t, "910.00", first.TotalBalance.StringFixed(2))
	assert.True(t, p.TotalPaid.Equal(d("1000").Add(p.TotalInterestPaid)))
}

func TestDebtPlan_FreedMinimumsRollOver(t *testing.T) {
	// GIVEN: Two interest-free debts with 50 minimums each
	// THEN: Once the small one closes its minimum goes to the large one,
	//       so the 100/month budget clears 1100 in 11 months

	p := plan(t, planning.Snowball, "0",
		debt("big", "1000", "0", "50"),
		debt("small", "100", "0", "50"),
	)

	assert.Equal(t, 11, p.MonthsToPayoff)
	assert.Equal(t, "1100.00", p.TotalPaid.StringFixed(2))
	require.Len(t, p.PayoffOrder, 2)
	assert.Equal(t, "small", p.PayoffOrder[0].Name)
	assert.Equal(t, 2, p.PayoffOrder[0].Month)
	for _, snap := range p.Timeline {
		assert.True(t, snap.Payment.LessThanOrEqual(p.MonthlyBudget))
	}
}

func TestDebtPlan_ZeroBalanceDebtClosesImmediately(t *testing.T) {
	p := plan(t, planning.Avalanche, "0", debt("paid", "0", "10", "25"))

	assert.Empty(t, p.Timeline)
	assert.Equal(t, 0, p.MonthsToPayoff)
	require.Len(t, p.PayoffOrder, 1)
	assert.Equal(t, 0, p.PayoffOrder[0].Month)
}

func TestDebtPlan_TimelineDatedFromStart(t *testing.T) {
	p, err := planning.NewDebtPlanner().Plan(planning.PayoffRequest{
		Debts:     []finance.Debt{debt("card", "300", "0", "100")},
		StartDate: finance.NewDate(2025, 1, 15),
	})
	require.NoError(t, err)

	require.NotNil(t, p.Timeline[0].Date)
	assert.Equal(t, finance.NewDate(2025, 2, 15), *p.Timeline[0].Date)
	assert.Equal(t, planning.Avalanche, p.Strategy)
}

func TestDebtPlan_CapReached(t *testing.T) {
	// GIVEN: A minimum payment below the monthly interest
	// WHEN: Simulating with a short cap
	// THEN: The cap is reported instead of looping forever

	planner := &planning.DebtPlanner{MaxMonths: 24}
	p, err := planner.Plan(planning.PayoffRequest{Debts: []finance.Debt{debt("card", "10000", "24", "100")}})
	require.NoError(t, err)

	assert.True(t, p.CapReached)
	assert.Len(t, p.Timeline, 24)
	assert.Equal(t, 24, p.MonthsToPayoff)
	assert.True(t, p.RemainingBalance.GreaterThan(d("10000")))
}

func TestDebtPlan_DefaultCap(t *testing.T) {
	p := plan(t, planning.Avalanche, "0", debt("card", "10000", "24", "100"))
	assert.True(t, p.CapReached)
	assert.Len(t, p.Timeline, planning.DefaultMaxPayoffMonths)
}

func TestDebtPlan_DoesNotModifyInput(t *testing.T) {
	debts := []finance.Debt{debt("card", "500", "10", "100")}
	_ = plan(t, planning.Avalanche, "50", debts...)
	assert.Equal(t, "500", debts[0].Balance.Decimal.String())
}

// =============================================================================
// STRATEGIES
// =============================================================================

func TestDebtPlan_PriorityOrder(t *testing.T) {
	debts := []finance.Debt{
		debt("auto", "8000", "6", "200"),
		debt("card", "3000", "22", "90"),
		debt("store", "400", "22", "25"),
		debt("student", "15000", "4.5", "150"),
	}

	av := plan(t, planning.Avalanche, "0", debts...)
	assert.Equal(t, []string{"store", "card", "auto", "student"}, av.PriorityOrder)

	sn := plan(t, planning.Snowball, "0", debts...)
	assert.Equal(t, []string{"store", "card", "auto", "student"}, sn.PriorityOrder)
}

func TestDebtPlan_TieBreakByPriority(t *testing.T) {
	a := debt("a", "1000", "10", "50")
	b := debt("b", "1000", "10", "50")
	b.Priority = -1

	av := plan(t, planning.Avalanche, "0", a, b)
	assert.Equal(t, []string{"b", "a"}, av.PriorityOrder)

	sn := plan(t, planning.Snowball, "0", a, b)
	assert.Equal(t, []string{"b", "a"}, sn.PriorityOrder)
}

func TestDebtCompare_AvalancheNeverCostsMore(t *testing.T) {
	cases := []struct {
		name  string
		extra string
		debts []finance.Debt
	}{
		{"small high-rate debt", "200", []finance.Debt{
			debt("A", "5000", "18", "150"),
			debt("B", "15000", "6", "300"),
		}},
		{"large high-rate debt", "200", []finance.Debt{
			debt("A", "1000", "5", "50"),
			debt("B", "5000", "20", "100"),
		}},
		{"no extra", "0", []finance.Debt{
			debt("A", "2500", "9", "75"),
			debt("B", "700", "27", "35"),
			debt("C", "12000", "3", "220"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := planning.NewDebtPlanner().Compare(planning.PayoffRequest{Debts: tc.debts, ExtraPayment: d(tc.extra)})
			require.NoError(t, err)

			assert.True(t, c.Avalanche.MonthlyBudget.Equal(c.Snowball.MonthlyBudget))
			assert.True(t, c.Avalanche.TotalInterestPaid.LessThanOrEqual(c.Snowball.TotalInterestPaid),
				"avalanche %s > snowball %s", c.Avalanche.TotalInterestPaid, c.Snowball.TotalInterestPaid)
			assert.False(t, c.InterestSaved.IsNegative())
			assert.Equal(t, planning.Avalanche, c.Recommended)
		})
	}
}

func TestDebtCompare_StrategiesDiverge(t *testing.T) {
	// GIVEN: The smallest debt carries the lowest rate
	// THEN: Avalanche pays strictly less interest

	c, err := planning.NewDebtPlanner().Compare(planning.PayoffRequest{
		Debts:        []finance.Debt{debt("A", "1000", "5", "50"), debt("B", "5000", "20", "100")},
		ExtraPayment: d("200"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, c.Avalanche.PriorityOrder)
	assert.Equal(t, []string{"A", "B"}, c.Snowball.PriorityOrder)
	assert.True(t, c.InterestSaved.IsPositive())
	assert.Equal(t, "A", c.Snowball.PayoffOrder[0].Name)
}

// =============================================================================
// SIMULATOR
// =============================================================================

func TestPayoffSimulator_ResetReplays(t *testing.T) {
	sim, err := planning.NewDebtPlanner().Simulator(planning.PayoffRequest{
		Debts: []finance.Debt{debt("card", "1000", "18", "100")},
	})
	require.NoError(t, err)

	first, ok := sim.Next()
	require.True(t, ok)
	_, ok = sim.Next()
	require.True(t, ok)
	assert.Equal(t, 2, sim.Month())

	sim.Reset()
	assert.Equal(t, 0, sim.Month())
	again, ok := sim.Next()
	require.True(t, ok)
	assert.Equal(t, first, again)
}

func TestPayoffSimulator_StopsWhenDone(t *testing.T) {
	sim, err := planning.NewDebtPlanner().Simulator(planning.PayoffRequest{
		Debts: []finance.Debt{debt("card", "150", "0", "100")},
	})
	require.NoError(t, err)

	_, ok := sim.Next()
	assert.True(t, ok)
	last, ok := sim.Next()
	assert.True(t, ok)
	assert.Equal(t, "50.00", last.Payment.StringFixed(2))

	_, ok = sim.Next()
	assert.False(t, ok)
	assert.True(t, sim.Done())
	assert.False(t, sim.CapReached())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestDebtPlan_Validation(t *testing.T) {
	missingMin := debt("card", "100", "10", "10")
	missingMin.MinimumPayment = decimal.NullDecimal{}

	cases := []struct {
		name string
		req  planning.PayoffRequest
		msg  string
	}{
		{"no debts", planning.PayoffRequest{}, "debts array is required and must not be empty"},
		{"missing minimum", planning.PayoffRequest{Debts: []finance.Debt{missingMin}}, "card is missing minimumPayment"},
		{"negative balance", planning.PayoffRequest{Debts: []finance.Debt{debt("x", "-1", "10", "10")}}, "x balance must not be negative"},
		{"bad strategy", planning.PayoffRequest{Debts: []finance.Debt{debt("x", "1", "1", "1")}, Strategy: "random"}, ""},
		{"negative extra", planning.PayoffRequest{Debts: []finance.Debt{debt("x", "1", "1", "1")}, ExtraPayment: d("-5")}, "extraPayment must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := planning.NewDebtPlanner().Plan(tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, finance.ErrInvalidArgument)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, err.Error())
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := planning.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, planning.Avalanche, s)

	s, err = planning.ParseStrategy("snowball")
	require.NoError(t, err)
	assert.Equal(t, planning.Snowball, s)

	_, err = planning.ParseStrategy("blizzard")
	assert.ErrorIs(t, err, finance.ErrInvalidArgument)
}
