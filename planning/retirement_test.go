package planning_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/planning"
)

func retirementParams() finance.RetirementParams {
	return finance.RetirementParams{
		CurrentAge:          35,
		RetirementAge:       65,
		CurrentSavings:      d("25000"),
		MonthlyContribution: d("500"),
		ExpectedReturn:      d("7"),
		InflationRate:       decimal.NewNullDecimal(d("2.5")),
		TargetAmount:        d("1000000"),
	}
}

func TestRetirementProjection_Deterministic(t *testing.T) {
	// GIVEN: Identical params
	// WHEN: Projecting twice
	// THEN: Bit-identical results

	rp := planning.NewRetirementProjector()
	a, err := rp.Project(retirementParams())
	require.NoError(t, err)
	b, err := rp.Project(retirementParams())
	require.NoError(t, err)

	assert.Equal(t, a.ProjectedAmount.String(), b.ProjectedAmount.String())
	assert.Equal(t, a.NominalAmount.String(), b.NominalAmount.String())
	assert.Equal(t, a.RequiredMonthlyContribution.String(), b.RequiredMonthlyContribution.String())
	assert.Equal(t, len(a.YearlyBreakdown), len(b.YearlyBreakdown))
}

func TestRetirementProjection_ZeroReturn(t *testing.T) {
	p := finance.RetirementParams{
		CurrentAge:          30,
		RetirementAge:       31,
		CurrentSavings:      d("1000"),
		MonthlyContribution: d("100"),
		TargetAmount:        d("2000"),
	}

	proj, err := planning.NewRetirementProjector().Project(p)
	require.NoError(t, err)

	assert.Equal(t, 12, proj.Months)
	assert.Equal(t, "2200.00", proj.ProjectedAmount.StringFixed(2))
	assert.False(t, proj.InflationAdjusted)
	assert.True(t, proj.OnTrack)
	require.Len(t, proj.YearlyBreakdown, 1)
	assert.Equal(t, 31, proj.YearlyBreakdown[0].Age)
	assert.Equal(t, "2200.00", proj.YearlyBreakdown[0].Contributions.StringFixed(2))
	assert.True(t, proj.YearlyBreakdown[0].Growth.IsZero())
	require.Len(t, proj.Recommendations, 1)
	assert.Equal(t, planning.RecOnTrack, proj.Recommendations[0].Type)
}

func TestRetirementProjection_InflationAdjusted(t *testing.T) {
	p := finance.RetirementParams{
		CurrentAge:          30,
		RetirementAge:       31,
		CurrentSavings:      d("1000"),
		MonthlyContribution: d("100"),
		InflationRate:       decimal.NewNullDecimal(d("10")),
	}

	proj, err := planning.NewRetirementProjector().Project(p)
	require.NoError(t, err)

	assert.Equal(t, "2200.00", proj.NominalAmount.StringFixed(2))
	assert.Equal(t, "2000.00", proj.ProjectedAmount.StringFixed(2))
	assert.True(t, proj.InflationAdjusted)
}

func TestRetirementProjection_GrowthCompounds(t *testing.T) {
	proj, err := planning.NewRetirementProjector().Project(retirementParams())
	require.NoError(t, err)

	assert.Len(t, proj.YearlyBreakdown, 30)
	assert.True(t, proj.TotalGrowth.IsPositive())
	assert.True(t, proj.NominalAmount.GreaterThan(proj.ProjectedAmount))
	for i := 1; i < len(proj.YearlyBreakdown); i++ {
		assert.True(t, proj.YearlyBreakdown[i].Balance.GreaterThan(proj.YearlyBreakdown[i-1].Balance))
	}
}

func TestRetirementProjection_ShortfallRecommendations(t *testing.T) {
	// GIVEN: 100/month for one year against a 10000 target, no growth
	p := finance.RetirementParams{
		CurrentAge:          30,
		RetirementAge:       31,
		MonthlyContribution: d("100"),
		TargetAmount:        d("10000"),
	}

	proj, err := planning.NewRetirementProjector().Project(p)
	require.NoError(t, err)

	// THEN: The shortfall is reported with a contribution and an age to fix it
	assert.False(t, proj.OnTrack)
	assert.Equal(t, "8800.00", proj.Shortfall.StringFixed(2))
	assert.Equal(t, "833.34", proj.RequiredMonthlyContribution.StringFixed(2))

	require.Len(t, proj.Recommendations, 2)
	assert.Equal(t, planning.RecIncreaseContribution, proj.Recommendations[0].Type)
	assert.Equal(t, "733.34", proj.Recommendations[0].Amount.StringFixed(2))
	assert.Equal(t, planning.RecDelayRetirement, proj.Recommendations[1].Type)
	assert.Equal(t, 39, proj.Recommendations[1].Age)
}

func TestRetirementProjection_RequiredContributionReachesTarget(t *testing.T) {
	p := retirementParams()
	first, err := planning.NewRetirementProjector().Project(p)
	require.NoError(t, err)
	require.False(t, first.OnTrack)

	p.MonthlyContribution = first.RequiredMonthlyContribution
	second, err := planning.NewRetirementProjector().Project(p)
	require.NoError(t, err)

	assert.True(t, second.OnTrack, "projected %s, target %s", second.ProjectedAmount, second.TargetAmount)
}

func TestRetirementProjection_ReturnBelowInflation(t *testing.T) {
	p := retirementParams()
	p.ExpectedReturn = d("2")
	p.InflationRate = decimal.NewNullDecimal(d("3"))

	proj, err := planning.NewRetirementProjector().Project(p)
	require.NoError(t, err)

	last := proj.Recommendations[len(proj.Recommendations)-1]
	assert.Equal(t, planning.RecReviewReturns, last.Type)
}

func TestRetirementProjection_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *finance.RetirementParams)
	}{
		{"retirement before current", func(p *finance.RetirementParams) { p.RetirementAge = 30 }},
		{"retirement equals current", func(p *finance.RetirementParams) { p.RetirementAge = p.CurrentAge }},
		{"too young", func(p *finance.RetirementParams) { p.CurrentAge = 12 }},
		{"too old", func(p *finance.RetirementParams) { p.RetirementAge = 120 }},
		{"negative savings", func(p *finance.RetirementParams) { p.CurrentSavings = d("-1") }},
		{"negative contribution", func(p *finance.RetirementParams) { p.MonthlyContribution = d("-1") }},
		{"return at -100", func(p *finance.RetirementParams) { p.ExpectedReturn = d("-100") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := retirementParams()
			tc.mutate(&p)
			_, err := planning.NewRetirementProjector().Project(p)
			assert.ErrorIs(t, err, finance.ErrInvalidArgument)
		})
	}
}
