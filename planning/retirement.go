package planning

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// RETIREMENT PROJECTOR
// =============================================================================

const (
	DefaultMinWorkingAge = 18
	DefaultMaxAge        = 100

	// internalPlaces bounds decimal growth inside compounding loops.
	internalPlaces = 10
)

// RecommendationType tags a retirement recommendation.
type RecommendationType string

const (
	RecIncreaseContribution RecommendationType = "increase_contribution"
	RecDelayRetirement      RecommendationType = "delay_retirement"
	RecReviewReturns        RecommendationType = "review_returns"
	RecOnTrack              RecommendationType = "on_track"
)

type RetirementRecommendation struct {
	Type    RecommendationType `json:"type"`
	Message string             `json:"message"`
	Amount  decimal.Decimal    `json:"amount,omitempty"`
	Age     int                `json:"age,omitempty"`
}

// YearProjection is the balance at the end of one year of saving.
type YearProjection struct {
	Age           int             `json:"age"`
	Year          int             `json:"year"`
	Balance       decimal.Decimal `json:"balance"`
	Contributions decimal.Decimal `json:"contributions"` // cumulative, including starting savings
	Growth        decimal.Decimal `json:"growth"`        // cumulative
}

type RetirementProjection struct {
	YearsToRetirement int `json:"yearsToRetirement"`
	Months            int `json:"months"`

	// ProjectedAmount is in today's money when an inflation rate was given,
	// otherwise it equals NominalAmount.
	ProjectedAmount   decimal.Decimal `json:"projectedAmount"`
	NominalAmount     decimal.Decimal `json:"nominalAmount"`
	InflationAdjusted bool            `json:"inflationAdjusted"`

	TargetAmount                decimal.Decimal `json:"targetAmount"`
	Shortfall                   decimal.Decimal `json:"shortfall"`
	TotalContributions          decimal.Decimal `json:"totalContributions"`
	TotalGrowth                 decimal.Decimal `json:"totalGrowth"`
	RequiredMonthlyContribution decimal.Decimal `json:"requiredMonthlyContribution"`
	OnTrack                     bool            `json:"onTrack"`

	YearlyBreakdown []YearProjection           `json:"yearlyBreakdown"`
	Recommendations []RetirementRecommendation `json:"recommendations"`
}

// RetirementProjector compounds savings monthly up to retirement.
type RetirementProjector struct {
	MinAge int
	MaxAge int
}

func NewRetirementProjector() *RetirementProjector {
	return &RetirementProjector{MinAge: DefaultMinWorkingAge, MaxAge: DefaultMaxAge}
}

func (rp *RetirementProjector) bounds() (int, int) {
	lo, hi := rp.MinAge, rp.MaxAge
	if lo <= 0 {
		lo = DefaultMinWorkingAge
	}
	if hi <= 0 {
		hi = DefaultMaxAge
	}
	return lo, hi
}

// Validate rejects ages outside the working band and negative amounts.
func (rp *RetirementProjector) Validate(p finance.RetirementParams) error {
	lo, hi := rp.bounds()
	hundred := finance.Hundred.Neg()
	switch {
	case p.CurrentAge < lo || p.CurrentAge > hi:
		return finance.InvalidArgument("currentAge", "currentAge must be between %d and %d", lo, hi)
	case p.RetirementAge < lo || p.RetirementAge > hi:
		return finance.InvalidArgument("retirementAge", "retirementAge must be between %d and %d", lo, hi)
	case p.RetirementAge <= p.CurrentAge:
		return finance.InvalidArgument("retirementAge", "retirementAge must be greater than currentAge")
	case p.CurrentSavings.IsNegative():
		return finance.InvalidArgument("currentSavings", "currentSavings must not be negative")
	case p.MonthlyContribution.IsNegative():
		return finance.InvalidArgument("monthlyContribution", "monthlyContribution must not be negative")
	case p.TargetAmount.IsNegative():
		return finance.InvalidArgument("targetAmount", "targetAmount must not be negative")
	case p.ExpectedReturn.LessThanOrEqual(hundred):
		return finance.InvalidArgument("expectedReturn", "expectedReturn must be greater than -100")
	case p.InflationRate.Valid && p.InflationRate.Decimal.LessThanOrEqual(hundred):
		return finance.InvalidArgument("inflationRate", "inflationRate must be greater than -100")
	}
	return nil
}

// Project runs the compounding loop
//
//	balance = balance * (1 + expectedReturn/12/100) + monthlyContribution
//
// for (retirementAge - currentAge) * 12 months. The result is a pure function
// of the params: identical input gives bit-identical output.
func (rp *RetirementProjector) Project(p finance.RetirementParams) (*RetirementProjection, error) {
	if err := rp.Validate(p); err != nil {
		return nil, err
	}

	years := p.RetirementAge - p.CurrentAge
	months := years * 12
	rate := finance.MonthlyRate(p.ExpectedReturn)
	growthFactor := decimal.NewFromInt(1).Add(rate)
	contribution := finance.Round(p.MonthlyContribution)
	savings := finance.Round(p.CurrentSavings)

	proj := &RetirementProjection{
		YearsToRetirement: years,
		Months:            months,
		TargetAmount:      finance.Round(p.TargetAmount),
		YearlyBreakdown:   make([]YearProjection, 0, years),
	}

	balance := savings
	contributed := savings
	for m := 1; m <= months; m++ {
		balance = balance.Mul(growthFactor).Add(contribution).Round(internalPlaces)
		contributed = contributed.Add(contribution)
		if m%12 == 0 {
			b := finance.Round(balance)
			proj.YearlyBreakdown = append(proj.YearlyBreakdown, YearProjection{
				Age:           p.CurrentAge + m/12,
				Year:          m / 12,
				Balance:       b,
				Contributions: contributed,
				Growth:        b.Sub(contributed),
			})
		}
	}

	proj.NominalAmount = finance.Round(balance)
	proj.TotalContributions = contributed
	proj.TotalGrowth = proj.NominalAmount.Sub(contributed)

	inflation := decimal.NewFromInt(1)
	if p.InflationRate.Valid {
		yearly := decimal.NewFromInt(1).Add(p.InflationRate.Decimal.Div(finance.Hundred))
		for y := 0; y < years; y++ {
			inflation = inflation.Mul(yearly)
		}
		proj.InflationAdjusted = true
	}
	proj.ProjectedAmount = finance.Round(proj.NominalAmount.Div(inflation))

	proj.Shortfall = decimal.Max(decimal.Zero, proj.TargetAmount.Sub(proj.ProjectedAmount))
	proj.OnTrack = proj.Shortfall.IsZero()
	proj.RequiredMonthlyContribution = requiredContribution(savings, proj.TargetAmount.Mul(inflation), rate, months)
	proj.Recommendations = rp.recommend(p, proj, balance, growthFactor, contribution, inflation)
	return proj, nil
}

// requiredContribution solves the future-value-of-annuity equation for the
// monthly payment that reaches target after n months.
func requiredContribution(savings, target, rate decimal.Decimal, n int) decimal.Decimal {
	growth := decimal.NewFromInt(1)
	factor := decimal.NewFromInt(1).Add(rate)
	for i := 0; i < n; i++ {
		growth = growth.Mul(factor).Round(16)
	}
	gap := target.Sub(savings.Mul(growth))
	if !gap.IsPositive() {
		return decimal.Zero
	}
	annuity := decimal.NewFromInt(int64(n))
	if !rate.IsZero() {
		annuity = growth.Sub(decimal.NewFromInt(1)).Div(rate)
	}
	if !annuity.IsPositive() {
		return decimal.Zero
	}
	return gap.Div(annuity).RoundCeil(finance.CentPlaces)
}

func (rp *RetirementProjector) recommend(
	p finance.RetirementParams,
	proj *RetirementProjection,
	finalBalance, growthFactor, contribution, inflation decimal.Decimal,
) []RetirementRecommendation {
	var recs []RetirementRecommendation

	if proj.OnTrack {
		recs = append(recs, RetirementRecommendation{
			Type: RecOnTrack,
			Message: fmt.Sprintf("Projected savings of %s meet the target of %s by age %d",
				proj.ProjectedAmount.StringFixed(2), proj.TargetAmount.StringFixed(2), p.RetirementAge),
		})
		return recs
	}

	increase := proj.RequiredMonthlyContribution.Sub(contribution)
	if increase.IsPositive() {
		recs = append(recs, RetirementRecommendation{
			Type: RecIncreaseContribution,
			Message: fmt.Sprintf("Increase your monthly contribution by %s to reach %s by age %d",
				increase.StringFixed(2), proj.TargetAmount.StringFixed(2), p.RetirementAge),
			Amount: increase,
		})
	}

	// Keep compounding past the planned age, up to the max age, to find the
	// first age at which the current plan closes the gap.
	_, hi := rp.bounds()
	yearly := decimal.NewFromInt(1)
	if p.InflationRate.Valid {
		yearly = yearly.Add(p.InflationRate.Decimal.Div(finance.Hundred))
	}
	balance := finalBalance
	for age := p.RetirementAge + 1; age <= hi; age++ {
		for m := 0; m < 12; m++ {
			balance = balance.Mul(growthFactor).Add(contribution).Round(internalPlaces)
		}
		inflation = inflation.Mul(yearly)
		if finance.Round(balance.Div(inflation)).GreaterThanOrEqual(proj.TargetAmount) {
			recs = append(recs, RetirementRecommendation{
				Type:    RecDelayRetirement,
				Message: fmt.Sprintf("Retiring at age %d instead of %d would reach the target with your current contribution", age, p.RetirementAge),
				Age:     age,
			})
			break
		}
	}

	if p.InflationRate.Valid && p.ExpectedReturn.LessThanOrEqual(p.InflationRate.Decimal) {
		recs = append(recs, RetirementRecommendation{
			Type:    RecReviewReturns,
			Message: "Expected return does not outpace inflation; review your investment allocation",
		})
	}
	return recs
}
