package planning

import (
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// SCENARIO GENERATOR
// =============================================================================

type ScenarioType string

const (
	Optimistic  ScenarioType = "optimistic"
	Realistic   ScenarioType = "realistic"
	Pessimistic ScenarioType = "pessimistic"
)

func (s ScenarioType) Valid() bool {
	switch s {
	case Optimistic, Realistic, Pessimistic:
		return true
	}
	return false
}

// ScenarioTypes is the fixed output order.
var ScenarioTypes = []ScenarioType{Optimistic, Realistic, Pessimistic}

const DefaultMaxTimeHorizon = 50

// Profile is the baseline a scenario perturbs. Rates are annual percentages.
type Profile struct {
	MonthlyIncome    decimal.Decimal
	MonthlyExpenses  decimal.Decimal
	CurrentSavings   decimal.Decimal
	IncomeGrowth     decimal.Decimal
	ExpenseGrowth    decimal.Decimal
	InvestmentReturn decimal.Decimal
}

// Multipliers scale the baseline rates for one scenario. Growth applies to
// income growth and investment return; Expense applies to expense growth.
// A multiplier above 1 always moves a rate up and one below 1 moves it down,
// whatever the sign of the baseline rate.
type Multipliers struct {
	Growth  decimal.Decimal
	Expense decimal.Decimal
}

// DefaultMultipliers: realistic is the unmodified baseline.
func DefaultMultipliers() map[ScenarioType]Multipliers {
	return map[ScenarioType]Multipliers{
		Optimistic:  {Growth: decimal.NewFromFloat(1.5), Expense: decimal.NewFromFloat(0.75)},
		Realistic:   {Growth: decimal.NewFromInt(1), Expense: decimal.NewFromInt(1)},
		Pessimistic: {Growth: decimal.NewFromFloat(0.5), Expense: decimal.NewFromFloat(1.25)},
	}
}

type Assumptions struct {
	IncomeGrowth     decimal.Decimal `json:"incomeGrowth"`
	ExpenseGrowth    decimal.Decimal `json:"expenseGrowth"`
	InvestmentReturn decimal.Decimal `json:"investmentReturn"`
}

// ScenarioYear is the projected state at the end of a year.
type ScenarioYear struct {
	Year     int             `json:"year"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
	NetWorth decimal.Decimal `json:"netWorth"`
}

type Scenario struct {
	ScenarioType  ScenarioType    `json:"scenarioType"`
	Assumptions   Assumptions     `json:"assumptions"`
	Projections   []ScenarioYear  `json:"projections"`
	TotalSavings  decimal.Decimal `json:"totalSavings"`
	FinalNetWorth decimal.Decimal `json:"finalNetWorth"`
}

type ScenarioGenerator struct {
	MaxHorizon  int
	Multipliers map[ScenarioType]Multipliers
}

func NewScenarioGenerator() *ScenarioGenerator {
	return &ScenarioGenerator{MaxHorizon: DefaultMaxTimeHorizon, Multipliers: DefaultMultipliers()}
}

// Generate returns exactly one optimistic, one realistic and one pessimistic
// scenario, in that order, each projected year by year over horizon years.
func (g *ScenarioGenerator) Generate(p Profile, horizon int) ([]Scenario, error) {
	maxHorizon := g.MaxHorizon
	if maxHorizon <= 0 {
		maxHorizon = DefaultMaxTimeHorizon
	}
	if horizon < 1 || horizon > maxHorizon {
		return nil, finance.InvalidArgument("timeHorizon", "timeHorizon must be between 1 and %d years", maxHorizon)
	}
	if p.MonthlyIncome.IsNegative() || p.MonthlyExpenses.IsNegative() {
		return nil, finance.InvalidArgument("profile", "monthly income and expenses must not be negative")
	}

	defaults := DefaultMultipliers()
	out := make([]Scenario, 0, len(ScenarioTypes))
	for _, st := range ScenarioTypes {
		m, ok := g.Multipliers[st]
		if !ok {
			m = defaults[st]
		}
		out = append(out, project(st, p, m, horizon))
	}
	return out, nil
}

func project(st ScenarioType, p Profile, m Multipliers, horizon int) Scenario {
	a := Assumptions{
		IncomeGrowth:     scaleRate(p.IncomeGrowth, m.Growth),
		ExpenseGrowth:    scaleRate(p.ExpenseGrowth, m.Expense),
		InvestmentReturn: scaleRate(p.InvestmentReturn, m.Growth),
	}
	incomeStep := one.Add(a.IncomeGrowth.Div(finance.Hundred))
	expenseStep := one.Add(a.ExpenseGrowth.Div(finance.Hundred))
	returnStep := one.Add(a.InvestmentReturn.Div(finance.Hundred))

	s := Scenario{
		ScenarioType: st,
		Assumptions:  a,
		Projections:  make([]ScenarioYear, 0, horizon),
		TotalSavings: decimal.Zero,
	}

	income := finance.Round(p.MonthlyIncome.Mul(finance.Twelve))
	expenses := finance.Round(p.MonthlyExpenses.Mul(finance.Twelve))
	netWorth := finance.Round(p.CurrentSavings)
	for year := 1; year <= horizon; year++ {
		if year > 1 {
			income = finance.Round(income.Mul(incomeStep))
			expenses = finance.Round(expenses.Mul(expenseStep))
		}
		savings := income.Sub(expenses)
		netWorth = finance.Round(netWorth.Mul(returnStep)).Add(savings)
		s.TotalSavings = s.TotalSavings.Add(savings)
		s.Projections = append(s.Projections, ScenarioYear{
			Year:     year,
			Income:   income,
			Expenses: expenses,
			Savings:  savings,
			NetWorth: netWorth,
		})
	}
	s.FinalNetWorth = netWorth
	return s
}

var one = decimal.NewFromInt(1)

// scaleRate moves rate by |rate|*(m-1). For a non-negative rate this is rate*m;
// a negative rate is pushed in the same direction instead of being amplified.
func scaleRate(rate, m decimal.Decimal) decimal.Decimal {
	return rate.Add(rate.Abs().Mul(m.Sub(one)))
}
