/*
Package advice turns analytics and planning results into prioritized,
human-readable recommendations.

PURPOSE:
  A small ordered rule set inspects whatever results the caller has (any of
  them may be nil) and emits Recommendation values. The engine is a pure
  function of its inputs: no clock is read, AsOf is supplied.

ORDERING:
  Output is sorted by priority (high first). Recommendations of equal
  priority keep the order in which the rules produced them.

RULES (in evaluation order):
  1. Savings rate below target      -> reduce the top spending category
  2. Over-budget categories         -> budget review
  3. Categories past alert threshold -> watch spending
  4. No income in the lookback      -> income alert
  5. Negative net cash flow         -> spending exceeds income
  6. Goals off track                -> raise contributions
  7. Debt strategy comparison       -> avalanche savings / unpayable debt
  8. Retirement shortfall           -> contribution or retirement age

SEE ALSO:
  - analytics: spending, budget variance and cash flow inputs
  - planning: goals, debts and retirement inputs
*/
package advice

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/analytics"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/planning"
)

// =============================================================================
// RECOMMENDATION
// =============================================================================

type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Priority) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*p = PriorityLow
	case "medium":
		*p = PriorityMedium
	case "high":
		*p = PriorityHigh
	default:
		return fmt.Errorf("unknown priority %q", text)
	}
	return nil
}

type Category string

const (
	CategorySavings    Category = "savings"
	CategoryBudget     Category = "budget"
	CategoryIncome     Category = "income"
	CategoryCashFlow   Category = "cashflow"
	CategoryGoals      Category = "goals"
	CategoryDebt       Category = "debt"
	CategoryRetirement Category = "retirement"
)

type Timeframe string

const (
	Immediate Timeframe = "immediate"
	ShortTerm Timeframe = "short_term"
	LongTerm  Timeframe = "long_term"
)

type Recommendation struct {
	Category        Category        `json:"category"`
	Priority        Priority        `json:"priority"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Action          string          `json:"action"`
	PotentialImpact decimal.Decimal `json:"potentialImpact"`
	Timeframe       Timeframe       `json:"timeframe"`
}

// Inputs are the results to inspect. Every field is optional.
type Inputs struct {
	AsOf         time.Time
	Spending     *analytics.SpendingResult
	CashFlow     *analytics.CashFlowResult
	Budgets      []analytics.BudgetVariance
	Goals        []planning.GoalProgress
	Debt         *planning.StrategyComparison
	Retirement   *planning.RetirementProjection
	Transactions []finance.Transaction // recent history, for the income check
}

// =============================================================================
// ENGINE
// =============================================================================

const (
	DefaultIncomeLookbackDays = 30
)

// DefaultSavingsRateTarget is the savings rate (percent) below which spending
// cuts are suggested.
var DefaultSavingsRateTarget = decimal.NewFromInt(20)

type Engine struct {
	SavingsRateTarget  decimal.Decimal
	IncomeLookbackDays int
}

func NewEngine() *Engine {
	return &Engine{SavingsRateTarget: DefaultSavingsRateTarget, IncomeLookbackDays: DefaultIncomeLookbackDays}
}

type rule func(e *Engine, in Inputs) []Recommendation

var rules = []rule{
	savingsRateRule,
	overBudgetRule,
	budgetAlertRule,
	missingIncomeRule,
	cashFlowRule,
	goalsRule,
	debtRule,
	retirementRule,
}

// Recommend evaluates every rule and returns the recommendations ordered by
// priority, high first, insertion order within a priority.
func (e *Engine) Recommend(in Inputs) []Recommendation {
	out := []Recommendation{}
	for _, r := range rules {
		out = append(out, r(e, in)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// =============================================================================
// RULES
// =============================================================================

var tenPercent = decimal.NewFromFloat(0.1)

func savingsRateRule(e *Engine, in Inputs) []Recommendation {
	s := in.Spending
	if s == nil || !s.TotalIncome.IsPositive() {
		return nil
	}
	target := e.SavingsRateTarget
	if target.IsZero() {
		target = DefaultSavingsRateTarget
	}
	if !s.SavingsRate.LessThan(target) {
		return nil
	}
	top, ok := s.TopCategory()
	if !ok {
		return nil
	}
	priority := PriorityMedium
	if s.SavingsRate.LessThan(decimal.NewFromInt(10)) {
		priority = PriorityHigh
	}
	impact := finance.Round(top.Amount.Mul(tenPercent))
	return []Recommendation{{
		Category: CategorySavings,
		Priority: priority,
		Title:    "Increase your savings rate",
		Description: fmt.Sprintf("You are saving %s%% of your income, below the %s%% target. %s is your largest spending category at %s.",
			s.SavingsRate.StringFixed(2), target.String(), top.CategoryName, top.Amount.StringFixed(2)),
		Action:          fmt.Sprintf("Reduce %s spending by 10%%", top.CategoryName),
		PotentialImpact: impact,
		Timeframe:       ShortTerm,
	}}
}

func overBudgetRule(_ *Engine, in Inputs) []Recommendation {
	var names []string
	overspend := decimal.Zero
	for _, b := range in.Budgets {
		for _, a := range b.OverBudget() {
			names = append(names, a.CategoryName)
			overspend = overspend.Add(a.RemainingAmount.Neg())
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []Recommendation{{
		Category:        CategoryBudget,
		Priority:        PriorityHigh,
		Title:           "Review over-budget categories",
		Description:     fmt.Sprintf("%d categories are over budget: %s.", len(names), strings.Join(names, ", ")),
		Action:          "Review your budget allocations and cut back in these categories",
		PotentialImpact: overspend,
		Timeframe:       Immediate,
	}}
}

func budgetAlertRule(_ *Engine, in Inputs) []Recommendation {
	var names []string
	for _, b := range in.Budgets {
		for _, a := range b.Alerts() {
			names = append(names, a.CategoryName)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []Recommendation{{
		Category:        CategoryBudget,
		Priority:        PriorityMedium,
		Title:           "Categories approaching their limit",
		Description:     fmt.Sprintf("Spending in %s has passed the alert threshold.", strings.Join(names, ", ")),
		Action:          "Slow down spending in these categories for the rest of the period",
		PotentialImpact: decimal.Zero,
		Timeframe:       Immediate,
	}}
}

func missingIncomeRule(e *Engine, in Inputs) []Recommendation {
	if in.Spending == nil || in.AsOf.IsZero() {
		return nil
	}
	days := e.IncomeLookbackDays
	if days <= 0 {
		days = DefaultIncomeLookbackDays
	}
	asOf := finance.DateOf(in.AsOf)
	window := finance.NewDateRange(asOf.AddDate(0, 0, -days), asOf)
	for _, tx := range in.Transactions {
		if tx.Type == finance.TxIncome && tx.Status.Settles(true) && window.Contains(tx.Date) {
			return nil
		}
	}
	return []Recommendation{{
		Category:        CategoryIncome,
		Priority:        PriorityHigh,
		Title:           "No income recorded recently",
		Description:     fmt.Sprintf("No income has been recorded in the last %d days.", days),
		Action:          "Check that income is being recorded, or plan expenses around the gap",
		PotentialImpact: decimal.Zero,
		Timeframe:       Immediate,
	}}
}

func cashFlowRule(_ *Engine, in Inputs) []Recommendation {
	cf := in.CashFlow
	if cf == nil || !cf.NetCashFlow.IsNegative() {
		return nil
	}
	return []Recommendation{{
		Category: CategoryCashFlow,
		Priority: PriorityHigh,
		Title:    "Spending exceeds income",
		Description: fmt.Sprintf("Outflows exceeded inflows by %s over the period (%d of %d periods negative).",
			cf.NetCashFlow.Neg().StringFixed(2), cf.NegativePeriods, len(cf.Periods)),
		Action:          "Cut discretionary spending until cash flow is positive",
		PotentialImpact: cf.NetCashFlow.Neg(),
		Timeframe:       Immediate,
	}}
}

func goalsRule(_ *Engine, in Inputs) []Recommendation {
	var out []Recommendation
	for _, g := range in.Goals {
		if g.IsOnTrack || g.Status == finance.GoalCompleted || g.RemainingAmount.IsZero() {
			continue
		}
		gap := decimal.Max(decimal.Zero, g.MonthlyNeededToFinish.Sub(g.MonthlyContribution))
		out = append(out, Recommendation{
			Category: CategoryGoals,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Goal %q is off track", g.Name),
			Description: fmt.Sprintf("You are contributing %s per month; %s per month is needed to finish on time.",
				g.MonthlyContribution.StringFixed(2), g.MonthlyNeededToFinish.StringFixed(2)),
			Action:          fmt.Sprintf("Increase monthly contributions by %s", gap.StringFixed(2)),
			PotentialImpact: gap,
			Timeframe:       ShortTerm,
		})
	}
	return out
}

func debtRule(_ *Engine, in Inputs) []Recommendation {
	c := in.Debt
	if c == nil || c.Avalanche == nil || c.Snowball == nil {
		return nil
	}
	var out []Recommendation
	if c.Avalanche.CapReached {
		out = append(out, Recommendation{
			Category:        CategoryDebt,
			Priority:        PriorityHigh,
			Title:           "Debts will not be paid off",
			Description:     fmt.Sprintf("At the current payment budget a balance of %s remains after %d months.", c.Avalanche.RemainingBalance.StringFixed(2), c.Avalanche.MonthsToPayoff),
			Action:          "Increase monthly debt payments above the interest being charged",
			PotentialImpact: c.Avalanche.RemainingBalance,
			Timeframe:       Immediate,
		})
	}
	if c.InterestSaved.IsPositive() {
		desc := fmt.Sprintf("The avalanche strategy saves %s in interest compared with snowball", c.InterestSaved.StringFixed(2))
		switch {
		case c.MonthsSaved == 1:
			desc += " and finishes 1 month sooner"
		case c.MonthsSaved > 1:
			desc += fmt.Sprintf(" and finishes %d months sooner", c.MonthsSaved)
		}
		out = append(out, Recommendation{
			Category:        CategoryDebt,
			Priority:        PriorityMedium,
			Title:           "Pay highest-interest debt first",
			Description:     desc + ".",
			Action:          "Direct extra payments to " + first(c.Avalanche.PriorityOrder),
			PotentialImpact: c.InterestSaved,
			Timeframe:       LongTerm,
		})
	}
	return out
}

func retirementRule(_ *Engine, in Inputs) []Recommendation {
	r := in.Retirement
	if r == nil || r.OnTrack {
		return nil
	}
	action := "Increase retirement contributions"
	if len(r.Recommendations) > 0 {
		action = r.Recommendations[0].Message
	}
	return []Recommendation{{
		Category: CategoryRetirement,
		Priority: PriorityHigh,
		Title:    "Retirement savings shortfall",
		Description: fmt.Sprintf("Projected savings of %s fall %s short of the %s target.",
			r.ProjectedAmount.StringFixed(2), r.Shortfall.StringFixed(2), r.TargetAmount.StringFixed(2)),
		Action:          action,
		PotentialImpact: r.Shortfall,
		Timeframe:       LongTerm,
	}}
}

func first(names []string) string {
	if len(names) == 0 {
		return "the highest-interest debt"
	}
	return names[0]
}
