/*
Package planning projects goals, debts, retirement savings and multi-year
scenarios forward in time.

PURPOSE:
  Each planner is an independent pure function over its own input record.
  None of them reads transactions; the host derives whatever profile they
  need (see analytics.DeriveBaseline) and passes plain values in.

LOOP BOUNDS:
  Month-by-month simulations (debt payoff, retirement compounding) run under
  explicit iteration caps, so no entry point can spin indefinitely. Hitting
  a cap is reported in the result, not returned as an error.

SEE ALSO:
  - goal.go: GoalProgressTracker and UpdateProgress
  - debt.go: DebtPayoffPlanner (avalanche / snowball)
  - retirement.go: RetirementProjector
  - scenario.go: ScenarioGenerator
*/
package planning

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// GOAL PROGRESS TRACKER
// =============================================================================

// GoalProgress is the derived state of a savings goal as of a date.
//
// PercentageComplete is a float64 on purpose: a zero target yields +Inf (or
// NaN for 0/0) and that degenerate value is propagated, not clamped.
type GoalProgress struct {
	GoalID                      finance.GoalID
	Name                        string
	Status                      finance.GoalStatus
	AsOf                        time.Time
	TargetAmount                decimal.Decimal
	CurrentAmount               decimal.Decimal
	RemainingAmount             decimal.Decimal
	PercentageComplete          float64
	DaysRemaining               int
	ElapsedMonths               int
	MonthlyContribution         decimal.Decimal // actual pace so far
	RequiredMonthlyContribution decimal.Decimal // pace needed from start to hit the target date
	MonthlyNeededToFinish       decimal.Decimal // what is left, spread over the months left
	EstimatedCompletionDate     time.Time
	PlannedCompletionDate       *time.Time // from the goal's planned contribution, when set
	IsOnTrack                   bool
}

// NewGoal creates a goal in its initial state: nothing saved, not started.
func NewGoal(name string, target decimal.Decimal, start, targetDate time.Time) finance.Goal {
	return finance.Goal{
		Name:          name,
		TargetAmount:  finance.Round(target),
		CurrentAmount: decimal.Zero,
		StartDate:     finance.DateOf(start),
		TargetDate:    finance.DateOf(targetDate),
		Status:        finance.GoalNotStarted,
	}
}

// PercentageComplete returns current/target*100. Over-achievement exceeds
// 100; a zero target returns +Inf, or NaN when nothing is saved either.
func PercentageComplete(current, target decimal.Decimal) float64 {
	if target.IsZero() {
		switch current.Sign() {
		case 0:
			return math.NaN()
		case 1:
			return math.Inf(1)
		default:
			return math.Inf(-1)
		}
	}
	return current.Div(target).Mul(finance.Hundred).Round(finance.CentPlaces).InexactFloat64()
}

// TrackGoal computes progress as of asOf. A zero asOf means today.
func TrackGoal(goal finance.Goal, asOf time.Time) GoalProgress {
	if asOf.IsZero() {
		asOf = finance.Today()
	}
	asOf = finance.DateOf(asOf)

	target := finance.Round(goal.TargetAmount)
	current := finance.Round(goal.CurrentAmount)
	remaining := decimal.Max(decimal.Zero, target.Sub(current))

	p := GoalProgress{
		GoalID:             goal.ID,
		Name:               goal.Name,
		Status:             goal.Status,
		AsOf:               asOf,
		TargetAmount:       target,
		CurrentAmount:      current,
		RemainingAmount:    remaining,
		PercentageComplete: PercentageComplete(current, target),
		DaysRemaining:      max(0, finance.DaysBetween(asOf, goal.TargetDate)),
	}

	// Less than one full month running: all progress counts as month one.
	elapsed := finance.MonthsBetween(goal.StartDate, asOf)
	p.ElapsedMonths = max(1, elapsed)
	if elapsed < 1 {
		p.MonthlyContribution = current
	} else {
		p.MonthlyContribution = finance.Round(current.Div(decimal.NewFromInt(int64(p.ElapsedMonths))))
	}

	totalMonths := max(1, finance.MonthsBetween(goal.StartDate, goal.TargetDate))
	p.RequiredMonthlyContribution = finance.Round(target.Div(decimal.NewFromInt(int64(totalMonths))))

	monthsLeft := max(1, finance.MonthsBetween(asOf, goal.TargetDate))
	p.MonthlyNeededToFinish = finance.Round(remaining.Div(decimal.NewFromInt(int64(monthsLeft))))

	p.EstimatedCompletionDate = extrapolate(asOf, remaining, p.MonthlyContribution, goal.TargetDate)
	if goal.MonthlyContribution.Valid && goal.MonthlyContribution.Decimal.IsPositive() {
		planned := extrapolate(asOf, remaining, goal.MonthlyContribution.Decimal, goal.TargetDate)
		p.PlannedCompletionDate = &planned
	}

	p.IsOnTrack = remaining.IsZero() || p.MonthlyContribution.GreaterThanOrEqual(p.RequiredMonthlyContribution)
	return p
}

// extrapolate projects the date remaining is covered at perMonth. With no
// positive pace there is nothing to extrapolate and fallback is returned.
func extrapolate(asOf time.Time, remaining, perMonth decimal.Decimal, fallback time.Time) time.Time {
	if !perMonth.IsPositive() {
		return finance.DateOf(fallback)
	}
	months := remaining.Div(perMonth).Ceil().IntPart()
	if months > math.MaxInt32 {
		months = math.MaxInt32
	}
	return asOf.AddDate(0, int(months), 0)
}

// TrackAll computes progress for several goals with the same as-of date.
func TrackAll(goals []finance.Goal, asOf time.Time) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, TrackGoal(g, asOf))
	}
	return out
}

// UpdateProgress applies delta and returns the updated goal. The input is not
// modified. CurrentAmount is clamped into [0, TargetAmount]; reaching the
// target completes the goal, anything else leaves it in progress.
//
// Callers must serialize updates to the same goal; the engine holds no locks.
func UpdateProgress(goal finance.Goal, delta decimal.Decimal) finance.Goal {
	ceiling := decimal.Max(decimal.Zero, finance.Round(goal.TargetAmount))
	next := finance.Round(goal.CurrentAmount.Add(delta))
	next = decimal.Min(ceiling, decimal.Max(decimal.Zero, next))

	goal.CurrentAmount = next
	if next.GreaterThanOrEqual(ceiling) {
		goal.Status = finance.GoalCompleted
	} else {
		goal.Status = finance.GoalInProgress
	}
	return goal
}
