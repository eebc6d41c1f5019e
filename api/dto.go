/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine result types
  that already carry JSON tags (spending, cash flow, variance, payoff plans,
  retirement projections, scenarios) are returned as-is; the types here
  cover requests and the results that need reshaping for JSON.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NON-FINITE NUMBERS:
  A goal with a zero target has an infinite (or NaN) completion percentage.
  JSON cannot carry those, so the number is rendered as null and the
  textual value ("+Inf", "-Inf", "NaN") goes in a sibling *Text field.

VALIDATION:
  Validation is done in the factory converters and the engine, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/records.go: Record JSON types embedded in requests
*/
package api

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/advice"
	"github.com/warp/finance-engine/analytics"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/planning"
)

// =============================================================================
// GOALS
// =============================================================================

// GoalProgressDTO is planning.GoalProgress with JSON-safe numbers and dates.
type GoalProgressDTO struct {
	GoalID                      string          `json:"goalId"`
	Name                        string          `json:"name"`
	Status                      string          `json:"status"`
	AsOf                        string          `json:"asOf"`
	TargetAmount                decimal.Decimal `json:"targetAmount"`
	CurrentAmount               decimal.Decimal `json:"currentAmount"`
	RemainingAmount             decimal.Decimal `json:"remainingAmount"`
	PercentageComplete          *float64        `json:"percentageComplete"`
	PercentageCompleteText      string          `json:"percentageCompleteText,omitempty"`
	DaysRemaining               int             `json:"daysRemaining"`
	ElapsedMonths               int             `json:"elapsedMonths"`
	MonthlyContribution         decimal.Decimal `json:"monthlyContribution"`
	RequiredMonthlyContribution decimal.Decimal `json:"requiredMonthlyContribution"`
	MonthlyNeededToFinish       decimal.Decimal `json:"monthlyNeededToFinish"`
	EstimatedCompletionDate     string          `json:"estimatedCompletionDate"`
	PlannedCompletionDate       *string         `json:"plannedCompletionDate"`
	IsOnTrack                   bool            `json:"isOnTrack"`
}

func toGoalProgressDTO(p planning.GoalProgress) GoalProgressDTO {
	dto := GoalProgressDTO{
		GoalID:                      string(p.GoalID),
		Name:                        p.Name,
		Status:                      string(p.Status),
		AsOf:                        formatDate(p.AsOf),
		TargetAmount:                p.TargetAmount,
		CurrentAmount:               p.CurrentAmount,
		RemainingAmount:             p.RemainingAmount,
		DaysRemaining:               p.DaysRemaining,
		ElapsedMonths:               p.ElapsedMonths,
		MonthlyContribution:         p.MonthlyContribution,
		RequiredMonthlyContribution: p.RequiredMonthlyContribution,
		MonthlyNeededToFinish:       p.MonthlyNeededToFinish,
		EstimatedCompletionDate:     formatDate(p.EstimatedCompletionDate),
		IsOnTrack:                   p.IsOnTrack,
	}
	dto.PercentageComplete, dto.PercentageCompleteText = finiteFloat(p.PercentageComplete)
	if p.PlannedCompletionDate != nil {
		s := formatDate(*p.PlannedCompletionDate)
		dto.PlannedCompletionDate = &s
	}
	return dto
}

func toGoalProgressDTOs(progress []planning.GoalProgress) []GoalProgressDTO {
	dtos := make([]GoalProgressDTO, len(progress))
	for i, p := range progress {
		dtos[i] = toGoalProgressDTO(p)
	}
	return dtos
}

// finiteFloat returns f, or nil plus its text form when f is not finite.
func finiteFloat(f float64) (*float64, string) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, strconv.FormatFloat(f, 'f', -1, 64)
	}
	return &f, ""
}

// UpdateProgressRequest adds Amount (possibly negative) to a goal.
type UpdateProgressRequest struct {
	Amount decimal.NullDecimal `json:"amount"`
}

// =============================================================================
// DEBTS
// =============================================================================

// DebtPlanRequest omits Debts to plan over the user's stored debts.
type DebtPlanRequest struct {
	Debts        []factory.DebtJSON `json:"debts"`
	ExtraPayment decimal.Decimal    `json:"extraPayment"`
	Strategy     string             `json:"strategy"`
	StartDate    string             `json:"startDate,omitempty"`

	// IncludeTimeline keeps the month-by-month snapshots in the response.
	IncludeTimeline *bool `json:"includeTimeline,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// Growth assumptions used when a scenario request leaves them out. Annual
// percentages.
var (
	DefaultIncomeGrowth     = decimal.NewFromInt(3)
	DefaultExpenseGrowth    = decimal.NewFromInt(2)
	DefaultInvestmentReturn = decimal.NewFromInt(5)
)

// DefaultBaselineMonths is how much history derives the scenario baseline.
const DefaultBaselineMonths = 3

// ScenarioRequest projects the user's baseline. Any profile field given
// here overrides the value derived from transaction history.
type ScenarioRequest struct {
	TimeHorizon      int                 `json:"timeHorizon"`
	BaselineMonths   int                 `json:"baselineMonths,omitempty"`
	MonthlyIncome    decimal.NullDecimal `json:"monthlyIncome"`
	MonthlyExpenses  decimal.NullDecimal `json:"monthlyExpenses"`
	CurrentSavings   decimal.NullDecimal `json:"currentSavings"`
	IncomeGrowth     decimal.NullDecimal `json:"incomeGrowth"`
	ExpenseGrowth    decimal.NullDecimal `json:"expenseGrowth"`
	InvestmentReturn decimal.NullDecimal `json:"investmentReturn"`
}

// ScenariosResponse wraps the three scenarios with the baseline they used.
type ScenariosResponse struct {
	Baseline  analytics.Baseline  `json:"baseline"`
	Scenarios []planning.Scenario `json:"scenarios"`
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

type RecommendationsResponse struct {
	AsOf            string                  `json:"asOf"`
	Range           string                  `json:"range"`
	Recommendations []advice.Recommendation `json:"recommendations"`
}

// =============================================================================
// DEMO
// =============================================================================

// DemoScenarioDTO describes a loadable demo data set.
type DemoScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadDemoRequest selects the scenario; empty loads the default one.
type LoadDemoRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// LoadDemoResponse reports what was seeded.
type LoadDemoResponse struct {
	ScenarioID   string `json:"scenarioId"`
	UserID       string `json:"userId"`
	Transactions int    `json:"transactions"`
	Categories   int    `json:"categories"`
	Budgets      int    `json:"budgets"`
	Goals        int    `json:"goals"`
	Debts        int    `json:"debts"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
