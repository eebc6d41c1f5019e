package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/planning"
)

// =============================================================================
// JSON RECORD TYPES
// =============================================================================
//
// Amounts are decimal.NullDecimal so that a missing field is distinguishable
// from an explicit zero. Dates are YYYY-MM-DD.

type TransactionJSON struct {
	ID          string              `json:"id,omitempty"`
	Amount      decimal.NullDecimal `json:"amount"`
	Type        string              `json:"type"`
	CategoryID  string              `json:"categoryId,omitempty"`
	Date        string              `json:"date"`
	Status      string              `json:"status,omitempty"`
	IsRecurring bool                `json:"isRecurring,omitempty"`
	Description string              `json:"description,omitempty"`
}

type CategoryJSON struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

type AllocationJSON struct {
	CategoryID      string              `json:"categoryId"`
	AllocatedAmount decimal.NullDecimal `json:"allocatedAmount"`
	IsFlexible      bool                `json:"isFlexible,omitempty"`
	Priority        int                 `json:"priority,omitempty"`
}

type BudgetJSON struct {
	ID                  string              `json:"id,omitempty"`
	Name                string              `json:"name"`
	TotalAmount         decimal.NullDecimal `json:"totalAmount"`
	Period              string              `json:"period"`
	StartDate           string              `json:"startDate"`
	EndDate             string              `json:"endDate,omitempty"`
	CategoryAllocations []AllocationJSON    `json:"categoryAllocations"`
	AlertThreshold      decimal.NullDecimal `json:"alertThreshold"`
}

type GoalJSON struct {
	ID                  string              `json:"id,omitempty"`
	Name                string              `json:"name"`
	TargetAmount        decimal.NullDecimal `json:"targetAmount"`
	CurrentAmount       decimal.NullDecimal `json:"currentAmount"`
	StartDate           string              `json:"startDate,omitempty"`
	TargetDate          string              `json:"targetDate"`
	MonthlyContribution decimal.NullDecimal `json:"monthlyContribution"`
}

type DebtJSON struct {
	ID             string              `json:"id,omitempty"`
	Name           string              `json:"name"`
	Balance        decimal.NullDecimal `json:"balance"`
	InterestRate   decimal.NullDecimal `json:"interestRate"`
	MinimumPayment decimal.NullDecimal `json:"minimumPayment"`
	Priority       int                 `json:"priority,omitempty"`
}

type RetirementJSON struct {
	CurrentAge          *int                `json:"currentAge"`
	RetirementAge       *int                `json:"retirementAge"`
	CurrentSavings      decimal.NullDecimal `json:"currentSavings"`
	MonthlyContribution decimal.NullDecimal `json:"monthlyContribution"`
	ExpectedReturn      decimal.NullDecimal `json:"expectedReturn"`
	InflationRate       decimal.NullDecimal `json:"inflationRate"`
	TargetAmount        decimal.NullDecimal `json:"targetAmount"`
}

// =============================================================================
// IDS AND DATES
// =============================================================================

// NewID returns a fresh record identifier.
func NewID() string { return uuid.NewString() }

// resolveID validates a caller-supplied ID or generates one.
func resolveID(field, id string) (string, error) {
	if id == "" {
		return NewID(), nil
	}
	if err := finance.ValidateID(field, id); err != nil {
		return "", err
	}
	return id, nil
}

// ParseDate parses YYYY-MM-DD (or RFC 3339) into a UTC calendar day.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return finance.DateOf(t), nil
	}
	return time.Time{}, finance.InvalidArgument(field, "%s must be a date (YYYY-MM-DD), got %q", field, s)
}

func required(field string, v decimal.NullDecimal) (decimal.Decimal, error) {
	if !v.Valid {
		return decimal.Zero, finance.InvalidArgument(field, "%s is required", field)
	}
	return v.Decimal, nil
}

func nonNegative(field string, v decimal.NullDecimal) (decimal.Decimal, error) {
	d, err := required(field, v)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return d, finance.InvalidArgument(field, "%s must not be negative", field)
	}
	return d, nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// ToTransaction converts a transaction body. Status defaults to completed.
func (tj TransactionJSON) ToTransaction(user finance.UserID) (finance.Transaction, error) {
	var tx finance.Transaction
	id, err := resolveID("id", tj.ID)
	if err != nil {
		return tx, err
	}
	amount, err := nonNegative("amount", tj.Amount)
	if err != nil {
		return tx, err
	}
	typ := finance.TransactionType(tj.Type)
	if !typ.Valid() {
		return tx, finance.InvalidArgument("type", "unknown transaction type %q", tj.Type)
	}
	status := finance.StatusCompleted
	if tj.Status != "" {
		status = finance.TransactionStatus(tj.Status)
		if !status.Valid() {
			return tx, finance.InvalidArgument("status", "unknown transaction status %q", tj.Status)
		}
	}
	if tj.CategoryID != "" {
		if err := finance.ValidateID("categoryId", tj.CategoryID); err != nil {
			return tx, err
		}
	}
	date, err := ParseDate("date", tj.Date)
	if err != nil {
		return tx, err
	}
	return finance.Transaction{
		ID:          finance.TransactionID(id),
		UserID:      user,
		Amount:      finance.Round(amount),
		Type:        typ,
		CategoryID:  finance.CategoryID(tj.CategoryID),
		Date:        date,
		Status:      status,
		IsRecurring: tj.IsRecurring,
		Description: tj.Description,
	}, nil
}

// ToCategory converts a category body, resolving its ancestry from existing.
func (cj CategoryJSON) ToCategory(user finance.UserID, existing []finance.Category) (finance.Category, error) {
	var c finance.Category
	id, err := resolveID("id", cj.ID)
	if err != nil {
		return c, err
	}
	if strings.TrimSpace(cj.Name) == "" {
		return c, finance.InvalidArgument("name", "name is required")
	}
	c = finance.Category{ID: finance.CategoryID(id), UserID: user, Name: cj.Name}
	if cj.ParentID == "" {
		return c, nil
	}
	parent, ok := finance.NewCategoryIndex(existing)[finance.CategoryID(cj.ParentID)]
	if !ok {
		return c, finance.InvalidArgument("parentId", "parent category %q does not exist", cj.ParentID)
	}
	c.ParentID = parent.ID
	c.Path = append(append([]string{}, parent.Path...), parent.Name)
	c.Level = parent.Level + 1
	return c, nil
}

// ToBudget converts a budget body. Monthly and yearly budgets without an end
// date run for one period from the start date.
func (bj BudgetJSON) ToBudget(user finance.UserID) (finance.Budget, error) {
	var b finance.Budget
	id, err := resolveID("id", bj.ID)
	if err != nil {
		return b, err
	}
	total, err := nonNegative("totalAmount", bj.TotalAmount)
	if err != nil {
		return b, err
	}
	period := finance.BudgetPeriod(bj.Period)
	if period == "" {
		period = finance.BudgetMonthly
	}
	if !period.Valid() {
		return b, finance.InvalidArgument("period", "unknown budget period %q", bj.Period)
	}
	start, err := ParseDate("startDate", bj.StartDate)
	if err != nil {
		return b, err
	}

	var end time.Time
	switch {
	case bj.EndDate != "":
		if end, err = ParseDate("endDate", bj.EndDate); err != nil {
			return b, err
		}
	case period == finance.BudgetMonthly:
		end = start.AddDate(0, 1, -1)
	case period == finance.BudgetYearly:
		end = start.AddDate(1, 0, -1)
	default:
		return b, finance.InvalidArgument("endDate", "endDate is required for custom budgets")
	}
	if end.Before(start) {
		return b, finance.InvalidArgument("endDate", "endDate must not be before startDate")
	}

	b = finance.Budget{
		ID:          finance.BudgetID(id),
		UserID:      user,
		Name:        bj.Name,
		TotalAmount: finance.Round(total),
		Period:      period,
		StartDate:   start,
		EndDate:     end,
	}
	if bj.AlertThreshold.Valid {
		if !bj.AlertThreshold.Decimal.IsPositive() {
			return b, finance.InvalidArgument("alertThreshold", "alertThreshold must be positive")
		}
		b.AlertThreshold = bj.AlertThreshold.Decimal
	}

	allocated := decimal.Zero
	seen := make(map[string]bool)
	for i, aj := range bj.CategoryAllocations {
		field := fmt.Sprintf("categoryAllocations[%d]", i)
		if err := finance.ValidateID(field+".categoryId", aj.CategoryID); err != nil {
			return b, err
		}
		if seen[aj.CategoryID] {
			return b, finance.InvalidArgument(field+".categoryId", "category %q is allocated twice", aj.CategoryID)
		}
		seen[aj.CategoryID] = true
		amount, err := nonNegative(field+".allocatedAmount", aj.AllocatedAmount)
		if err != nil {
			return b, err
		}
		amount = finance.Round(amount)
		allocated = allocated.Add(amount)
		b.CategoryAllocations = append(b.CategoryAllocations, finance.CategoryAllocation{
			CategoryID:      finance.CategoryID(aj.CategoryID),
			AllocatedAmount: amount,
			IsFlexible:      aj.IsFlexible,
			Priority:        aj.Priority,
		})
	}
	if allocated.GreaterThan(b.TotalAmount) {
		return b, finance.InvalidArgument("categoryAllocations",
			"allocations total %s exceeds totalAmount %s", allocated.StringFixed(2), b.TotalAmount.StringFixed(2))
	}
	return b, nil
}

// ToGoal converts a goal body. startDate defaults to today.
func (gj GoalJSON) ToGoal(user finance.UserID, today time.Time) (finance.Goal, error) {
	var g finance.Goal
	id, err := resolveID("id", gj.ID)
	if err != nil {
		return g, err
	}
	target, err := nonNegative("targetAmount", gj.TargetAmount)
	if err != nil {
		return g, err
	}
	start := finance.DateOf(today)
	if gj.StartDate != "" {
		if start, err = ParseDate("startDate", gj.StartDate); err != nil {
			return g, err
		}
	}
	targetDate, err := ParseDate("targetDate", gj.TargetDate)
	if err != nil {
		return g, err
	}
	if !targetDate.After(start) {
		return g, finance.InvalidArgument("targetDate", "targetDate must be after startDate")
	}

	g = planning.NewGoal(gj.Name, target, start, targetDate)
	g.ID, g.UserID = finance.GoalID(id), user
	if gj.CurrentAmount.Valid {
		current, err := nonNegative("currentAmount", gj.CurrentAmount)
		if err != nil {
			return g, err
		}
		g.CurrentAmount = finance.Round(current)
		switch {
		case g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) && g.TargetAmount.IsPositive():
			g.Status = finance.GoalCompleted
		case g.CurrentAmount.IsPositive():
			g.Status = finance.GoalInProgress
		}
	}
	if gj.MonthlyContribution.Valid {
		if _, err := nonNegative("monthlyContribution", gj.MonthlyContribution); err != nil {
			return g, err
		}
		g.MonthlyContribution = gj.MonthlyContribution
	}
	return g, nil
}

// ToDebt converts a debt body. Missing amounts are left null for the planner
// to reject with the debt's name in the message.
func (dj DebtJSON) ToDebt(user finance.UserID) (finance.Debt, error) {
	id, err := resolveID("id", dj.ID)
	if err != nil {
		return finance.Debt{}, err
	}
	return finance.Debt{
		ID:             finance.DebtID(id),
		UserID:         user,
		Name:           dj.Name,
		Balance:        dj.Balance,
		InterestRate:   dj.InterestRate,
		MinimumPayment: dj.MinimumPayment,
		Priority:       dj.Priority,
	}, nil
}

// ToDebts converts a list of debt bodies.
func ToDebts(user finance.UserID, djs []DebtJSON) ([]finance.Debt, error) {
	out := make([]finance.Debt, 0, len(djs))
	for _, dj := range djs {
		d, err := dj.ToDebt(user)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ToParams converts a retirement body. Inflation is optional.
func (rj RetirementJSON) ToParams() (finance.RetirementParams, error) {
	var p finance.RetirementParams
	if rj.CurrentAge == nil {
		return p, finance.InvalidArgument("currentAge", "currentAge is required")
	}
	if rj.RetirementAge == nil {
		return p, finance.InvalidArgument("retirementAge", "retirementAge is required")
	}
	var err error
	if p.CurrentSavings, err = required("currentSavings", rj.CurrentSavings); err != nil {
		return p, err
	}
	if p.MonthlyContribution, err = required("monthlyContribution", rj.MonthlyContribution); err != nil {
		return p, err
	}
	if p.ExpectedReturn, err = required("expectedReturn", rj.ExpectedReturn); err != nil {
		return p, err
	}
	if p.TargetAmount, err = required("targetAmount", rj.TargetAmount); err != nil {
		return p, err
	}
	p.CurrentAge = *rj.CurrentAge
	p.RetirementAge = *rj.RetirementAge
	p.InflationRate = rj.InflationRate
	return p, nil
}
