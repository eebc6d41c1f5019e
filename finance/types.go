/*
Package finance provides the core vocabulary of the planning and analytics engine.

PURPOSE:
  This package holds the domain records the engine consumes (transactions,
  categories, budgets, goals, debts, retirement parameters), the money helpers
  every component rounds through, the time bucketing used for series, and the
  typed errors shared by all entry points.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal.Decimal rounded to cents at every computed boundary
  - Records: read-only inputs already scoped to one user by the store
  - Enumerations: typed string constants with Valid() for exhaustive checks

DESIGN PRINCIPLES:
  1. Precision: money is decimal.Decimal, never float64
  2. Immutability: the engine never mutates an input record
  3. Type Safety: typed IDs and enums prevent mixing categories and budgets

USAGE:
  tx := finance.Transaction{
      Amount: finance.MustDecimal("42.50"),
      Type:   finance.TxExpense,
      Date:   finance.NewDate(2025, time.March, 14),
      Status: finance.StatusCompleted,
  }

SEE ALSO:
  - bucket.go: Period bucketing for time series
  - errors.go: InvalidArgument / NotFound errors
  - store.go: Persistence interface used by the host
*/
package finance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - decimal amounts rounded to cents
// =============================================================================

// CentPlaces is the number of decimal places every monetary output carries.
const CentPlaces = 2

var (
	Hundred = decimal.NewFromInt(100)
	Twelve  = decimal.NewFromInt(12)
	Cent    = decimal.New(1, -CentPlaces)
)

// Round rounds a monetary value to cents (half away from zero).
func Round(d decimal.Decimal) decimal.Decimal { return d.Round(CentPlaces) }

// Percent returns part/whole*100 rounded to 2 places, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(Hundred).Round(CentPlaces)
}

// MonthlyRate converts an annual percentage into a monthly fraction.
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(Twelve).Div(Hundred)
}

// MustDecimal parses a decimal literal and panics if it is malformed.
func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Sum adds amounts without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type TransactionID string
type CategoryID string
type BudgetID string
type GoalID string
type DebtID string

// =============================================================================
// TRANSACTION
// =============================================================================

type TransactionType string

const (
	TxIncome     TransactionType = "income"
	TxExpense    TransactionType = "expense"
	TxTransfer   TransactionType = "transfer"
	TxAdjustment TransactionType = "adjustment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxIncome, TxExpense, TxTransfer, TxAdjustment:
		return true
	}
	return false
}

// DefaultTransactionTypes are the types that contribute to spend/earn totals.
var DefaultTransactionTypes = []TransactionType{TxIncome, TxExpense}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Settles reports whether a transaction in this status moves money.
// Failed and cancelled transactions never do; pending ones only when asked.
func (s TransactionStatus) Settles(includePending bool) bool {
	switch s {
	case StatusCompleted:
		return true
	case StatusPending:
		return includePending
	case StatusFailed, StatusCancelled:
		return false
	}
	// Records written before status existed are treated as completed.
	return s == ""
}

// Transaction is a single money movement. Amount is never negative; direction
// comes from Type.
type Transaction struct {
	ID          TransactionID
	UserID      UserID
	Amount      decimal.Decimal
	Type        TransactionType
	CategoryID  CategoryID // empty when uncategorized
	Date        time.Time
	Status      TransactionStatus
	IsRecurring bool
	Description string
}

// =============================================================================
// CATEGORY
// =============================================================================

// UncategorizedName labels expenses whose category cannot be resolved.
const UncategorizedName = "Uncategorized"

type Category struct {
	ID       CategoryID
	UserID   UserID
	Name     string
	ParentID CategoryID
	Path     []string // ancestor names, root first
	Level    int
}

// FullPath returns the ancestor path followed by the category name.
func (c Category) FullPath() string {
	parts := make([]string, 0, len(c.Path)+1)
	parts = append(parts, c.Path...)
	return strings.Join(append(parts, c.Name), " > ")
}

// CategoryIndex resolves category IDs to records.
type CategoryIndex map[CategoryID]Category

func NewCategoryIndex(categories []Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// Name returns the category name or UncategorizedName.
func (idx CategoryIndex) Name(id CategoryID) string {
	if c, ok := idx[id]; ok && c.Name != "" {
		return c.Name
	}
	return UncategorizedName
}

// =============================================================================
// BUDGET
// =============================================================================

type BudgetPeriod string

const (
	BudgetMonthly BudgetPeriod = "monthly"
	BudgetYearly  BudgetPeriod = "yearly"
	BudgetCustom  BudgetPeriod = "custom"
)

func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetMonthly, BudgetYearly, BudgetCustom:
		return true
	}
	return false
}

type CategoryAllocation struct {
	CategoryID      CategoryID
	AllocatedAmount decimal.Decimal
	IsFlexible      bool
	Priority        int
}

// Budget allocations never exceed TotalAmount and StartDate precedes EndDate;
// the store enforces both before a record reaches the engine.
type Budget struct {
	ID                  BudgetID
	UserID              UserID
	Name                string
	TotalAmount         decimal.Decimal
	Period              BudgetPeriod
	StartDate           time.Time
	EndDate             time.Time
	CategoryAllocations []CategoryAllocation
	AlertThreshold      decimal.Decimal // zero means engine default
}

func (b Budget) Range() DateRange { return DateRange{Start: b.StartDate, End: b.EndDate} }

// FindBudget returns the budget with the given ID or a NotFound error.
func FindBudget(budgets []Budget, id BudgetID) (*Budget, error) {
	for i := range budgets {
		if budgets[i].ID == id {
			return &budgets[i], nil
		}
	}
	return nil, &NotFoundError{Entity: "budget", ID: string(id), Message: "Budget not found"}
}

// =============================================================================
// GOAL
// =============================================================================

type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalNotStarted, GoalInProgress, GoalCompleted:
		return true
	}
	return false
}

type Goal struct {
	ID                  GoalID
	UserID              UserID
	Name                string
	TargetAmount        decimal.Decimal
	CurrentAmount       decimal.Decimal
	StartDate           time.Time
	TargetDate          time.Time
	Status              GoalStatus
	MonthlyContribution decimal.NullDecimal // planned contribution, optional
}

// =============================================================================
// DEBT
// =============================================================================

// Debt is immutable input to the payoff planner. The three amounts are
// nullable so that a record missing one of them can be rejected instead of
// being simulated as zero.
type Debt struct {
	ID             DebtID
	UserID         UserID
	Name           string
	Balance        decimal.NullDecimal
	InterestRate   decimal.NullDecimal // annual percentage
	MinimumPayment decimal.NullDecimal
	Priority       int // tie-break hint, lower first
}

// NewDebt builds a debt with all required amounts present.
func NewDebt(name string, balance, rate, minimum decimal.Decimal) Debt {
	return Debt{
		Name:           name,
		Balance:        decimal.NewNullDecimal(balance),
		InterestRate:   decimal.NewNullDecimal(rate),
		MinimumPayment: decimal.NewNullDecimal(minimum),
	}
}

// =============================================================================
// RETIREMENT
// =============================================================================

type RetirementParams struct {
	CurrentAge          int
	RetirementAge       int
	CurrentSavings      decimal.Decimal
	MonthlyContribution decimal.Decimal
	ExpectedReturn      decimal.Decimal     // annual percentage
	InflationRate       decimal.NullDecimal // annual percentage, optional
	TargetAmount        decimal.Decimal
}
