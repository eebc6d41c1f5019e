package analytics

import (
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// BUDGET VARIANCE CALCULATOR
// =============================================================================

// VarianceStatus classifies utilization against 100%.
type VarianceStatus string

const (
	StatusUnder VarianceStatus = "under"
	StatusAt    VarianceStatus = "at"
	StatusOver  VarianceStatus = "over"
)

// Utilization reports spent/allocated*100 at 2 places together with its
// status. Status comes from comparing the exact amounts; a ratio that would
// round onto 100.00 without being exactly 100 is reported as 99.99 or 100.01.
// A zero allocation reports 0 and under.
func Utilization(spent, allocated decimal.Decimal) (decimal.Decimal, VarianceStatus) {
	if allocated.IsZero() {
		return decimal.Zero, StatusUnder
	}
	pct := finance.Percent(spent, allocated)
	switch spent.Cmp(allocated) {
	case -1:
		if !pct.LessThan(finance.Hundred) {
			pct = finance.Hundred.Sub(finance.Cent)
		}
		return pct, StatusUnder
	case 0:
		return finance.Hundred, StatusAt
	default:
		if !pct.GreaterThan(finance.Hundred) {
			pct = finance.Hundred.Add(finance.Cent)
		}
		return pct, StatusOver
	}
}

// DefaultAlertThreshold is the utilization percentage that raises an alert.
var DefaultAlertThreshold = decimal.NewFromInt(80)

// AllocationVariance compares one category allocation with actual spend.
type AllocationVariance struct {
	CategoryID            finance.CategoryID `json:"categoryId"`
	CategoryName          string             `json:"categoryName"`
	AllocatedAmount       decimal.Decimal    `json:"allocatedAmount"`
	SpentAmount           decimal.Decimal    `json:"spentAmount"`
	RemainingAmount       decimal.Decimal    `json:"remainingAmount"`
	UtilizationPercentage decimal.Decimal    `json:"utilizationPercentage"`
	Status                VarianceStatus     `json:"status"`
	AlertTriggered        bool               `json:"alertTriggered"`
	IsFlexible            bool               `json:"isFlexible"`
	Priority              int                `json:"priority"`
	TransactionCount      int                `json:"transactionCount"`
}

// BudgetVariance is the variance report for one budget.
type BudgetVariance struct {
	BudgetID   finance.BudgetID    `json:"budgetId"`
	BudgetName string              `json:"budgetName"`
	Period     finance.BudgetPeriod `json:"period"`

	// Window is the overlap of the budget period and the query window.
	Window     finance.DateRange `json:"window"`
	HasOverlap bool              `json:"hasOverlap"`

	AlertThreshold        decimal.Decimal `json:"alertThreshold"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	TotalAllocated        decimal.Decimal `json:"totalAllocated"`
	UnallocatedAmount     decimal.Decimal `json:"unallocatedAmount"`
	TotalSpent            decimal.Decimal `json:"totalSpent"`
	UnbudgetedSpent       decimal.Decimal `json:"unbudgetedSpent"`
	RemainingAmount       decimal.Decimal `json:"remainingAmount"`
	UtilizationPercentage decimal.Decimal `json:"utilizationPercentage"`
	Status                VarianceStatus  `json:"status"`

	Allocations []AllocationVariance `json:"allocations"`
}

// OverBudget returns the allocations whose status is over.
func (v *BudgetVariance) OverBudget() []AllocationVariance {
	var out []AllocationVariance
	for _, a := range v.Allocations {
		if a.Status == StatusOver {
			out = append(out, a)
		}
	}
	return out
}

// Alerts returns allocations at or above the alert threshold but not over.
func (v *BudgetVariance) Alerts() []AllocationVariance {
	var out []AllocationVariance
	for _, a := range v.Allocations {
		if a.AlertTriggered && a.Status != StatusOver {
			out = append(out, a)
		}
	}
	return out
}

// BudgetVarianceCalculator compares allocations with actual spend.
//
// The alert threshold is informational: it sets AlertTriggered, never Status.
// A budget's own AlertThreshold wins over the calculator default.
type BudgetVarianceCalculator struct {
	AlertThreshold decimal.Decimal
}

func NewBudgetVarianceCalculator() *BudgetVarianceCalculator {
	return &BudgetVarianceCalculator{AlertThreshold: DefaultAlertThreshold}
}

// Calculate reports variance for the budget with the given ID. window may be
// zero, in which case the budget's own period is used.
//
// Returns NotFoundError("Budget not found") when no supplied budget has the ID.
func (c *BudgetVarianceCalculator) Calculate(
	budgets []finance.Budget,
	id finance.BudgetID,
	txs []finance.Transaction,
	categories []finance.Category,
	window finance.DateRange,
) (*BudgetVariance, error) {
	if err := finance.ValidateID("budgetId", string(id)); err != nil {
		return nil, err
	}
	budget, err := finance.FindBudget(budgets, id)
	if err != nil {
		return nil, err
	}
	return c.Variance(*budget, txs, categories, window), nil
}

// CalculateAll reports variance for every budget that overlaps window.
func (c *BudgetVarianceCalculator) CalculateAll(
	budgets []finance.Budget,
	txs []finance.Transaction,
	categories []finance.Category,
	window finance.DateRange,
) []BudgetVariance {
	var out []BudgetVariance
	for _, b := range budgets {
		v := c.Variance(b, txs, categories, window)
		if v.HasOverlap {
			out = append(out, *v)
		}
	}
	return out
}

// Variance computes the report for a single budget record.
func (c *BudgetVarianceCalculator) Variance(
	budget finance.Budget,
	txs []finance.Transaction,
	categories []finance.Category,
	window finance.DateRange,
) *BudgetVariance {
	threshold := c.AlertThreshold
	if threshold.IsZero() {
		threshold = DefaultAlertThreshold
	}
	if budget.AlertThreshold.IsPositive() {
		threshold = budget.AlertThreshold
	}

	effective := budget.Range()
	hasOverlap := !effective.IsInverted()
	if !window.IsZero() && hasOverlap {
		effective, hasOverlap = effective.Overlap(window)
	}

	index := finance.NewCategoryIndex(categories)
	v := &BudgetVariance{
		BudgetID:        budget.ID,
		BudgetName:      budget.Name,
		Period:          budget.Period,
		Window:          effective,
		HasOverlap:      hasOverlap,
		AlertThreshold:  threshold,
		TotalAmount:     finance.Round(budget.TotalAmount),
		TotalAllocated:  decimal.Zero,
		TotalSpent:      decimal.Zero,
		UnbudgetedSpent: decimal.Zero,
		Allocations:     make([]AllocationVariance, 0, len(budget.CategoryAllocations)),
	}

	// Spend per category inside the effective window.
	spent := make(map[finance.CategoryID]decimal.Decimal)
	counts := make(map[finance.CategoryID]int)
	if hasOverlap {
		expenses := Filter{Range: effective, Types: []finance.TransactionType{finance.TxExpense}}.Apply(txs)
		for _, tx := range expenses {
			spent[tx.CategoryID] = spent[tx.CategoryID].Add(tx.Amount)
			counts[tx.CategoryID]++
			v.TotalSpent = v.TotalSpent.Add(tx.Amount)
		}
	}

	allocated := make(map[finance.CategoryID]bool)
	for _, alloc := range budget.CategoryAllocations {
		allocated[alloc.CategoryID] = true
		amount := finance.Round(alloc.AllocatedAmount)
		s := spent[alloc.CategoryID]
		utilization, status := Utilization(s, amount)

		v.TotalAllocated = v.TotalAllocated.Add(amount)
		v.Allocations = append(v.Allocations, AllocationVariance{
			CategoryID:            alloc.CategoryID,
			CategoryName:          index.Name(alloc.CategoryID),
			AllocatedAmount:       amount,
			SpentAmount:           s,
			RemainingAmount:       amount.Sub(s),
			UtilizationPercentage: utilization,
			Status:                status,
			AlertTriggered:        utilization.GreaterThanOrEqual(threshold),
			IsFlexible:            alloc.IsFlexible,
			Priority:              alloc.Priority,
			TransactionCount:      counts[alloc.CategoryID],
		})
	}

	for id, s := range spent {
		if !allocated[id] {
			v.UnbudgetedSpent = v.UnbudgetedSpent.Add(s)
		}
	}

	v.UnallocatedAmount = v.TotalAmount.Sub(v.TotalAllocated)
	v.RemainingAmount = v.TotalAmount.Sub(v.TotalSpent)
	v.UtilizationPercentage, v.Status = Utilization(v.TotalSpent, v.TotalAmount)
	return v
}
