/*
Package analytics aggregates transaction sets into spending breakdowns,
budget variance and cash flow series.

PURPOSE:
  Every entry point here is a pure function over already-loaded records. The
  store scoped them to a single user; this package never authorizes and
  never fetches.

ERROR POLICY:
  Soft-empty: an inverted window (end before start) or an empty transaction
  set produces a zeroed result with empty slices, never an error.
  Hard-failure: malformed identifiers, unknown granularities and unknown
  budgets return finance.InvalidArgumentError / finance.NotFoundError.

KEY CONCEPTS IN THIS FILE (filter.go):
  - Filter: the optional narrowing every analyzer applies before summing
  - Amounts are rounded to cents as they enter, so every sum reconciles
    exactly with the sum of its parts

SEE ALSO:
  - spending.go: SpendingAnalyzer
  - budget.go: BudgetVarianceCalculator
  - cashflow.go: CashFlowAnalyzer
*/
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// FILTER - optional narrowing shared by the analyzers
// =============================================================================

// Filter narrows a transaction set. Zero values mean "no restriction",
// except Types which defaults to income and expense.
type Filter struct {
	// Inclusive window. A zero Start or End leaves that side open.
	Range finance.DateRange

	Categories []finance.CategoryID
	Types      []finance.TransactionType
	MinAmount  decimal.NullDecimal
	MaxAmount  decimal.NullDecimal

	// nil means include.
	IncludeRecurring *bool
	IncludePending   *bool
}

// Bool returns a pointer to b, for the optional inclusion flags.
func Bool(b bool) *bool { return &b }

func (f Filter) validate() error {
	for _, id := range f.Categories {
		if err := finance.ValidateID("categories", string(id)); err != nil {
			return err
		}
	}
	for _, t := range f.Types {
		if !t.Valid() {
			return finance.InvalidArgument("transactionTypes", "unknown transaction type %q", string(t))
		}
	}
	if f.MinAmount.Valid && f.MinAmount.Decimal.IsNegative() {
		return finance.InvalidArgument("minAmount", "minAmount must not be negative")
	}
	return nil
}

// empty reports whether the window is inverted and therefore selects nothing.
func (f Filter) empty() bool {
	return !f.Range.Start.IsZero() && !f.Range.End.IsZero() && f.Range.IsInverted()
}

func (f Filter) inRange(t time.Time) bool {
	d := finance.DateOf(t)
	if !f.Range.Start.IsZero() && d.Before(finance.DateOf(f.Range.Start)) {
		return false
	}
	if !f.Range.End.IsZero() && d.After(finance.DateOf(f.Range.End)) {
		return false
	}
	return true
}

// Apply returns the matching transactions with amounts rounded to cents.
// The input slice is not modified.
func (f Filter) Apply(txs []finance.Transaction) []finance.Transaction {
	if f.empty() {
		return nil
	}

	types := f.Types
	if len(types) == 0 {
		types = finance.DefaultTransactionTypes
	}
	typeSet := make(map[finance.TransactionType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	var categorySet map[finance.CategoryID]bool
	if len(f.Categories) > 0 {
		categorySet = make(map[finance.CategoryID]bool, len(f.Categories))
		for _, c := range f.Categories {
			categorySet[c] = true
		}
	}

	includePending := f.IncludePending == nil || *f.IncludePending
	includeRecurring := f.IncludeRecurring == nil || *f.IncludeRecurring

	var out []finance.Transaction
	for _, tx := range txs {
		if !f.inRange(tx.Date) || !typeSet[tx.Type] {
			continue
		}
		if !tx.Status.Settles(includePending) {
			continue
		}
		if tx.IsRecurring && !includeRecurring {
			continue
		}
		if categorySet != nil && !categorySet[tx.CategoryID] {
			continue
		}
		amount := finance.Round(tx.Amount)
		if f.MinAmount.Valid && amount.LessThan(f.MinAmount.Decimal) {
			continue
		}
		if f.MaxAmount.Valid && amount.GreaterThan(f.MaxAmount.Decimal) {
			continue
		}
		tx.Amount = amount
		out = append(out, tx)
	}
	return out
}
