package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// CASH FLOW ANALYZER
// =============================================================================

// CashFlowQuery selects the window and bucket size.
type CashFlowQuery struct {
	Range          finance.DateRange
	GroupBy        finance.Granularity
	IncludePending *bool
}

// CashFlowPeriod is inflow and outflow for one bucket.
type CashFlowPeriod struct {
	Period           finance.BucketKey `json:"period"`
	Start            time.Time         `json:"start"`
	Inflow           decimal.Decimal   `json:"inflow"`
	Outflow          decimal.Decimal   `json:"outflow"`
	Net              decimal.Decimal   `json:"net"`
	TransactionCount int               `json:"transactionCount"`
}

type CashFlowResult struct {
	Range           finance.DateRange   `json:"range"`
	GroupBy         finance.Granularity `json:"groupBy"`
	TotalInflows    decimal.Decimal     `json:"totalInflows"`
	TotalOutflows   decimal.Decimal     `json:"totalOutflows"`
	NetCashFlow     decimal.Decimal     `json:"netCashFlow"`
	AverageInflow   decimal.Decimal     `json:"averageInflow"`
	AverageOutflow  decimal.Decimal     `json:"averageOutflow"`
	NegativePeriods int                 `json:"negativePeriods"`
	Periods         []CashFlowPeriod    `json:"periods"`
}

// AnalyzeCashFlow buckets income as inflow and expense as outflow.
// Averages are per populated bucket.
func AnalyzeCashFlow(txs []finance.Transaction, q CashFlowQuery) (*CashFlowResult, error) {
	if q.GroupBy == "" {
		q.GroupBy = finance.GranularityMonth
	}
	if !q.GroupBy.Valid() {
		return nil, finance.InvalidArgument("groupBy", "unsupported granularity %q", string(q.GroupBy))
	}

	result := &CashFlowResult{
		Range:          q.Range,
		GroupBy:        q.GroupBy,
		TotalInflows:   decimal.Zero,
		TotalOutflows:  decimal.Zero,
		NetCashFlow:    decimal.Zero,
		AverageInflow:  decimal.Zero,
		AverageOutflow: decimal.Zero,
		Periods:        []CashFlowPeriod{},
	}

	filter := Filter{Range: q.Range, IncludePending: q.IncludePending}
	buckets := make(map[finance.BucketKey]*CashFlowPeriod)
	for _, tx := range filter.Apply(txs) {
		key, err := finance.Bucket(tx.Date, q.GroupBy)
		if err != nil {
			return nil, err
		}
		p, ok := buckets[key]
		if !ok {
			start, _ := finance.BucketStart(tx.Date, q.GroupBy)
			p = &CashFlowPeriod{Period: key, Start: start, Inflow: decimal.Zero, Outflow: decimal.Zero}
			buckets[key] = p
		}
		p.TransactionCount++
		if tx.Type == finance.TxIncome {
			p.Inflow = p.Inflow.Add(tx.Amount)
			result.TotalInflows = result.TotalInflows.Add(tx.Amount)
		} else {
			p.Outflow = p.Outflow.Add(tx.Amount)
			result.TotalOutflows = result.TotalOutflows.Add(tx.Amount)
		}
	}

	for _, p := range buckets {
		p.Net = p.Inflow.Sub(p.Outflow)
		if p.Net.IsNegative() {
			result.NegativePeriods++
		}
		result.Periods = append(result.Periods, *p)
	}
	sort.Slice(result.Periods, func(i, j int) bool {
		return result.Periods[i].Period < result.Periods[j].Period
	})

	result.NetCashFlow = result.TotalInflows.Sub(result.TotalOutflows)
	if n := len(result.Periods); n > 0 {
		count := decimal.NewFromInt(int64(n))
		result.AverageInflow = finance.Round(result.TotalInflows.Div(count))
		result.AverageOutflow = finance.Round(result.TotalOutflows.Div(count))
	}
	return result, nil
}

// =============================================================================
// BASELINE - monthly averages feeding the scenario generator
// =============================================================================

// Baseline is the recent monthly income/expense profile of a user.
type Baseline struct {
	Window          finance.DateRange `json:"window"`
	Months          int               `json:"months"`
	MonthlyIncome   decimal.Decimal   `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal   `json:"monthlyExpenses"`
	MonthlySavings  decimal.Decimal   `json:"monthlySavings"`
}

// DeriveBaseline averages completed income and expense over the window's
// months (at least one). An inverted window yields a zero baseline.
func DeriveBaseline(txs []finance.Transaction, window finance.DateRange) Baseline {
	b := Baseline{
		Window:          window,
		Months:          1,
		MonthlyIncome:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		MonthlySavings:  decimal.Zero,
	}
	f := Filter{Range: window, IncludePending: Bool(false)}
	if f.empty() {
		return b
	}
	if !window.Start.IsZero() && !window.End.IsZero() {
		if m := finance.MonthsBetween(window.Start, window.End.AddDate(0, 0, 1)); m > 1 {
			b.Months = m
		}
	}

	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range f.Apply(txs) {
		switch tx.Type {
		case finance.TxIncome:
			income = income.Add(tx.Amount)
		case finance.TxExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	months := decimal.NewFromInt(int64(b.Months))
	b.MonthlyIncome = finance.Round(income.Div(months))
	b.MonthlyExpenses = finance.Round(expenses.Div(months))
	b.MonthlySavings = b.MonthlyIncome.Sub(b.MonthlyExpenses)
	return b
}
