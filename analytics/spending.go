package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// SPENDING ANALYZER
// =============================================================================

// SpendingQuery selects and groups the transactions to analyze.
type SpendingQuery struct {
	Filter
	GroupBy finance.Granularity
}

// CategorySpending is one row of the category breakdown.
type CategorySpending struct {
	CategoryID       finance.CategoryID `json:"categoryId"`
	CategoryName     string             `json:"categoryName"`
	CategoryPath     string             `json:"categoryPath,omitempty"`
	Amount           decimal.Decimal    `json:"amount"`
	Percentage       decimal.Decimal    `json:"percentage"`
	TransactionCount int                `json:"transactionCount"`
}

// SeriesPoint aggregates one time bucket.
type SeriesPoint struct {
	Period           finance.BucketKey `json:"period"`
	Start            time.Time         `json:"start"`
	Spent            decimal.Decimal   `json:"spent"`
	Income           decimal.Decimal   `json:"income"`
	Net              decimal.Decimal   `json:"net"`
	TransactionCount int               `json:"transactionCount"`
}

// SpendingResult holds totals, the category breakdown and the series.
// TotalSpent always equals the sum of SpendingByCategory amounts.
type SpendingResult struct {
	Range              finance.DateRange   `json:"range"`
	GroupBy            finance.Granularity `json:"groupBy"`
	TotalSpent         decimal.Decimal     `json:"totalSpent"`
	TotalIncome        decimal.Decimal     `json:"totalIncome"`
	NetAmount          decimal.Decimal     `json:"netAmount"`
	SavingsRate        decimal.Decimal     `json:"savingsRate"`
	TransactionCount   int                 `json:"transactionCount"`
	AverageExpense     decimal.Decimal     `json:"averageExpense"`
	SpendingByCategory []CategorySpending  `json:"spendingByCategory"`
	TimeSeries         []SeriesPoint       `json:"timeSeries"`
}

// TopCategory returns the largest expense category, if any.
func (r *SpendingResult) TopCategory() (CategorySpending, bool) {
	if len(r.SpendingByCategory) == 0 {
		return CategorySpending{}, false
	}
	return r.SpendingByCategory[0], true
}

func emptySpending(q SpendingQuery) *SpendingResult {
	return &SpendingResult{
		Range:              q.Range,
		GroupBy:            q.GroupBy,
		TotalSpent:         decimal.Zero,
		TotalIncome:        decimal.Zero,
		NetAmount:          decimal.Zero,
		SavingsRate:        decimal.Zero,
		AverageExpense:     decimal.Zero,
		SpendingByCategory: []CategorySpending{},
		TimeSeries:         []SeriesPoint{},
	}
}

// AnalyzeSpending totals income and expense, breaks expense down by category
// and buckets both into a series.
func AnalyzeSpending(txs []finance.Transaction, categories []finance.Category, q SpendingQuery) (*SpendingResult, error) {
	if q.GroupBy == "" {
		q.GroupBy = finance.GranularityMonth
	}
	if !q.GroupBy.Valid() {
		return nil, finance.InvalidArgument("groupBy", "unsupported granularity %q", string(q.GroupBy))
	}
	if err := q.Filter.validate(); err != nil {
		return nil, err
	}

	result := emptySpending(q)
	if q.Filter.empty() {
		return result, nil
	}

	index := finance.NewCategoryIndex(categories)
	byCategory := make(map[finance.CategoryID]*CategorySpending)
	series := make(map[finance.BucketKey]*SeriesPoint)
	expenseCount := 0

	for _, tx := range q.Filter.Apply(txs) {
		key, err := finance.Bucket(tx.Date, q.GroupBy)
		if err != nil {
			return nil, err
		}
		point, ok := series[key]
		if !ok {
			start, _ := finance.BucketStart(tx.Date, q.GroupBy)
			point = &SeriesPoint{Period: key, Start: start, Spent: decimal.Zero, Income: decimal.Zero}
			series[key] = point
		}
		point.TransactionCount++
		result.TransactionCount++

		switch tx.Type {
		case finance.TxExpense:
			result.TotalSpent = result.TotalSpent.Add(tx.Amount)
			point.Spent = point.Spent.Add(tx.Amount)
			expenseCount++

			id := tx.CategoryID
			if _, known := index[id]; !known {
				id = ""
			}
			row, ok := byCategory[id]
			if !ok {
				row = &CategorySpending{CategoryID: id, CategoryName: index.Name(id), Amount: decimal.Zero}
				if c, known := index[id]; known {
					row.CategoryPath = c.FullPath()
				}
				byCategory[id] = row
			}
			row.Amount = row.Amount.Add(tx.Amount)
			row.TransactionCount++
		case finance.TxIncome:
			result.TotalIncome = result.TotalIncome.Add(tx.Amount)
			point.Income = point.Income.Add(tx.Amount)
		case finance.TxTransfer, finance.TxAdjustment:
			// counted, but neither spend nor income
		}
	}

	result.NetAmount = result.TotalIncome.Sub(result.TotalSpent)
	result.SavingsRate = finance.Percent(result.NetAmount, result.TotalIncome)
	if expenseCount > 0 {
		result.AverageExpense = finance.Round(result.TotalSpent.Div(decimal.NewFromInt(int64(expenseCount))))
	}

	for _, row := range byCategory {
		row.Percentage = finance.Percent(row.Amount, result.TotalSpent)
		result.SpendingByCategory = append(result.SpendingByCategory, *row)
	}
	sort.Slice(result.SpendingByCategory, func(i, j int) bool {
		a, b := result.SpendingByCategory[i], result.SpendingByCategory[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		if a.CategoryName != b.CategoryName {
			return a.CategoryName < b.CategoryName
		}
		return a.CategoryID < b.CategoryID
	})

	for _, point := range series {
		point.Net = point.Income.Sub(point.Spent)
		result.TimeSeries = append(result.TimeSeries, *point)
	}
	sort.Slice(result.TimeSeries, func(i, j int) bool {
		return result.TimeSeries[i].Period < result.TimeSeries[j].Period
	})

	return result, nil
}
