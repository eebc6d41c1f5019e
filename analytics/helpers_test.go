package analytics_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	catFood = finance.Category{ID: "c-food", Name: "Food", Path: []string{"Living"}, Level: 1}
	catRent = finance.Category{ID: "c-rent", Name: "Rent"}
	catFun  = finance.Category{ID: "c-fun", Name: "Entertainment"}

	categories = []finance.Category{catFood, catRent, catFun}
)

func d(s string) decimal.Decimal { return finance.MustDecimal(s) }

func tx(id string, typ finance.TransactionType, cat finance.CategoryID, date time.Time, amount string) finance.Transaction {
	return finance.Transaction{
		ID:         finance.TransactionID(id),
		UserID:     "u1",
		Amount:     d(amount),
		Type:       typ,
		CategoryID: cat,
		Date:       date,
		Status:     finance.StatusCompleted,
	}
}

func withStatus(t finance.Transaction, s finance.TransactionStatus) finance.Transaction {
	t.Status = s
	return t
}

func march(day int) time.Time { return finance.NewDate(2025, time.March, day) }

func marchWindow() finance.DateRange {
	return finance.NewDateRange(march(1), march(31))
}

// marchTransactions is a month of mixed activity:
// income 3000, expenses 1400.34 across Rent, Food and an unknown category.
func marchTransactions() []finance.Transaction {
	return []finance.Transaction{
		tx("t1", finance.TxIncome, "", march(1), "3000"),
		tx("t2", finance.TxExpense, "c-rent", march(2), "1200"),
		tx("t3", finance.TxExpense, "c-food", march(5), "100.333"),
		tx("t4", finance.TxExpense, "c-food", march(20), "50.005"),
		tx("t5", finance.TxExpense, "c-unknown", march(21), "10"),
		tx("t6", finance.TxTransfer, "", march(22), "500"),
		withStatus(tx("t7", finance.TxExpense, "c-food", march(23), "999"), finance.StatusFailed),
		withStatus(tx("t8", finance.TxExpense, "c-food", march(24), "40"), finance.StatusPending),
		tx("t9", finance.TxExpense, "c-food", finance.NewDate(2025, time.April, 2), "70"),
	}
}
