/*
scenarios.go - Demo data loaders for testing and demonstrations

PURPOSE:
	Provides pre-built data sets that populate the store with realistic
	records for one demo user. Each scenario creates categories, a few
	months of transactions, a budget, goals and debts that exercise
	specific engine behavior.

AVAILABLE SCENARIOS:

	balanced:      Healthy savings rate, budget mostly respected
	overextended:  Spending above income, over-budget categories, a debt
	               whose minimum never covers its interest
	edge-cases:    Zero-target goal, pending and failed transactions,
	               uncategorized spend

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create categories (parents first)
 3. Add transactions relative to today
 4. Add the current month's budget, goals and debts

Every record goes through the same factory converters as the record
endpoints, so demo data obeys the same validation.

USAGE VIA API:

	POST /api/demo/load
	{"scenario_id": "overextended"}

NOTE:

	Loading resets the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Record endpoints using the same converters
  - factory/records.go: Record JSON converters
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/logger"
)

// DemoUserID owns every demo record.
const DemoUserID finance.UserID = "demo-user"

// DefaultDemoScenario is loaded when the request names none.
const DefaultDemoScenario = "balanced"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var demoScenarios = []DemoScenarioDTO{
	{
		ID:          "balanced",
		Name:        "Balanced",
		Description: "Steady salary, 25% savings rate, three debts with room for extra payments",
	},
	{
		ID:          "overextended",
		Name:        "Overextended",
		Description: "Spending above income, over-budget categories, a debt that never amortizes",
	},
	{
		ID:          "edge-cases",
		Name:        "Edge Cases",
		Description: "Zero-target goal, pending/failed transactions, uncategorized spend",
	},
}

var demoLoaders = map[string]func(s *seeder){
	"balanced":     seedBalanced,
	"overextended": seedOverextended,
	"edge-cases":   seedEdgeCases,
}

// ListDemoScenarios returns the loadable scenarios.
func (h *Handler) ListDemoScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, demoScenarios)
}

// LoadDemo resets the store and seeds the requested scenario. An empty body
// loads the default scenario.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	var req LoadDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(w, r, finance.InvalidArgument("body", "Invalid request body: %v", err))
		return
	}
	if req.ScenarioID == "" {
		req.ScenarioID = DefaultDemoScenario
	}
	load, ok := demoLoaders[req.ScenarioID]
	if !ok {
		h.fail(w, r, finance.InvalidArgument("scenario_id", "Unknown scenario %q", req.ScenarioID))
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, err)
		return
	}

	s := newSeeder(ctx, h.Store, DemoUserID, h.today())
	load(s)
	if s.err != nil {
		h.fail(w, r, s.err)
		return
	}
	s.resp.ScenarioID = req.ScenarioID

	log := logger.FromContext(ctx)
	log.Info().
		Str("scenario", req.ScenarioID).
		Int("transactions", s.resp.Transactions).
		Msg("Demo scenario loaded")

	writeJSON(w, http.StatusOK, s.resp)
}

// =============================================================================
// SEEDER
// =============================================================================

// seeder writes records through the factory converters. The first error
// sticks and turns later calls into no-ops.
type seeder struct {
	ctx        context.Context
	store      finance.Store
	user       finance.UserID
	today      time.Time
	categories []finance.Category
	resp       LoadDemoResponse
	err        error
}

func newSeeder(ctx context.Context, store finance.Store, user finance.UserID, today time.Time) *seeder {
	return &seeder{
		ctx:   ctx,
		store: store,
		user:  user,
		today: today,
		resp:  LoadDemoResponse{UserID: string(user)},
	}
}

func (s *seeder) category(id, name, parent string) {
	if s.err != nil {
		return
	}
	c, err := factory.CategoryJSON{ID: id, Name: name, ParentID: parent}.ToCategory(s.user, s.categories)
	if err == nil {
		err = s.store.SaveCategory(s.ctx, c)
	}
	if err != nil {
		s.err = err
		return
	}
	s.categories = append(s.categories, c)
	s.resp.Categories++
}

// monthly adds a transaction on day of each of the last months months,
// the current one included, skipping dates after today.
func (s *seeder) monthly(months, day int, txType finance.TransactionType, category, amount, description string) {
	for back := months - 1; back >= 0; back-- {
		date := s.dayOfMonth(back, day)
		if date.After(s.today) {
			continue
		}
		s.tx(date, txType, category, amount, finance.StatusCompleted, true, description)
	}
}

// dayOfMonth returns day of the month back months before today, clamped to
// the month's last day.
func (s *seeder) dayOfMonth(back, day int) time.Time {
	first := finance.NewDate(s.today.Year(), s.today.Month(), 1).AddDate(0, -back, 0)
	last := first.AddDate(0, 1, -1)
	if day > last.Day() {
		day = last.Day()
	}
	return finance.NewDate(first.Year(), first.Month(), day)
}

func (s *seeder) tx(date time.Time, txType finance.TransactionType, category, amount string, status finance.TransactionStatus, recurring bool, description string) {
	if s.err != nil {
		return
	}
	tj := factory.TransactionJSON{
		ID:          factory.NewID(),
		Amount:      decimal.NewNullDecimal(finance.MustDecimal(amount)),
		Type:        string(txType),
		CategoryID:  category,
		Date:        date.Format(time.DateOnly),
		Status:      string(status),
		IsRecurring: recurring,
		Description: description,
	}
	tx, err := tj.ToTransaction(s.user)
	if err == nil {
		err = s.store.SaveTransaction(s.ctx, tx)
	}
	if err != nil {
		s.err = err
		return
	}
	s.resp.Transactions++
}

// currentBudget creates a monthly budget for this month from category/amount
// pairs.
func (s *seeder) currentBudget(id, name, total string, allocations ...string) {
	if s.err != nil {
		return
	}
	bj := factory.BudgetJSON{
		ID:          id,
		Name:        name,
		TotalAmount: decimal.NewNullDecimal(finance.MustDecimal(total)),
		Period:      string(finance.BudgetMonthly),
		StartDate:   s.dayOfMonth(0, 1).Format(time.DateOnly),
	}
	for i := 0; i+1 < len(allocations); i += 2 {
		bj.CategoryAllocations = append(bj.CategoryAllocations, factory.AllocationJSON{
			CategoryID:      allocations[i],
			AllocatedAmount: decimal.NewNullDecimal(finance.MustDecimal(allocations[i+1])),
			Priority:        i/2 + 1,
		})
	}
	b, err := bj.ToBudget(s.user)
	if err == nil {
		err = s.store.SaveBudget(s.ctx, b)
	}
	if err != nil {
		s.err = err
		return
	}
	s.resp.Budgets++
}

// goal creates a goal that started startedMonths ago and is due in dueMonths.
func (s *seeder) goal(id, name, target, current, monthly string, startedMonths, dueMonths int) {
	if s.err != nil {
		return
	}
	gj := factory.GoalJSON{
		ID:            id,
		Name:          name,
		TargetAmount:  decimal.NewNullDecimal(finance.MustDecimal(target)),
		CurrentAmount: decimal.NewNullDecimal(finance.MustDecimal(current)),
		StartDate:     s.today.AddDate(0, -startedMonths, 0).Format(time.DateOnly),
		TargetDate:    s.today.AddDate(0, dueMonths, 0).Format(time.DateOnly),
	}
	if monthly != "" {
		gj.MonthlyContribution = decimal.NewNullDecimal(finance.MustDecimal(monthly))
	}
	g, err := gj.ToGoal(s.user, s.today)
	if err == nil {
		err = s.store.SaveGoal(s.ctx, g)
	}
	if err != nil {
		s.err = err
		return
	}
	s.resp.Goals++
}

func (s *seeder) debt(id, name, balance, rate, minimum string) {
	if s.err != nil {
		return
	}
	d, err := factory.DebtJSON{
		ID:             id,
		Name:           name,
		Balance:        decimal.NewNullDecimal(finance.MustDecimal(balance)),
		InterestRate:   decimal.NewNullDecimal(finance.MustDecimal(rate)),
		MinimumPayment: decimal.NewNullDecimal(finance.MustDecimal(minimum)),
	}.ToDebt(s.user)
	if err == nil {
		err = s.store.SaveDebt(s.ctx, d)
	}
	if err != nil {
		s.err = err
		return
	}
	s.resp.Debts++
}

func (s *seeder) baseCategories() {
	s.category("salary", "Salary", "")
	s.category("housing", "Housing", "")
	s.category("food", "Food", "")
	s.category("groceries", "Groceries", "food")
	s.category("dining", "Dining Out", "food")
	s.category("transport", "Transport", "")
	s.category("utilities", "Utilities", "housing")
	s.category("entertainment", "Entertainment", "")
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func seedBalanced(s *seeder) {
	s.baseCategories()

	s.monthly(4, 1, finance.TxIncome, "salary", "5000", "Monthly salary")
	s.monthly(4, 2, finance.TxExpense, "housing", "1500", "Rent")
	s.monthly(4, 5, finance.TxExpense, "utilities", "180.40", "Electricity and water")
	s.monthly(4, 6, finance.TxExpense, "groceries", "210.35", "Weekly groceries")
	s.monthly(4, 13, finance.TxExpense, "groceries", "185.10", "Weekly groceries")
	s.monthly(4, 20, finance.TxExpense, "groceries", "199.99", "Weekly groceries")
	s.monthly(4, 10, finance.TxExpense, "dining", "64.50", "Dinner")
	s.monthly(4, 15, finance.TxExpense, "transport", "120", "Transit pass")
	s.monthly(4, 18, finance.TxExpense, "entertainment", "45", "Streaming and cinema")

	s.currentBudget("monthly-budget", "Monthly Budget", "3000",
		"housing", "1500",
		"groceries", "650",
		"dining", "150",
		"transport", "150",
		"utilities", "200",
		"entertainment", "100",
	)

	s.goal("emergency-fund", "Emergency Fund", "10000", "4000", "500", 8, 12)
	s.goal("vacation", "Summer Vacation", "3000", "900", "300", 3, 6)

	s.debt("credit-card", "Credit Card", "3500", "22.9", "105")
	s.debt("car-loan", "Car Loan", "12000", "6.5", "300")
	s.debt("student-loan", "Student Loan", "8000", "4.5", "150")
}

func seedOverextended(s *seeder) {
	s.baseCategories()

	s.monthly(3, 1, finance.TxIncome, "salary", "3200", "Monthly salary")
	s.monthly(3, 2, finance.TxExpense, "housing", "1800", "Rent")
	s.monthly(3, 5, finance.TxExpense, "utilities", "260", "Electricity and water")
	s.monthly(3, 7, finance.TxExpense, "groceries", "420.75", "Groceries")
	s.monthly(3, 9, finance.TxExpense, "dining", "310.20", "Restaurants")
	s.monthly(3, 16, finance.TxExpense, "dining", "185.60", "Takeout")
	s.monthly(3, 11, finance.TxExpense, "transport", "240", "Fuel")
	s.monthly(3, 19, finance.TxExpense, "entertainment", "220", "Concert tickets")

	s.currentBudget("monthly-budget", "Monthly Budget", "2800",
		"housing", "1800",
		"groceries", "400",
		"dining", "150",
		"transport", "200",
		"entertainment", "100",
	)

	s.goal("emergency-fund", "Emergency Fund", "6000", "250", "100", 10, 4)

	s.debt("store-card", "Store Card", "6000", "29.9", "100")
	s.debt("personal-loan", "Personal Loan", "9000", "11", "250")
}

func seedEdgeCases(s *seeder) {
	s.category("salary", "Salary", "")
	s.category("food", "Food", "")

	payday := s.dayOfMonth(0, 1)
	s.tx(payday, finance.TxIncome, "salary", "2500", finance.StatusCompleted, true, "Salary")
	s.tx(payday, finance.TxExpense, "food", "80.005", finance.StatusCompleted, false, "Rounds to cents")
	s.tx(payday, finance.TxExpense, "", "42", finance.StatusCompleted, false, "No category")
	s.tx(payday, finance.TxExpense, "food", "500", finance.StatusPending, false, "Still pending")
	s.tx(payday, finance.TxExpense, "food", "999", finance.StatusFailed, false, "Declined card")

	s.goal("zero-target", "Placeholder Goal", "0", "0", "", 1, 6)
	s.goal("already-done", "Laptop", "1200", "1200", "", 5, 1)
}
