package planning

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
)

// =============================================================================
// DEBT PAYOFF PLANNER
// =============================================================================

// Strategy orders debts for extra payments.
type Strategy string

const (
	// Avalanche targets the highest interest rate first.
	// Ties: lower Priority, then smaller balance, then input order.
	Avalanche Strategy = "avalanche"

	// Snowball targets the smallest balance first.
	// Ties: lower Priority, then input order.
	Snowball Strategy = "snowball"
)

func (s Strategy) Valid() bool {
	switch s {
	case Avalanche, Snowball:
		return true
	}
	return false
}

// ParseStrategy accepts the request form of a strategy. Empty means avalanche.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return Avalanche, nil
	}
	st := Strategy(s)
	if !st.Valid() {
		return "", finance.InvalidArgument("strategy", "strategy must be avalanche or snowball, got %q", s)
	}
	return st, nil
}

// DefaultMaxPayoffMonths caps the simulation at 50 years. Minimum payments
// below interest accrual never converge; the cap turns that into a reported
// condition.
const DefaultMaxPayoffMonths = 600

// PayoffRequest is the input to the planner.
type PayoffRequest struct {
	Debts        []finance.Debt
	ExtraPayment decimal.Decimal // monthly budget beyond the minimums
	Strategy     Strategy
	StartDate    time.Time // optional; dates the timeline when set
}

// DebtBalance is one debt's remaining balance after a simulated month.
type DebtBalance struct {
	DebtID  finance.DebtID  `json:"debtId,omitempty"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthSnapshot is the state after one simulated month.
type MonthSnapshot struct {
	Month        int             `json:"month"`
	Date         *time.Time      `json:"date,omitempty"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
	Payment      decimal.Decimal `json:"payment"`
	Interest     decimal.Decimal `json:"interest"`
	Balances     []DebtBalance   `json:"balances"`
	PaidOff      []string        `json:"paidOff,omitempty"`
}

// PayoffEntry records when a debt closed.
type PayoffEntry struct {
	DebtID       finance.DebtID  `json:"debtId,omitempty"`
	Name         string          `json:"name"`
	Month        int             `json:"month"`
	InterestPaid decimal.Decimal `json:"interestPaid"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
}

// PayoffPlan is the full simulated schedule.
type PayoffPlan struct {
	Strategy          Strategy        `json:"strategy"`
	TotalDebt         decimal.Decimal `json:"totalDebt"`
	MonthlyBudget     decimal.Decimal `json:"monthlyBudget"`
	ExtraPayment      decimal.Decimal `json:"extraPayment"`
	PriorityOrder     []string        `json:"priorityOrder"`
	PayoffOrder       []PayoffEntry   `json:"payoffOrder"`
	MonthsToPayoff    int             `json:"monthsToPayoff"`
	TotalInterestPaid decimal.Decimal `json:"totalInterestPaid"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	CapReached        bool            `json:"capReached"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
	Timeline          []MonthSnapshot `json:"timeline"`
}

// DebtPlanner simulates amortization under a strategy.
type DebtPlanner struct {
	MaxMonths int
}

func NewDebtPlanner() *DebtPlanner {
	return &DebtPlanner{MaxMonths: DefaultMaxPayoffMonths}
}

// Plan runs the simulation to completion or to the month cap.
func (p *DebtPlanner) Plan(req PayoffRequest) (*PayoffPlan, error) {
	sim, err := p.Simulator(req)
	if err != nil {
		return nil, err
	}

	plan := &PayoffPlan{
		Strategy:      sim.strategy,
		TotalDebt:     sim.totalDebt,
		MonthlyBudget: sim.budget,
		ExtraPayment:  sim.extra,
		Timeline:      []MonthSnapshot{},
	}
	for _, d := range sim.initial {
		plan.PriorityOrder = append(plan.PriorityOrder, d.name)
	}

	for {
		snap, ok := sim.Next()
		if !ok {
			break
		}
		plan.Timeline = append(plan.Timeline, snap)
	}

	plan.PayoffOrder = sim.PayoffOrder()
	plan.MonthsToPayoff = sim.Month()
	plan.CapReached = sim.CapReached()
	plan.TotalInterestPaid = sim.InterestPaid()
	plan.TotalPaid = sim.Paid()
	plan.RemainingBalance = sim.Remaining()
	return plan, nil
}

// StrategyComparison runs both strategies on the same debts and budget.
type StrategyComparison struct {
	Avalanche     *PayoffPlan     `json:"avalanche"`
	Snowball      *PayoffPlan     `json:"snowball"`
	InterestSaved decimal.Decimal `json:"interestSaved"` // snowball interest minus avalanche interest
	MonthsSaved   int             `json:"monthsSaved"`   // snowball months minus avalanche months
	Recommended   Strategy        `json:"recommended"`
}

// Compare plans with both strategies. The request's Strategy is ignored.
func (p *DebtPlanner) Compare(req PayoffRequest) (*StrategyComparison, error) {
	req.Strategy = Avalanche
	av, err := p.Plan(req)
	if err != nil {
		return nil, err
	}
	req.Strategy = Snowball
	sn, err := p.Plan(req)
	if err != nil {
		return nil, err
	}

	c := &StrategyComparison{
		Avalanche:     av,
		Snowball:      sn,
		InterestSaved: sn.TotalInterestPaid.Sub(av.TotalInterestPaid),
		MonthsSaved:   sn.MonthsToPayoff - av.MonthsToPayoff,
		Recommended:   Avalanche,
	}
	// Snowball wins only when it is strictly cheaper or equally cheap and faster.
	if c.InterestSaved.IsNegative() || (c.InterestSaved.IsZero() && c.MonthsSaved < 0) {
		c.Recommended = Snowball
	}
	return c, nil
}

// =============================================================================
// PAYOFF SIMULATOR - lazy, restartable month stepper
// =============================================================================

type debtState struct {
	id          finance.DebtID
	name        string
	balance     decimal.Decimal
	monthlyRate decimal.Decimal
	minimum     decimal.Decimal
	interest    decimal.Decimal
	paid        decimal.Decimal
	closed      bool
	closedMonth int
}

// PayoffSimulator yields one MonthSnapshot per call to Next. It holds its own
// copies of the debts; the input records are never modified.
type PayoffSimulator struct {
	strategy  Strategy
	budget    decimal.Decimal
	extra     decimal.Decimal
	totalDebt decimal.Decimal
	maxMonths int
	start     time.Time

	initial []debtState
	debts   []debtState
	month   int
	order   []PayoffEntry
}

// Simulator validates the request and returns a stepper positioned before
// month one.
func (p *DebtPlanner) Simulator(req PayoffRequest) (*PayoffSimulator, error) {
	if len(req.Debts) == 0 {
		return nil, finance.InvalidArgument("debts", "debts array is required and must not be empty")
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = Avalanche
	}
	if !strategy.Valid() {
		return nil, finance.InvalidArgument("strategy", "strategy must be avalanche or snowball, got %q", string(strategy))
	}
	if req.ExtraPayment.IsNegative() {
		return nil, finance.InvalidArgument("extraPayment", "extraPayment must not be negative")
	}

	states := make([]debtState, len(req.Debts))
	priorities := make([]int, len(req.Debts))
	for i, d := range req.Debts {
		if err := validateDebt(i, d); err != nil {
			return nil, err
		}
		states[i] = debtState{
			id:          d.ID,
			name:        d.Name,
			balance:     finance.Round(d.Balance.Decimal),
			monthlyRate: finance.MonthlyRate(d.InterestRate.Decimal),
			minimum:     finance.Round(d.MinimumPayment.Decimal),
			interest:    decimal.Zero,
			paid:        decimal.Zero,
		}
		priorities[i] = d.Priority
	}

	idx := make([]int, len(states))
	for i := range idx {
		idx[i] = i
	}
	rates := make([]decimal.Decimal, len(states))
	for i, d := range req.Debts {
		rates[i] = d.InterestRate.Decimal
	}
	sort.SliceStable(idx, func(a, b int) bool {
		x, y := idx[a], idx[b]
		switch strategy {
		case Avalanche:
			if c := rates[x].Cmp(rates[y]); c != 0 {
				return c > 0
			}
			if priorities[x] != priorities[y] {
				return priorities[x] < priorities[y]
			}
			return states[x].balance.LessThan(states[y].balance)
		case Snowball:
			if c := states[x].balance.Cmp(states[y].balance); c != 0 {
				return c < 0
			}
			return priorities[x] < priorities[y]
		}
		return false
	})

	ordered := make([]debtState, len(states))
	total, budget := decimal.Zero, finance.Round(req.ExtraPayment)
	for i, j := range idx {
		ordered[i] = states[j]
		total = total.Add(states[j].balance)
		budget = budget.Add(states[j].minimum)
	}

	maxMonths := p.MaxMonths
	if maxMonths <= 0 {
		maxMonths = DefaultMaxPayoffMonths
	}

	s := &PayoffSimulator{
		strategy:  strategy,
		budget:    budget,
		extra:     finance.Round(req.ExtraPayment),
		totalDebt: total,
		maxMonths: maxMonths,
		initial:   ordered,
	}
	if !req.StartDate.IsZero() {
		s.start = finance.DateOf(req.StartDate)
	}
	s.Reset()
	return s, nil
}

func validateDebt(i int, d finance.Debt) error {
	label := d.Name
	if label == "" {
		label = fmt.Sprintf("debts[%d]", i)
	}
	field := fmt.Sprintf("debts[%d]", i)
	switch {
	case !d.Balance.Valid:
		return finance.InvalidArgument(field+".balance", "%s is missing balance", label)
	case !d.InterestRate.Valid:
		return finance.InvalidArgument(field+".interestRate", "%s is missing interestRate", label)
	case !d.MinimumPayment.Valid:
		return finance.InvalidArgument(field+".minimumPayment", "%s is missing minimumPayment", label)
	case d.Balance.Decimal.IsNegative():
		return finance.InvalidArgument(field+".balance", "%s balance must not be negative", label)
	case d.InterestRate.Decimal.IsNegative():
		return finance.InvalidArgument(field+".interestRate", "%s interestRate must not be negative", label)
	case d.MinimumPayment.Decimal.IsNegative():
		return finance.InvalidArgument(field+".minimumPayment", "%s minimumPayment must not be negative", label)
	}
	return nil
}

// Reset rewinds the simulator to before month one.
func (s *PayoffSimulator) Reset() {
	s.debts = make([]debtState, len(s.initial))
	copy(s.debts, s.initial)
	s.month = 0
	s.order = nil

	// Debts that start at zero are closed before the first month.
	for i := range s.debts {
		if !s.debts[i].balance.IsPositive() {
			s.close(i)
		}
	}
}

func (s *PayoffSimulator) close(i int) {
	d := &s.debts[i]
	d.closed = true
	d.closedMonth = s.month
	d.balance = decimal.Zero
	s.order = append(s.order, PayoffEntry{
		DebtID:       d.id,
		Name:         d.name,
		Month:        s.month,
		InterestPaid: d.interest,
		TotalPaid:    d.paid,
	})
}

// Done reports whether every debt is closed.
func (s *PayoffSimulator) Done() bool {
	for _, d := range s.debts {
		if !d.closed {
			return false
		}
	}
	return true
}

// CapReached reports whether the simulation stopped at the month cap with
// balance still outstanding.
func (s *PayoffSimulator) CapReached() bool { return !s.Done() && s.month >= s.maxMonths }

func (s *PayoffSimulator) Month() int { return s.month }

func (s *PayoffSimulator) PayoffOrder() []PayoffEntry {
	return append([]PayoffEntry{}, s.order...)
}

func (s *PayoffSimulator) InterestPaid() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.debts {
		total = total.Add(d.interest)
	}
	return total
}

func (s *PayoffSimulator) Paid() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.debts {
		total = total.Add(d.paid)
	}
	return total
}

func (s *PayoffSimulator) Remaining() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.debts {
		total = total.Add(d.balance)
	}
	return total
}

// Next simulates one month. It returns false once every debt is closed or
// the month cap is reached.
//
// Each month: open debts accrue interest (rounded to cents), every open debt
// gets its minimum payment capped at its balance, and whatever is left of the
// budget (minimums freed by closed debts plus the extra payment) goes to the
// open debts in priority order.
func (s *PayoffSimulator) Next() (MonthSnapshot, bool) {
	if s.Done() || s.month >= s.maxMonths {
		return MonthSnapshot{}, false
	}
	s.month++

	interest := decimal.Zero
	for i := range s.debts {
		d := &s.debts[i]
		if d.closed {
			continue
		}
		accrued := finance.Round(d.balance.Mul(d.monthlyRate))
		d.balance = d.balance.Add(accrued)
		d.interest = d.interest.Add(accrued)
		interest = interest.Add(accrued)
	}

	pool := s.budget
	pay := func(d *debtState, amount decimal.Decimal) {
		amount = decimal.Min(amount, d.balance, pool)
		if !amount.IsPositive() {
			return
		}
		d.balance = d.balance.Sub(amount)
		d.paid = d.paid.Add(amount)
		pool = pool.Sub(amount)
	}

	for i := range s.debts {
		if !s.debts[i].closed {
			pay(&s.debts[i], s.debts[i].minimum)
		}
	}
	for i := range s.debts {
		if !pool.IsPositive() {
			break
		}
		if !s.debts[i].closed {
			pay(&s.debts[i], pool)
		}
	}

	snap := MonthSnapshot{
		Month:        s.month,
		Payment:      s.budget.Sub(pool),
		Interest:     interest,
		TotalBalance: decimal.Zero,
		Balances:     make([]DebtBalance, 0, len(s.debts)),
	}
	for i := range s.debts {
		d := &s.debts[i]
		if !d.closed && !d.balance.IsPositive() {
			s.close(i)
			snap.PaidOff = append(snap.PaidOff, d.name)
		}
		snap.TotalBalance = snap.TotalBalance.Add(d.balance)
		snap.Balances = append(snap.Balances, DebtBalance{DebtID: d.id, Name: d.name, Balance: d.balance})
	}
	if !s.start.IsZero() {
		date := s.start.AddDate(0, s.month, 0)
		snap.Date = &date
	}
	return snap, true
}
