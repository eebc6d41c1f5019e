/*
handlers.go - HTTP API handlers for the financial planning engine

PURPOSE:
  Exposes the engine via REST API. Handlers load the user's records from
  the store, call the pure engine functions, and serialize the results.
  The engine never touches the store; this file is the only place where
  records and engine meet.

ENDPOINTS (all under /api/users/{userID}):
  Analytics:
    GET    /analytics/spending         Spending breakdown and time series
    GET    /analytics/cashflow         Inflow/outflow per period
    GET    /budgets/{budgetID}/variance Budget vs actual per allocation

  Goals:
    GET    /goals                      Progress for every goal
    GET    /goals/{goalID}/progress    Progress for one goal
    POST   /goals/{goalID}/progress    Add (or withdraw) an amount

  Planning:
    POST   /debts/plan                 Payoff schedule for one strategy
    POST   /debts/compare              Avalanche vs snowball
    POST   /retirement/projection      Retirement projection
    POST   /scenarios                  Optimistic/realistic/pessimistic
    GET    /recommendations            Rule-based advice

  Records:
    POST   /transactions, /categories, /budgets, /goals, /debts

QUERY PARAMETERS:
  start, end   YYYY-MM-DD, inclusive. Default: first of end's month to today.
  group_by     day | week | month | quarter | year. Default: month.
  categories   Comma-separated category IDs.
  types        Comma-separated transaction types.
  min_amount, max_amount, include_recurring, include_pending

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: finance.ErrInvalidArgument
  - 404: finance.ErrNotFound
  - 500: Anything else (logged, details withheld)

CONCURRENCY:
  Goal progress updates are read-modify-write against the store. They are
  serialized per goal with a keyed mutex; everything else is stateless.

SECURITY NOTE:
  No authentication. The user ID in the path is trusted.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/advice"
	"github.com/warp/finance-engine/analytics"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/logger"
	"github.com/warp/finance-engine/planning"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  finance.Store
	Engine *factory.Engine
	Log    zerolog.Logger

	// Now is the clock behind default date ranges and goal tracking.
	Now func() time.Time

	goalLocks keyedMutex
}

// NewHandler creates a handler. A nil engine gets the default tuning.
func NewHandler(store finance.Store, engine *factory.Engine, log zerolog.Logger) *Handler {
	if engine == nil {
		engine = factory.DefaultEngine()
	}
	return &Handler{
		Store:  store,
		Engine: engine,
		Log:    log,
		Now:    time.Now,
	}
}

func (h *Handler) today() time.Time { return finance.DateOf(h.Now()) }

type ctxKey int

const userKey ctxKey = iota

// userCtx validates the {userID} path parameter and stores it in the context.
func userCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")
		if err := finance.ValidateID("userId", id); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, finance.UserID(id))
		ctx = logger.WithContext(ctx, logger.WithFields(logger.FromContext(ctx), map[string]any{"user_id": id}))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) finance.UserID {
	id, _ := r.Context().Value(userKey).(finance.UserID)
	return id
}

// =============================================================================
// ANALYTICS HANDLERS
// =============================================================================

// GetSpending returns the spending analysis for the query window.
func (h *Handler) GetSpending(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	groupBy, err := finance.ParseGranularity(r.URL.Query().Get("group_by"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	txs, err := h.Store.TransactionsInRange(ctx, userID(r), filter.Range.Start, filter.Range.End)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	categories, err := h.Store.Categories(ctx, userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := analytics.AnalyzeSpending(txs, categories, analytics.SpendingQuery{Filter: filter, GroupBy: groupBy})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetCashFlow returns inflow and outflow per period.
func (h *Handler) GetCashFlow(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	groupBy, err := finance.ParseGranularity(q.Get("group_by"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	includePending, err := parseBool(q, "include_pending")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	txs, err := h.Store.TransactionsInRange(r.Context(), userID(r), rng.Start, rng.End)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := analytics.AnalyzeCashFlow(txs, analytics.CashFlowQuery{
		Range:          rng,
		GroupBy:        groupBy,
		IncludePending: includePending,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetBudgetVariance compares a budget with actual spending. Without start/end
// the budget's own period is used.
func (h *Handler) GetBudgetVariance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "budgetID")
	if err := finance.ValidateID("budgetId", id); err != nil {
		h.fail(w, r, err)
		return
	}

	var window finance.DateRange
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		var err error
		if window, err = h.parseRange(r); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	ctx := r.Context()
	budgets, err := h.Store.Budgets(ctx, userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	budget, err := finance.FindBudget(budgets, finance.BudgetID(id))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txs, err := h.Store.TransactionsInRange(ctx, userID(r), budget.StartDate, budget.EndDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	categories, err := h.Store.Categories(ctx, userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	variance, err := h.Engine.Budgets.Calculate(budgets, budget.ID, txs, categories, window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, variance)
}

// =============================================================================
// GOAL HANDLERS
// =============================================================================

// ListGoalProgress tracks every goal of the user.
func (h *Handler) ListGoalProgress(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Store.Goals(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalProgressDTOs(planning.TrackAll(goals, h.today())))
}

// GetGoalProgress tracks one goal.
func (h *Handler) GetGoalProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "goalID")
	if err := finance.ValidateID("goalId", id); err != nil {
		h.fail(w, r, err)
		return
	}
	goal, err := h.Store.Goal(r.Context(), userID(r), finance.GoalID(id))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalProgressDTO(planning.TrackGoal(*goal, h.today())))
}

// UpdateGoalProgress adds the request amount to the goal and returns the new
// progress.
func (h *Handler) UpdateGoalProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "goalID")
	if err := finance.ValidateID("goalId", id); err != nil {
		h.fail(w, r, err)
		return
	}
	var req UpdateProgressRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if !req.Amount.Valid {
		h.fail(w, r, finance.InvalidArgument("amount", "amount is required"))
		return
	}

	user := userID(r)
	unlock := h.goalLocks.Lock(string(user) + "/" + id)
	defer unlock()

	ctx := r.Context()
	goal, err := h.Store.Goal(ctx, user, finance.GoalID(id))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	updated := planning.UpdateProgress(*goal, req.Amount.Decimal)
	if err := h.Store.SaveGoal(ctx, updated); err != nil {
		h.fail(w, r, err)
		return
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("goal_id", id).
		Str("delta", req.Amount.Decimal.String()).
		Str("current", updated.CurrentAmount.String()).
		Msg("Goal progress updated")

	writeJSON(w, http.StatusOK, toGoalProgressDTO(planning.TrackGoal(updated, h.today())))
}

// =============================================================================
// PLANNING HANDLERS
// =============================================================================

// PlanDebts simulates payoff under the requested strategy.
func (h *Handler) PlanDebts(w http.ResponseWriter, r *http.Request) {
	req, payoff, err := h.payoffRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	plan, err := h.Engine.Debts.Plan(payoff)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if req.IncludeTimeline != nil && !*req.IncludeTimeline {
		plan.Timeline = nil
	}
	writeJSON(w, http.StatusOK, plan)
}

// CompareDebts runs both strategies on the same debts.
func (h *Handler) CompareDebts(w http.ResponseWriter, r *http.Request) {
	req, payoff, err := h.payoffRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cmp, err := h.Engine.Debts.Compare(payoff)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if req.IncludeTimeline != nil && !*req.IncludeTimeline {
		cmp.Avalanche.Timeline = nil
		cmp.Snowball.Timeline = nil
	}
	writeJSON(w, http.StatusOK, cmp)
}

// payoffRequest decodes the body. When it carries no debts the user's stored
// debts are planned instead.
func (h *Handler) payoffRequest(r *http.Request) (DebtPlanRequest, planning.PayoffRequest, error) {
	var req DebtPlanRequest
	if err := decode(r, &req); err != nil {
		return req, planning.PayoffRequest{}, err
	}

	var (
		debts []finance.Debt
		err   error
	)
	if req.Debts != nil {
		debts, err = factory.ToDebts(userID(r), req.Debts)
	} else {
		debts, err = h.Store.Debts(r.Context(), userID(r))
	}
	if err != nil {
		return req, planning.PayoffRequest{}, err
	}

	strategy, err := planning.ParseStrategy(req.Strategy)
	if err != nil {
		return req, planning.PayoffRequest{}, err
	}
	payoff := planning.PayoffRequest{
		Debts:        debts,
		ExtraPayment: req.ExtraPayment,
		Strategy:     strategy,
	}
	if req.StartDate != "" {
		if payoff.StartDate, err = factory.ParseDate("startDate", req.StartDate); err != nil {
			return req, planning.PayoffRequest{}, err
		}
	}
	return req, payoff, nil
}

// ProjectRetirement projects savings to the retirement age.
func (h *Handler) ProjectRetirement(w http.ResponseWriter, r *http.Request) {
	var req factory.RetirementJSON
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	params, err := req.ToParams()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	projection, err := h.Engine.Retirement.Project(params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

// GenerateScenarios projects the user's baseline under three assumptions.
func (h *Handler) GenerateScenarios(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	months := req.BaselineMonths
	if months <= 0 {
		months = DefaultBaselineMonths
	}

	today := h.today()
	window := finance.NewDateRange(today.AddDate(0, -months, 1), today)
	txs, err := h.Store.TransactionsInRange(r.Context(), userID(r), window.Start, window.End)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	baseline := analytics.DeriveBaseline(txs, window)

	profile := planning.Profile{
		MonthlyIncome:    orDefault(req.MonthlyIncome, baseline.MonthlyIncome),
		MonthlyExpenses:  orDefault(req.MonthlyExpenses, baseline.MonthlyExpenses),
		CurrentSavings:   orDefault(req.CurrentSavings, decimal.Zero),
		IncomeGrowth:     orDefault(req.IncomeGrowth, DefaultIncomeGrowth),
		ExpenseGrowth:    orDefault(req.ExpenseGrowth, DefaultExpenseGrowth),
		InvestmentReturn: orDefault(req.InvestmentReturn, DefaultInvestmentReturn),
	}
	scenarios, err := h.Engine.Scenarios.Generate(profile, req.TimeHorizon)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScenariosResponse{Baseline: baseline, Scenarios: scenarios})
}

func orDefault(v decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return fallback
}

// GetRecommendations runs every analyzer over the query window and feeds
// the results to the recommendation rules.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()
	user := userID(r)
	log := logger.FromContext(ctx)

	txs, err := h.Store.TransactionsInRange(ctx, user, rng.Start, rng.End)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	categories, err := h.Store.Categories(ctx, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	budgets, err := h.Store.Budgets(ctx, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	goals, err := h.Store.Goals(ctx, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	debts, err := h.Store.Debts(ctx, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	in := advice.Inputs{
		AsOf:    rng.End,
		Budgets: h.Engine.Budgets.CalculateAll(budgets, txs, categories, rng),
		Goals:   planning.TrackAll(goals, rng.End),
	}
	if in.Spending, err = analytics.AnalyzeSpending(txs, categories, analytics.SpendingQuery{
		Filter: analytics.Filter{Range: rng},
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	if in.CashFlow, err = analytics.AnalyzeCashFlow(txs, analytics.CashFlowQuery{Range: rng}); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(debts) > 0 {
		// Stored debts with missing amounts only cost the debt advice.
		if in.Debt, err = h.Engine.Debts.Compare(planning.PayoffRequest{Debts: debts}); err != nil {
			log.Warn().Err(err).Msg("Skipping debt recommendations")
			in.Debt = nil
		}
	}

	lookback := h.Engine.Advice.IncomeLookbackDays
	if lookback <= 0 {
		lookback = advice.DefaultIncomeLookbackDays
	}
	if in.Transactions, err = h.Store.TransactionsInRange(ctx, user, rng.End.AddDate(0, 0, -lookback), rng.End); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationsResponse{
		AsOf:            formatDate(rng.End),
		Range:           rng.String(),
		Recommendations: h.Engine.Advice.Recommend(in),
	})
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// CreateTransaction stores a transaction and echoes it with its ID.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req factory.TransactionJSON
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := req.ToTransaction(userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.SaveTransaction(r.Context(), tx); err != nil {
		h.fail(w, r, err)
		return
	}
	req.ID, req.Status, req.Amount = string(tx.ID), string(tx.Status), decimal.NewNullDecimal(tx.Amount)
	writeJSON(w, http.StatusCreated, req)
}

// CreateCategory stores a category under an optional existing parent.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req factory.CategoryJSON
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	existing, err := h.Store.Categories(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := req.ToCategory(userID(r), existing)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.SaveCategory(r.Context(), c); err != nil {
		h.fail(w, r, err)
		return
	}
	req.ID = string(c.ID)
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req factory.BudgetJSON
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := req.ToBudget(userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.SaveBudget(r.Context(), b); err != nil {
		h.fail(w, r, err)
		return
	}
	req.ID, req.Period, req.EndDate = string(b.ID), string(b.Period), formatDate(b.EndDate)
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req factory.GoalJSON
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	g, err := req.ToGoal(userID(r), h.today())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.SaveGoal(r.Context(), g); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalProgressDTO(planning.TrackGoal(g, h.today())))
}

func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var req factory.DebtJSON
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := req.ToDebt(userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.SaveDebt(r.Context(), d); err != nil {
		h.fail(w, r, err)
		return
	}
	req.ID = string(d.ID)
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// QUERY PARSING
// =============================================================================

// parseRange reads start and end. A missing end is today; a missing start is
// the first day of end's month.
func (h *Handler) parseRange(r *http.Request) (finance.DateRange, error) {
	q := r.URL.Query()
	end := h.today()
	if s := q.Get("end"); s != "" {
		t, err := factory.ParseDate("end", s)
		if err != nil {
			return finance.DateRange{}, err
		}
		end = t
	}
	start := finance.NewDate(end.Year(), end.Month(), 1)
	if s := q.Get("start"); s != "" {
		t, err := factory.ParseDate("start", s)
		if err != nil {
			return finance.DateRange{}, err
		}
		start = t
	}
	return finance.NewDateRange(start, end), nil
}

func (h *Handler) parseFilter(r *http.Request) (analytics.Filter, error) {
	rng, err := h.parseRange(r)
	if err != nil {
		return analytics.Filter{}, err
	}
	f := analytics.Filter{Range: rng}
	q := r.URL.Query()

	for _, id := range splitList(q.Get("categories")) {
		f.Categories = append(f.Categories, finance.CategoryID(id))
	}
	for _, t := range splitList(q.Get("types")) {
		f.Types = append(f.Types, finance.TransactionType(t))
	}
	if f.MinAmount, err = parseDecimal(q, "min_amount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseDecimal(q, "max_amount"); err != nil {
		return f, err
	}
	if f.IncludeRecurring, err = parseBool(q, "include_recurring"); err != nil {
		return f, err
	}
	if f.IncludePending, err = parseBool(q, "include_pending"); err != nil {
		return f, err
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDecimal(q map[string][]string, key string) (decimal.NullDecimal, error) {
	vals := q[key]
	if len(vals) == 0 || vals[0] == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(vals[0])
	if err != nil {
		return decimal.NullDecimal{}, finance.InvalidArgument(key, "%s must be a number", key)
	}
	return decimal.NewNullDecimal(d), nil
}

func parseBool(q map[string][]string, key string) (*bool, error) {
	vals := q[key]
	if len(vals) == 0 || vals[0] == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(vals[0])
	if err != nil {
		return nil, finance.InvalidArgument(key, "%s must be true or false", key)
	}
	return &b, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return finance.InvalidArgument("body", "Invalid request body: %v", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// keyedMutex serializes work per key. An entry lives only while some
// caller holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		if m.refs--; m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// fail maps err to a status code and writes the error body. Server errors
// are logged and their details withheld.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, finance.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, finance.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), err)
	default:
		log := logger.FromContext(r.Context())
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	switch status {
	case http.StatusBadRequest:
		resp.Code = "INVALID_ARGUMENT"
	case http.StatusNotFound:
		resp.Code = "NOT_FOUND"
	default:
		resp.Code = "INTERNAL"
	}

	var invalid *finance.InvalidArgumentError
	var missing *finance.NotFoundError
	switch {
	case errors.As(err, &invalid) && invalid.Field != "":
		resp.Details = map[string]string{"field": invalid.Field}
	case errors.As(err, &missing):
		resp.Details = map[string]string{"entity": missing.Entity, "id": missing.ID}
	}
	writeJSON(w, status, resp)
}
