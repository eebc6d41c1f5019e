/*
Package factory provides JSON to Go conversion for engine configuration and
for the records the engine consumes.

PURPOSE:
  Converts a JSON engine configuration into wired engine components, and JSON
  request bodies into finance records. Tuning (alert threshold, payoff cap,
  scenario multipliers) changes without code changes, and records arriving
  over HTTP are checked for missing required fields before they reach the
  engine.

JSON SCHEMA (engine):
  {
    "alert_threshold": 80,
    "max_payoff_months": 600,
    "min_working_age": 18,
    "max_age": 100,
    "max_time_horizon": 50,
    "savings_rate_target": 20,
    "scenarios": {
      "optimistic":  {"growth": 1.5, "expense": 0.75},
      "realistic":   {"growth": 1.0, "expense": 1.0},
      "pessimistic": {"growth": 0.5, "expense": 1.25}
    }
  }

  Every field is optional; omitted fields take the defaults above. A
  scenario entry replaces both of that scenario's multipliers.

USAGE:
  cfg, err := factory.ParseEngineConfig(data)
  engine := cfg.Build()
  plan, err := engine.Debts.Plan(req)

SEE ALSO:
  - records.go: JSON to finance records
  - cmd/server/main.go: -config flag
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/advice"
	"github.com/warp/finance-engine/analytics"
	"github.com/warp/finance-engine/planning"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// EngineConfig is the JSON representation of engine tuning.
type EngineConfig struct {
	AlertThreshold    decimal.Decimal            `json:"alert_threshold"`
	MaxPayoffMonths   int                        `json:"max_payoff_months"`
	MinWorkingAge     int                        `json:"min_working_age"`
	MaxAge            int                        `json:"max_age"`
	MaxTimeHorizon    int                        `json:"max_time_horizon"`
	SavingsRateTarget decimal.Decimal            `json:"savings_rate_target"`
	Scenarios         map[string]MultipliersJSON `json:"scenarios,omitempty"`
}

// MultipliersJSON scales baseline rates for one scenario.
type MultipliersJSON struct {
	Growth  decimal.Decimal `json:"growth"`
	Expense decimal.Decimal `json:"expense"`
}

// DefaultEngineConfig returns the built-in tuning.
func DefaultEngineConfig() EngineConfig {
	cfg := EngineConfig{
		AlertThreshold:    analytics.DefaultAlertThreshold,
		MaxPayoffMonths:   planning.DefaultMaxPayoffMonths,
		MinWorkingAge:     planning.DefaultMinWorkingAge,
		MaxAge:            planning.DefaultMaxAge,
		MaxTimeHorizon:    planning.DefaultMaxTimeHorizon,
		SavingsRateTarget: advice.DefaultSavingsRateTarget,
		Scenarios:         make(map[string]MultipliersJSON),
	}
	for st, m := range planning.DefaultMultipliers() {
		cfg.Scenarios[string(st)] = MultipliersJSON{Growth: m.Growth, Expense: m.Expense}
	}
	return cfg
}

// =============================================================================
// PARSING
// =============================================================================

// ParseEngineConfig parses JSON over the defaults. An empty document yields
// the defaults.
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	var raw EngineConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse engine config JSON: %w", err)
	}

	if !raw.AlertThreshold.IsZero() {
		cfg.AlertThreshold = raw.AlertThreshold
	}
	if raw.MaxPayoffMonths != 0 {
		cfg.MaxPayoffMonths = raw.MaxPayoffMonths
	}
	if raw.MinWorkingAge != 0 {
		cfg.MinWorkingAge = raw.MinWorkingAge
	}
	if raw.MaxAge != 0 {
		cfg.MaxAge = raw.MaxAge
	}
	if raw.MaxTimeHorizon != 0 {
		cfg.MaxTimeHorizon = raw.MaxTimeHorizon
	}
	if !raw.SavingsRateTarget.IsZero() {
		cfg.SavingsRateTarget = raw.SavingsRateTarget
	}
	for name, m := range raw.Scenarios {
		cfg.Scenarios[name] = m
	}

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// Validate rejects tuning the engine cannot run with.
func (c EngineConfig) Validate() error {
	switch {
	case !c.AlertThreshold.IsPositive():
		return fmt.Errorf("alert_threshold must be positive")
	case c.MaxPayoffMonths <= 0:
		return fmt.Errorf("max_payoff_months must be positive")
	case c.MinWorkingAge <= 0 || c.MaxAge <= c.MinWorkingAge:
		return fmt.Errorf("min_working_age must be positive and below max_age")
	case c.MaxTimeHorizon <= 0:
		return fmt.Errorf("max_time_horizon must be positive")
	case c.SavingsRateTarget.IsNegative():
		return fmt.Errorf("savings_rate_target must not be negative")
	}
	for name, m := range c.Scenarios {
		if !planning.ScenarioType(name).Valid() {
			return fmt.Errorf("unknown scenario %q", name)
		}
		if m.Growth.IsNegative() || m.Expense.IsNegative() {
			return fmt.Errorf("scenario %q multipliers must not be negative", name)
		}
	}
	return nil
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine holds the configured components. The stateless analyzers
// (analytics.AnalyzeSpending, analytics.AnalyzeCashFlow, planning.TrackGoal)
// need no configuration and are called directly.
type Engine struct {
	Config     EngineConfig
	Budgets    *analytics.BudgetVarianceCalculator
	Debts      *planning.DebtPlanner
	Retirement *planning.RetirementProjector
	Scenarios  *planning.ScenarioGenerator
	Advice     *advice.Engine
}

// Build wires the engine components from the config.
func (c EngineConfig) Build() *Engine {
	multipliers := planning.DefaultMultipliers()
	for name, m := range c.Scenarios {
		multipliers[planning.ScenarioType(name)] = planning.Multipliers{Growth: m.Growth, Expense: m.Expense}
	}
	return &Engine{
		Config:     c,
		Budgets:    &analytics.BudgetVarianceCalculator{AlertThreshold: c.AlertThreshold},
		Debts:      &planning.DebtPlanner{MaxMonths: c.MaxPayoffMonths},
		Retirement: &planning.RetirementProjector{MinAge: c.MinWorkingAge, MaxAge: c.MaxAge},
		Scenarios:  &planning.ScenarioGenerator{MaxHorizon: c.MaxTimeHorizon, Multipliers: multipliers},
		Advice: &advice.Engine{
			SavingsRateTarget:  c.SavingsRateTarget,
			IncomeLookbackDays: advice.DefaultIncomeLookbackDays,
		},
	}
}

// DefaultEngine builds the engine with the built-in tuning.
func DefaultEngine() *Engine { return DefaultEngineConfig().Build() }
