/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zerolog request logging; the request logger is also put
                 in the context for handlers
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/users/{userID}/*   Per-user analytics, planning and records
  /api/demo/*             Demo data sets
  /api/health             Liveness

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/warp/finance-engine/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:4200", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(userCtx)

			// Analytics
			r.Get("/analytics/spending", h.GetSpending)
			r.Get("/analytics/cashflow", h.GetCashFlow)
			r.Get("/budgets/{budgetID}/variance", h.GetBudgetVariance)

			// Goals
			r.Get("/goals", h.ListGoalProgress)
			r.Get("/goals/{goalID}/progress", h.GetGoalProgress)
			r.Post("/goals/{goalID}/progress", h.UpdateGoalProgress)

			// Planning
			r.Post("/debts/plan", h.PlanDebts)
			r.Post("/debts/compare", h.CompareDebts)
			r.Post("/retirement/projection", h.ProjectRetirement)
			r.Post("/scenarios", h.GenerateScenarios)
			r.Get("/recommendations", h.GetRecommendations)

			// Records
			r.Post("/transactions", h.CreateTransaction)
			r.Post("/categories", h.CreateCategory)
			r.Post("/budgets", h.CreateBudget)
			r.Post("/goals", h.CreateGoal)
			r.Post("/debts", h.CreateDebt)
		})

		r.Route("/demo", func(r chi.Router) {
			r.Get("/scenarios", h.ListDemoScenarios)
			r.Post("/load", h.LoadDemo)
		})
	})

	return r
}

// requestLogger logs one line per request and hands a request-scoped logger
// to the handlers through the context.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			ctx := logger.WithContext(r.Context(), reqLog)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := reqLog.Info()
			if status >= http.StatusInternalServerError {
				event = reqLog.Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
