package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalambet/fincoach/internal/advisor"
	"github.com/kalambet/fincoach/internal/finance"
	"github.com/kalambet/fincoach/internal/intent"
	"github.com/kalambet/fincoach/internal/profile"
)

const maxRequestBodySize = 1 << 20 // 1MB

// AppDeps holds dependencies for the HTTP API.
type AppDeps struct {
	Advisor *advisor.Advisor
	Token   string
}

// ProfileRequest is the body of POST /profiles. ID is generated when empty.
type ProfileRequest struct {
	ID              string                `json:"id"`
	Segment         profile.Segment       `json:"segment"`
	Age             int                   `json:"age"`
	AnnualIncome    *float64              `json:"annual_income"`
	MonthlyExpenses map[string]float64    `json:"monthly_expenses"`
	FinancialGoals  []string              `json:"financial_goals"`
	RiskTolerance   profile.RiskTolerance `json:"risk_tolerance"`
}

// ExpensesRequest is the body of PATCH /profiles/{id}/expenses.
type ExpensesRequest struct {
	Expenses map[string]float64 `json:"expenses"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Intent   intent.Intent `json:"intent,omitempty"`
	Response string        `json:"response"`
}

type ProfileListResponse struct {
	Profiles []string `json:"profiles"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type TaxRequest struct {
	Income       float64              `json:"income"`
	FilingStatus finance.FilingStatus `json:"filing_status"`
}

// NewAppHandler returns the REST API. Everything except /health requires the
// bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/profiles", handleCreateProfile(deps))
		r.Get("/profiles", handleListProfiles(deps))
		r.Get("/profiles/{id}", handleGetProfile(deps))
		r.Get("/profiles/{id}/summary", handleProfileSummary(deps))
		r.Patch("/profiles/{id}/expenses", handleUpdateExpenses(deps))
		r.Post("/profiles/{id}/query", handleQuery(deps))
		r.Post("/tax/estimate", handleTaxEstimate)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleCreateProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProfileRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Segment == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "segment is required")
			return
		}
		if req.ID == "" {
			req.ID = uuid.New().String()
		}

		p, err := deps.Advisor.CreateProfile(profile.Profile{
			ID:              req.ID,
			Segment:         req.Segment,
			Age:             req.Age,
			AnnualIncome:    req.AnnualIncome,
			MonthlyExpenses: req.MonthlyExpenses,
			FinancialGoals:  req.FinancialGoals,
			RiskTolerance:   req.RiskTolerance,
		})
		if err != nil {
			profileError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, p)
	}
}

func handleListProfiles(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := deps.Advisor.ListProfiles()
		if err != nil {
			profileError(w, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, ProfileListResponse{Profiles: ids})
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Advisor.Profile(chi.URLParam(r, "id"))
		if err != nil {
			profileError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleProfileSummary(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := deps.Advisor.Profile(id); err != nil {
			profileError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SummaryResponse{Summary: deps.Advisor.ProfileSummary(id)})
	}
}

func handleUpdateExpenses(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req ExpensesRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Expenses) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "expenses is required and must not be empty")
			return
		}

		if err := deps.Advisor.UpdateExpenses(id, req.Expenses); err != nil {
			profileError(w, err)
			return
		}

		p, err := deps.Advisor.Profile(id)
		if err != nil {
			profileError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleQuery(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QueryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}

		in, reply := deps.Advisor.Respond(chi.URLParam(r, "id"), req.Query)
		writeJSON(w, http.StatusOK, QueryResponse{Intent: in, Response: reply})
	}
}

func handleTaxEstimate(w http.ResponseWriter, r *http.Request) {
	var req TaxRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Income < 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "income must not be negative")
		return
	}
	status := req.FilingStatus
	if status == "" {
		status = finance.FilingSingle
	}

	writeJSON(w, http.StatusOK, finance.EstimateTax(decimal.NewFromFloat(req.Income), status))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

// profileError maps profile sentinels to status codes.
func profileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "%v", err)
	case errors.Is(err, profile.ErrInvalidProfile), errors.Is(err, profile.ErrUnitMismatch):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	default:
		slog.Error("profile request failed", "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response failed", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
