// Package advisor answers finance questions about stored profiles. It routes
// each query to an analysis by keyword, renders the result and never fails
// the caller: problems become fixed user-facing messages.
package advisor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kalambet/fincoach/internal/composer"
	"github.com/kalambet/fincoach/internal/finance"
	"github.com/kalambet/fincoach/internal/intent"
	"github.com/kalambet/fincoach/internal/profile"
)

// Fixed user-facing messages.
const (
	MsgCreateProfileFirst = "Please create your profile first."
	MsgNoProfile          = "No profile found."
	MsgNeedIncomeForTax   = "I need your income information to calculate taxes. Please update your profile with your annual income."
	MsgNeedBudgetData     = "I need your income and expense information to analyze your budget. Please update your profile."
	MsgNeedIncomeToInvest = "I need your income information to provide investment advice. Please update your profile."
	MsgProcessingError    = "I'm sorry, I encountered an error processing your request. Please try again."
)

// Profiles is the profile access the Advisor needs. Implemented by
// profile.Manager.
type Profiles interface {
	Create(p profile.Profile) (profile.Profile, error)
	Get(id string) (profile.Profile, error)
	UpdateExpenses(id string, expenses map[string]float64) error
	List() ([]string, error)
}

// handler answers one intent for a profile snapshot. A returned error is
// logged and replaced by MsgProcessingError.
type handler func(p profile.Profile) (string, error)

// Advisor is the query router and the entry point for profile operations.
type Advisor struct {
	profiles Profiles
	composer *composer.Composer
	handlers map[intent.Intent]handler
}

// New creates an Advisor over profiles.
func New(profiles Profiles, c *composer.Composer) *Advisor {
	a := &Advisor{profiles: profiles, composer: c}
	a.handlers = map[intent.Intent]handler{
		intent.Tax:        a.handleTax,
		intent.Budget:     a.handleBudget,
		intent.Investment: a.handleInvestment,
		intent.Savings:    a.handleSavings,
		intent.General:    a.handleGeneral,
	}
	return a
}

// CreateProfile stores a new profile, replacing any with the same ID.
func (a *Advisor) CreateProfile(p profile.Profile) (profile.Profile, error) {
	return a.profiles.Create(p)
}

// UpdateExpenses merges expenses into the profile's expense map. Matching
// categories are overwritten. Unknown profiles yield profile.ErrNotFound and
// nothing is created.
func (a *Advisor) UpdateExpenses(id string, expenses map[string]float64) error {
	return a.profiles.UpdateExpenses(id, expenses)
}

// Profile returns a snapshot of the stored profile.
func (a *Advisor) Profile(id string) (profile.Profile, error) {
	return a.profiles.Get(id)
}

// ListProfiles returns the stored profile ids in ascending order.
func (a *Advisor) ListProfiles() ([]string, error) {
	return a.profiles.List()
}

// ProcessQuery answers query for the profile id. It never fails.
func (a *Advisor) ProcessQuery(id, query string) string {
	_, reply := a.Respond(id, query)
	return reply
}

// Respond is ProcessQuery that also reports the intent the query was routed
// to. The intent is empty when no profile exists for id.
func (a *Advisor) Respond(id, query string) (in intent.Intent, reply string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("processing query panicked", "profile_id", id, "intent", in, "panic", r)
			reply = MsgProcessingError
		}
	}()

	p, err := a.profiles.Get(id)
	if errors.Is(err, profile.ErrNotFound) {
		return "", MsgCreateProfileFirst
	}
	if err != nil {
		slog.Error("processing query failed", "profile_id", id, "error", err)
		return "", MsgProcessingError
	}

	in, h := a.route(query)
	reply, err = h(p)
	if err != nil {
		slog.Error("processing query failed", "profile_id", id, "intent", in, "error", err)
		return in, MsgProcessingError
	}
	return in, reply
}

func (a *Advisor) route(query string) (intent.Intent, handler) {
	in := intent.Classify(query)
	if h, ok := a.handlers[in]; ok {
		return in, h
	}
	return intent.General, a.handleGeneral
}

// ProfileSummary renders the stored profile, or MsgNoProfile when id is
// unknown.
func (a *Advisor) ProfileSummary(id string) string {
	p, err := a.profiles.Get(id)
	if errors.Is(err, profile.ErrNotFound) {
		return MsgNoProfile
	}
	if err != nil {
		slog.Error("loading profile summary failed", "profile_id", id, "error", err)
		return MsgProcessingError
	}
	return a.composer.ProfileSummary(p)
}

func annualIncome(p profile.Profile) decimal.Decimal {
	if p.AnnualIncome == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*p.AnnualIncome)
}

func (a *Advisor) handleTax(p profile.Profile) (string, error) {
	if !p.HasIncome() {
		return MsgNeedIncomeForTax, nil
	}
	est := finance.EstimateTax(annualIncome(p), finance.FilingSingle)
	return a.composer.Tax(p, est), nil
}

// handleBudget compares monthly income (annual / 12) with monthly expenses.
func (a *Advisor) handleBudget(p profile.Profile) (string, error) {
	if !p.HasIncome() || len(p.MonthlyExpenses) == 0 {
		return MsgNeedBudgetData, nil
	}
	monthly := finance.MonthlyFromAnnual(annualIncome(p))
	analysis := finance.AnalyzeBudget(monthly, finance.NewExpenses(p.MonthlyExpenses))
	return a.composer.Budget(p, analysis), nil
}

func (a *Advisor) handleInvestment(p profile.Profile) (string, error) {
	if !p.HasIncome() {
		return MsgNeedIncomeToInvest, nil
	}
	funds := finance.InvestableFunds(annualIncome(p), finance.NewExpenses(p.MonthlyExpenses))
	if finance.BelowInvestingThreshold(funds) {
		return a.composer.EmergencyFirstAdvice(p), nil
	}
	suggestions := finance.SuggestInvestments(p.Segment, p.RiskTolerance, funds)
	return a.composer.Investment(p, funds, suggestions), nil
}

func (a *Advisor) handleSavings(p profile.Profile) (string, error) {
	var monthlyIncome decimal.NullDecimal
	if p.AnnualIncome != nil {
		monthlyIncome = decimal.NewNullDecimal(finance.MonthlyFromAnnual(annualIncome(p)))
	}
	target, err := finance.EmergencyFundTarget(monthlyIncome, finance.NewExpenses(p.MonthlyExpenses))
	if err != nil {
		return "", fmt.Errorf("sizing emergency fund: %w", err)
	}
	return a.composer.Savings(p, target), nil
}

func (a *Advisor) handleGeneral(p profile.Profile) (string, error) {
	return a.composer.General(p), nil
}
