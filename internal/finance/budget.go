package finance

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HealthRating is the qualitative budget verdict.
type HealthRating string

const (
	HealthExcellent        HealthRating = "excellent"
	HealthGood             HealthRating = "good"
	HealthFair             HealthRating = "fair"
	HealthNeedsImprovement HealthRating = "needs_improvement"
)

// Title renders the rating for display, e.g. "Needs Improvement".
func (h HealthRating) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(h), "_", " "))
}

// Category whitelists for the needs/wants aggregates. Other categories count
// toward total expenses only.
var (
	NeedsCategories = []string{"rent", "utilities", "groceries", "transportation", "insurance", "minimum_debt_payments"}
	WantsCategories = []string{"dining_out", "entertainment", "shopping", "hobbies", "subscriptions"}
)

// Split is a 50/30/20 allocation of income.
type Split struct {
	Needs   decimal.Decimal `json:"needs"`
	Wants   decimal.Decimal `json:"wants"`
	Savings decimal.Decimal `json:"savings"`
}

var (
	needsShare   = decimal.RequireFromString("0.50")
	wantsShare   = decimal.RequireFromString("0.30")
	savingsShare = decimal.RequireFromString("0.20")
)

// RecommendedSplit applies the 50/30/20 rule to income.
func RecommendedSplit(income decimal.Decimal) Split {
	return Split{
		Needs:   income.Mul(needsShare),
		Wants:   income.Mul(wantsShare),
		Savings: income.Mul(savingsShare),
	}
}

// BudgetAnalysis is the result of AnalyzeBudget. Income and expenses are in
// whatever unit the caller supplied; both must use the same one.
type BudgetAnalysis struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Savings       decimal.Decimal `json:"savings"`
	SavingsRate   decimal.Decimal `json:"savings_rate"`
	NeedsTotal    decimal.Decimal `json:"needs_spending"`
	WantsTotal    decimal.Decimal `json:"wants_spending"`
	Recommended   Split           `json:"recommended"`
	Health        HealthRating    `json:"budget_health"`
}

// AnalyzeBudget computes savings, savings rate, needs/wants totals and the
// health rating. Savings may be negative.
func AnalyzeBudget(income decimal.Decimal, expenses Expenses) BudgetAnalysis {
	total := expenses.Total()
	savings := income.Sub(total)

	rate := decimal.Zero
	if income.IsPositive() {
		rate = savings.Div(income).Mul(hundred)
	}

	needs := expenses.sumOf(NeedsCategories)
	wants := expenses.sumOf(WantsCategories)

	return BudgetAnalysis{
		TotalIncome:   income,
		TotalExpenses: total,
		Savings:       savings,
		SavingsRate:   rate,
		NeedsTotal:    needs,
		WantsTotal:    wants,
		Recommended:   RecommendedSplit(income),
		Health:        AssessHealth(rate, needs, wants, income),
	}
}

var (
	excellentFloor = decimal.NewFromInt(20)
	goodFloor      = decimal.NewFromInt(10)
	fairFloor      = decimal.NewFromInt(5)
)

// AssessHealth rates a savings rate (in percent). Only the rate decides the
// band; needs, wants and income are accepted for callers that have them.
func AssessHealth(savingsRate, needs, wants, income decimal.Decimal) HealthRating {
	_, _, _ = needs, wants, income

	switch {
	case savingsRate.GreaterThanOrEqual(excellentFloor):
		return HealthExcellent
	case savingsRate.GreaterThanOrEqual(goodFloor):
		return HealthGood
	case savingsRate.GreaterThanOrEqual(fairFloor):
		return HealthFair
	default:
		return HealthNeedsImprovement
	}
}
