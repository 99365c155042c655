// Package composer turns analysis results into the text returned to users.
// Every response passes through the tone adapter exactly once.
package composer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kalambet/fincoach/internal/finance"
	"github.com/kalambet/fincoach/internal/profile"
	"github.com/kalambet/fincoach/internal/tone"
)

const defaultMaxInsights = 3

// Composer renders responses for each intent.
type Composer struct {
	MaxInsights int
}

// New creates a Composer that appends at most maxInsights spending insights
// to budget responses. If maxInsights <= 0, the default (3) is used.
func New(maxInsights int) *Composer {
	if maxInsights <= 0 {
		maxInsights = defaultMaxInsights
	}
	return &Composer{MaxInsights: maxInsights}
}

// Tax renders a tax estimate with segment tips.
func (c *Composer) Tax(p profile.Profile, est finance.TaxEstimate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 **Tax Estimate for %s Annual Income**\n\n", finance.FormatWholeDollars(est.Income))
	fmt.Fprintf(&sb, "• Estimated Federal Tax: %s\n", finance.FormatDollars(est.TotalTax))
	fmt.Fprintf(&sb, "• Effective Tax Rate: %s\n", finance.FormatPercent(est.EffectiveRate))
	fmt.Fprintf(&sb, "• After-Tax Income: %s\n\n", finance.FormatDollars(est.AfterTaxIncome))
	sb.WriteString("💡 **Tax Planning Tips:**\n")
	sb.WriteString(taxTips(p.Segment))

	return tone.Adapt(sb.String(), p.Segment)
}

// BudgetSummary renders the budget overview without insights.
func (c *Composer) BudgetSummary(p profile.Profile, a finance.BudgetAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Here's your budget analysis:\n\n", greeting(p.Segment))

	sb.WriteString("💰 **Income & Spending Overview**\n")
	fmt.Fprintf(&sb, "• Monthly Income: %s\n", finance.FormatDollars(a.TotalIncome))
	fmt.Fprintf(&sb, "• Total Expenses: %s\n", finance.FormatDollars(a.TotalExpenses))
	fmt.Fprintf(&sb, "• Monthly Savings: %s\n", finance.FormatDollars(a.Savings))
	fmt.Fprintf(&sb, "• Savings Rate: %s\n\n", finance.FormatPercent(a.SavingsRate))

	sb.WriteString("📊 **Budget Breakdown**\n")
	fmt.Fprintf(&sb, "• Needs (Housing, Food, Transport): %s\n", finance.FormatDollars(a.NeedsTotal))
	fmt.Fprintf(&sb, "• Wants (Entertainment, Shopping): %s\n", finance.FormatDollars(a.WantsTotal))
	fmt.Fprintf(&sb, "• Recommended Savings Target: %s (20%% of income)\n\n", finance.FormatDollars(a.Recommended.Savings))

	fmt.Fprintf(&sb, "🎯 **Budget Health: %s**", a.Health.Title())

	switch a.Health {
	case finance.HealthExcellent:
		sb.WriteString("\n\n" + excellentNote)
	case finance.HealthNeedsImprovement:
		sb.WriteString("\n\n" + needsImprovementNote)
	}

	return tone.Adapt(sb.String(), p.Segment)
}

// Budget renders the budget summary followed by up to MaxInsights spending
// insights.
func (c *Composer) Budget(p profile.Profile, a finance.BudgetAnalysis) string {
	insights := SpendingInsights(finance.NewExpenses(p.MonthlyExpenses), p.Segment)
	if len(insights) > c.MaxInsights {
		insights = insights[:c.MaxInsights]
	}

	var sb strings.Builder
	sb.WriteString(c.BudgetSummary(p, a))
	sb.WriteString("\n\n🔍 **Spending Insights:**\n")
	for _, in := range insights {
		fmt.Fprintf(&sb, "• %s\n", in)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Investment renders suggestions for funds. Callers are expected to check
// finance.BelowInvestingThreshold first and use EmergencyFirstAdvice.
func (c *Composer) Investment(p profile.Profile, funds decimal.Decimal, suggestions []finance.Suggestion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🚀 **Investment Suggestions for %s**\n\n", finance.FormatWholeDollars(funds))

	for _, s := range suggestions {
		fmt.Fprintf(&sb, "**%s**\n", s.Type)
		fmt.Fprintf(&sb, "• Suggested Amount: %s\n", finance.FormatWholeDollars(s.Allocation))
		fmt.Fprintf(&sb, "• Risk Level: %s\n", s.RiskLevel)
		fmt.Fprintf(&sb, "• Expected Return: %s\n", s.ExpectedReturn)
		fmt.Fprintf(&sb, "• Why: %s\n\n", s.Reason)
	}
	sb.WriteString(investDisclaimer)

	return tone.Adapt(sb.String(), p.Segment)
}

// EmergencyFirstAdvice is the investment answer when funds are too small.
func (c *Composer) EmergencyFirstAdvice(p profile.Profile) string {
	return tone.Adapt(EmergencyFirst, p.Segment)
}

// Savings renders the savings strategy for an emergency fund target.
func (c *Composer) Savings(p profile.Profile, target decimal.Decimal) string {
	var sb strings.Builder
	sb.WriteString("🏦 **Savings Strategy**\n\n")
	fmt.Fprintf(&sb, "**Emergency Fund Goal:** %s\n", finance.FormatWholeDollars(target))
	sb.WriteString("(6 months of expenses)\n\n")
	sb.WriteString(savingsAccounts)
	sb.WriteString("\n\n")
	sb.WriteString(savingsTips(p.Segment))

	return tone.Adapt(sb.String(), p.Segment)
}

// General renders the segment's general advice block.
func (c *Composer) General(p profile.Profile) string {
	return tone.Adapt(generalAdvice(p.Segment), p.Segment)
}

// ProfileSummary renders a profile snapshot. It is not tone-adapted.
func (c *Composer) ProfileSummary(p profile.Profile) string {
	income := "Not set"
	if p.HasIncome() {
		income = finance.FormatDollars(decimal.NewFromFloat(*p.AnnualIncome)) + "/year"
	}

	var sb strings.Builder
	sb.WriteString("👤 **Profile Summary**\n")
	fmt.Fprintf(&sb, "• User Type: %s\n", title(string(p.Segment)))
	fmt.Fprintf(&sb, "• Age: %d\n", p.Age)
	fmt.Fprintf(&sb, "• Income: %s\n", income)
	fmt.Fprintf(&sb, "• Risk Tolerance: %s", title(string(p.RiskTolerance)))

	if len(p.MonthlyExpenses) > 0 {
		total := finance.NewExpenses(p.MonthlyExpenses).Total()
		fmt.Fprintf(&sb, "\n• Monthly Expenses: %s", finance.FormatDollars(total))
	}
	if len(p.FinancialGoals) > 0 {
		fmt.Fprintf(&sb, "\n• Financial Goals: %s", strings.Join(p.FinancialGoals, ", "))
	}
	return sb.String()
}

// title upper-cases the first letter of each word. A Caser is stateful, so
// one is built per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}
