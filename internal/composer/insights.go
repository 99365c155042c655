package composer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kalambet/fincoach/internal/finance"
	"github.com/kalambet/fincoach/internal/profile"
	"github.com/kalambet/fincoach/internal/tone"
)

var (
	housingShareLimit   = decimal.NewFromInt(30)
	subscriptionsLimit  = decimal.NewFromInt(50)
	discretionaryTopCat = map[string]bool{"dining_out": true, "entertainment": true}
)

// SpendingInsights returns actionable lines about expenses, each adapted to
// segment. The first line names the largest category and its share of total
// spending; follow-up tips depend on which category that is. An empty
// expense map yields no lines.
func SpendingInsights(expenses finance.Expenses, segment profile.Segment) []string {
	var insights []string

	ranked := expenses.Ranked()
	if len(ranked) > 0 {
		top := ranked[0]
		share := finance.Percent(top.Amount, expenses.Total())

		insights = append(insights, fmt.Sprintf("Your highest expense is %s: %s (%s of total spending)",
			top.Category, finance.FormatDollars(top.Amount), finance.FormatPercent(share)))

		switch {
		case discretionaryTopCat[top.Category]:
			insights = append(insights, discretionaryTip(segment))
		case top.Category == "rent" && share.GreaterThan(housingShareLimit):
			insights = append(insights, housingWarning)
		}
	}

	if subs, ok := expenses["subscriptions"]; ok && subs.GreaterThan(subscriptionsLimit) {
		insights = append(insights, subscriptionsTip)
	}

	for i, line := range insights {
		insights[i] = tone.Adapt(line, segment)
	}
	return insights
}
