// Package intent classifies free-text finance queries by keyword.
package intent

import "strings"

// Intent is the classified purpose of a query.
type Intent string

const (
	Tax        Intent = "tax"
	Budget     Intent = "budget"
	Investment Intent = "investment"
	Savings    Intent = "savings"
	General    Intent = "general"
)

// Rule maps a set of keywords to an intent. A rule matches when the
// lower-cased query contains any keyword as a substring.
type Rule struct {
	Intent   Intent
	Keywords []string
}

// Matches reports whether the lower-cased query contains any keyword.
func (r Rule) Matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Rules is evaluated in order; the first match wins.
var Rules = []Rule{
	{Intent: Tax, Keywords: []string{"tax", "taxes", "federal"}},
	{Intent: Budget, Keywords: []string{"budget", "spending", "expenses"}},
	{Intent: Investment, Keywords: []string{"invest", "investment", "portfolio"}},
	{Intent: Savings, Keywords: []string{"save", "savings", "emergency fund"}},
}

// Classify returns the intent of query, or General when no rule matches.
func Classify(query string) Intent {
	lowered := strings.ToLower(query)
	for _, r := range Rules {
		if r.Matches(lowered) {
			return r.Intent
		}
	}
	return General
}
