// Package finance holds the deterministic formulas behind every answer:
// progressive tax estimation, 50/30/20 budget analysis, fixed-table
// investment suggestions and savings targets. All money is decimal.
package finance

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Expenses maps a category name to an amount.
type Expenses map[string]decimal.Decimal

// NewExpenses converts a float expense map into decimals.
func NewExpenses(m map[string]float64) Expenses {
	out := make(Expenses, len(m))
	for k, v := range m {
		out[k] = decimal.NewFromFloat(v)
	}
	return out
}

// Total sums every category.
func (e Expenses) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range e {
		total = total.Add(v)
	}
	return total
}

// sumOf sums only the listed categories; missing ones count as zero.
func (e Expenses) sumOf(categories []string) decimal.Decimal {
	total := decimal.Zero
	for _, c := range categories {
		if v, ok := e[c]; ok {
			total = total.Add(v)
		}
	}
	return total
}

// CategoryAmount is one expense category with its amount.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// Ranked returns the categories ordered by amount, largest first. Equal
// amounts are ordered by category name.
func (e Expenses) Ranked() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(e))
	for k, v := range e {
		out = append(out, CategoryAmount{Category: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Percent returns part/whole×100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// MonthlyFromAnnual converts a yearly amount to a monthly one.
func MonthlyFromAnnual(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve)
}

var printer = message.NewPrinter(language.English)

// FormatDollars renders d as "$1,234.56".
func FormatDollars(d decimal.Decimal) string {
	return "$" + printer.Sprintf("%.2f", d.InexactFloat64())
}

// FormatWholeDollars renders d as "$1,235".
func FormatWholeDollars(d decimal.Decimal) string {
	return "$" + printer.Sprintf("%.0f", d.InexactFloat64())
}

// FormatPercent renders d with one decimal place, e.g. "10.5%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
