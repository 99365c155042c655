package finance

import (
	"github.com/shopspring/decimal"
)

// FilingStatus selects a bracket table. Only single filers are modelled;
// any other status uses the single table.
type FilingStatus string

const FilingSingle FilingStatus = "single"

// Bracket is one progressive tier. The last bracket of a table is Unbounded
// and its Upper is ignored.
type Bracket struct {
	Lower     decimal.Decimal
	Upper     decimal.Decimal
	Unbounded bool
	Rate      decimal.Decimal
}

func bounded(lower, upper int64, rate string) Bracket {
	return Bracket{
		Lower: decimal.NewFromInt(lower),
		Upper: decimal.NewFromInt(upper),
		Rate:  decimal.RequireFromString(rate),
	}
}

func unbounded(lower int64, rate string) Bracket {
	return Bracket{
		Lower:     decimal.NewFromInt(lower),
		Unbounded: true,
		Rate:      decimal.RequireFromString(rate),
	}
}

// 2024 federal brackets.
var bracketTables = map[FilingStatus][]Bracket{
	FilingSingle: {
		bounded(0, 11000, "0.10"),
		bounded(11000, 44725, "0.12"),
		bounded(44725, 95375, "0.22"),
		bounded(95375, 182050, "0.24"),
		bounded(182050, 231250, "0.32"),
		bounded(231250, 578125, "0.35"),
		unbounded(578125, "0.37"),
	},
}

// Brackets returns the ascending bracket table for status.
func Brackets(status FilingStatus) []Bracket {
	if table, ok := bracketTables[status]; ok {
		return table
	}
	return bracketTables[FilingSingle]
}

// Label renders the rate as a percentage, e.g. "22.0%".
func (b Bracket) Label() string {
	return b.Rate.Mul(hundred).StringFixed(1) + "%"
}

// Range renders the bounds, e.g. "$11,000 - $44,725" or "$578,125+".
func (b Bracket) Range() string {
	if b.Unbounded {
		return FormatWholeDollars(b.Lower) + "+"
	}
	return FormatWholeDollars(b.Lower) + " - " + FormatWholeDollars(b.Upper)
}

// BracketTax is the share of income taxed inside one bracket.
type BracketTax struct {
	Rate          string          `json:"bracket"`
	Range         string          `json:"range"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
}

// TaxEstimate is the result of EstimateTax.
type TaxEstimate struct {
	Income         decimal.Decimal `json:"income"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	EffectiveRate  decimal.Decimal `json:"effective_rate"`
	AfterTaxIncome decimal.Decimal `json:"after_tax_income"`
	Breakdown      []BracketTax    `json:"breakdown"`
}

// EstimateTax computes progressive federal tax on income. Income must not be
// negative; profile validation guarantees this for stored incomes.
func EstimateTax(income decimal.Decimal, status FilingStatus) TaxEstimate {
	total := decimal.Zero
	breakdown := []BracketTax{}

	for _, b := range Brackets(status) {
		if income.LessThanOrEqual(b.Lower) {
			break
		}

		top := income
		if !b.Unbounded && b.Upper.LessThan(income) {
			top = b.Upper
		}
		taxable := top.Sub(b.Lower)
		tax := taxable.Mul(b.Rate)
		total = total.Add(tax)

		if taxable.IsPositive() {
			breakdown = append(breakdown, BracketTax{
				Rate:          b.Label(),
				Range:         b.Range(),
				TaxableAmount: taxable,
				TaxAmount:     tax,
			})
		}
	}

	effective := decimal.Zero
	if income.IsPositive() {
		effective = total.Div(income).Mul(hundred)
	}

	return TaxEstimate{
		Income:         income,
		TotalTax:       total,
		EffectiveRate:  effective,
		AfterTaxIncome: income.Sub(total),
		Breakdown:      breakdown,
	}
}
