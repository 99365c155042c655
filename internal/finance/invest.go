package finance

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/kalambet/fincoach/internal/profile"
)

// ErrNoBaseline is returned when neither expenses nor income are available
// to size a savings target.
var ErrNoBaseline = errors.New("no income or expenses to size savings target")

// Suggestion is one investment idea with its allocation.
type Suggestion struct {
	Type           string          `json:"type"`
	Allocation     decimal.Decimal `json:"allocation"`
	Reason         string          `json:"reason"`
	RiskLevel      string          `json:"risk_level"`
	ExpectedReturn string          `json:"expected_return"`
}

// instrument is the static part of a Suggestion.
type instrument struct {
	name           string
	reason         string
	riskLevel      string
	expectedReturn string
}

func (i instrument) allocate(amount decimal.Decimal) Suggestion {
	return Suggestion{
		Type:           i.name,
		Allocation:     amount,
		Reason:         i.reason,
		RiskLevel:      i.riskLevel,
		ExpectedReturn: i.expectedReturn,
	}
}

var (
	highYieldSavings = instrument{"High-Yield Savings Account", "Build emergency fund with easy access", "Very Low", "4-5% APY"}
	sp500IndexFund   = instrument{"Index Fund (S&P 500)", "Long-term growth with diversification", "Moderate", "8-10% annually"}
	bondIndexFund    = instrument{"Bond Index Fund", "Stable income with lower volatility", "Low", "3-5% annually"}
	dividendFund     = instrument{"Dividend Growth Fund", "Regular income with growth potential", "Moderate", "6-8% annually"}
	growthIndex      = instrument{"Growth Stock Index", "Higher growth potential for long-term wealth building", "High", "10-12% annually"}
	internationalFnd = instrument{"International Fund", "Geographic diversification", "Moderate-High", "8-10% annually"}
)

var studentSavingsCap = decimal.NewFromInt(5000)

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// SuggestInvestments returns the fixed suggestion list for a segment and
// risk tolerance. Student allocations are alternatives and may sum to more
// than funds. Professionals with moderate or unrecognized risk get an empty
// list.
func SuggestInvestments(segment profile.Segment, risk profile.RiskTolerance, funds decimal.Decimal) []Suggestion {
	switch segment {
	case profile.SegmentStudent:
		return []Suggestion{
			highYieldSavings.allocate(decimal.Min(funds, studentSavingsCap)),
			sp500IndexFund.allocate(funds.Mul(pct("0.7"))),
		}
	default:
		return professionalSuggestions(risk, funds)
	}
}

func professionalSuggestions(risk profile.RiskTolerance, funds decimal.Decimal) []Suggestion {
	switch risk {
	case profile.RiskLow:
		return []Suggestion{
			bondIndexFund.allocate(funds.Mul(pct("0.4"))),
			dividendFund.allocate(funds.Mul(pct("0.6"))),
		}
	case profile.RiskHigh:
		return []Suggestion{
			growthIndex.allocate(funds.Mul(pct("0.7"))),
			internationalFnd.allocate(funds.Mul(pct("0.3"))),
		}
	default:
		return []Suggestion{}
	}
}

var (
	investShare           = pct("0.8")
	assumedSpendShare     = pct("0.8")
	assumedLivingShare    = pct("0.7")
	emergencyMonths       = decimal.NewFromInt(6)
	minimumInvestableFund = decimal.NewFromInt(100)
)

// InvestableFunds estimates the yearly amount available for investing:
// 80% of what is left of annual income after a year of expenses. With no
// expenses on record, spending is assumed to be 80% of income.
func InvestableFunds(annualIncome decimal.Decimal, monthly Expenses) decimal.Decimal {
	annualExpenses := annualIncome.Mul(assumedSpendShare)
	if len(monthly) > 0 {
		annualExpenses = monthly.Total().Mul(twelve)
	}
	funds := annualIncome.Sub(annualExpenses).Mul(investShare)
	return decimal.Max(decimal.Zero, funds)
}

// BelowInvestingThreshold reports whether funds are too small to invest.
func BelowInvestingThreshold(funds decimal.Decimal) bool {
	return funds.LessThan(minimumInvestableFund)
}

// EmergencyFundTarget is six months of expenses. Without expenses it assumes
// 70% of monthly income goes to living costs. A zero income is a valid
// baseline; only a missing one with no expenses yields ErrNoBaseline.
func EmergencyFundTarget(monthlyIncome decimal.NullDecimal, monthly Expenses) (decimal.Decimal, error) {
	if len(monthly) > 0 {
		return monthly.Total().Mul(emergencyMonths), nil
	}
	if !monthlyIncome.Valid {
		return decimal.Zero, ErrNoBaseline
	}
	return monthlyIncome.Decimal.Mul(assumedLivingShare).Mul(emergencyMonths), nil
}
