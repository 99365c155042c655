package profile

import "errors"

var (
	// ErrNotFound is returned when no profile exists for an identifier.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidProfile is returned when a profile violates a value constraint.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrUnitMismatch is returned when monthly expenses cannot be reconciled
	// with the annual income they are compared against.
	ErrUnitMismatch = errors.New("expense and income units do not match")
)

// Segment is the user category that drives tone and investment heuristics.
// Values other than the declared constants are kept as given and handled by
// the professional arm wherever a branch is taken.
type Segment string

const (
	SegmentStudent      Segment = "student"
	SegmentProfessional Segment = "professional"
)

// RiskTolerance is the self-reported investment risk appetite.
type RiskTolerance string

const (
	RiskLow      RiskTolerance = "low"
	RiskModerate RiskTolerance = "moderate"
	RiskHigh     RiskTolerance = "high"
)

// Profile is a snapshot of one user's demographic and financial data.
// AnnualIncome is a yearly figure; MonthlyExpenses are per-month amounts.
type Profile struct {
	ID              string             `json:"id"`
	Segment         Segment            `json:"segment"`
	Age             int                `json:"age"`
	AnnualIncome    *float64           `json:"annual_income,omitempty"`
	MonthlyExpenses map[string]float64 `json:"monthly_expenses"`
	FinancialGoals  []string           `json:"financial_goals"`
	RiskTolerance   RiskTolerance      `json:"risk_tolerance"`
}

// HasIncome reports whether a non-zero income is on record. A zero income
// is treated the same as a missing one by every analysis path.
func (p Profile) HasIncome() bool {
	return p.AnnualIncome != nil && *p.AnnualIncome > 0
}

// TotalMonthlyExpenses sums every expense category.
func (p Profile) TotalMonthlyExpenses() float64 {
	var total float64
	for _, v := range p.MonthlyExpenses {
		total += v
	}
	return total
}

// Clone returns a deep copy so callers can read a snapshot without sharing
// maps or slices with the store.
func (p Profile) Clone() Profile {
	cp := p
	if p.AnnualIncome != nil {
		income := *p.AnnualIncome
		cp.AnnualIncome = &income
	}
	if p.MonthlyExpenses != nil {
		cp.MonthlyExpenses = make(map[string]float64, len(p.MonthlyExpenses))
		for k, v := range p.MonthlyExpenses {
			cp.MonthlyExpenses[k] = v
		}
	}
	if p.FinancialGoals != nil {
		cp.FinancialGoals = make([]string, len(p.FinancialGoals))
		copy(cp.FinancialGoals, p.FinancialGoals)
	}
	return cp
}
