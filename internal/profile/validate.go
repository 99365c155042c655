package profile

import (
	"fmt"
	"sort"
)

// Validate checks the value constraints of a profile. Unrecognised segment
// and risk tolerance values are accepted; they select the default branch
// downstream.
func Validate(p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("%w: identifier is required", ErrInvalidProfile)
	}
	if p.AnnualIncome != nil && *p.AnnualIncome < 0 {
		return fmt.Errorf("%w: annual income must not be negative", ErrInvalidProfile)
	}

	// Sorted so the reported category is stable.
	categories := make([]string, 0, len(p.MonthlyExpenses))
	for k := range p.MonthlyExpenses {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	for _, k := range categories {
		if p.MonthlyExpenses[k] < 0 {
			return fmt.Errorf("%w: expense %q must not be negative", ErrInvalidProfile, k)
		}
	}

	// A month of spending larger than a whole year of income almost always
	// means annual figures were entered as monthly ones (or the reverse).
	if p.HasIncome() {
		if total := p.TotalMonthlyExpenses(); total > *p.AnnualIncome {
			return fmt.Errorf("%w: monthly expenses %.2f exceed annual income %.2f",
				ErrUnitMismatch, total, *p.AnnualIncome)
		}
	}
	return nil
}
