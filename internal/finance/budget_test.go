package finance

import (
	"testing"

	"github.com/shopspring/decimal"
)

func scenarioExpenses() Expenses {
	return NewExpenses(map[string]float64{
		"rent":           600,
		"groceries":      200,
		"transportation": 100,
		"entertainment":  150,
		"textbooks":      50,
	})
}

func TestAnalyzeBudget_Scenario(t *testing.T) {
	income := MonthlyFromAnnual(d("15000"))
	a := AnalyzeBudget(income, scenarioExpenses())

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"TotalIncome", a.TotalIncome, "1250"},
		{"TotalExpenses", a.TotalExpenses, "1100"},
		{"Savings", a.Savings, "150"},
		{"SavingsRate", a.SavingsRate, "12"},
		{"NeedsTotal", a.NeedsTotal, "900"},
		{"WantsTotal", a.WantsTotal, "150"},
		{"Recommended.Savings", a.Recommended.Savings, "250"},
		{"Recommended.Needs", a.Recommended.Needs, "625"},
		{"Recommended.Wants", a.Recommended.Wants, "375"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
	if a.Health != HealthGood {
		t.Errorf("Health = %s, want good", a.Health)
	}
}

func TestAnalyzeBudget_NegativeSavings(t *testing.T) {
	a := AnalyzeBudget(d("1000"), NewExpenses(map[string]float64{"rent": 1500}))
	if !a.Savings.Equal(d("-500")) {
		t.Errorf("Savings = %s, want -500", a.Savings)
	}
	if a.Health != HealthNeedsImprovement {
		t.Errorf("Health = %s, want needs_improvement", a.Health)
	}
}

func TestAnalyzeBudget_ZeroIncome(t *testing.T) {
	a := AnalyzeBudget(decimal.Zero, NewExpenses(map[string]float64{"rent": 100}))
	if !a.SavingsRate.IsZero() {
		t.Errorf("SavingsRate = %s, want 0", a.SavingsRate)
	}
}

func TestAnalyzeBudget_NeedsWantsBound(t *testing.T) {
	tests := []struct {
		name     string
		expenses map[string]float64
		equal    bool
	}{
		{"all whitelisted", map[string]float64{"rent": 800, "dining_out": 100, "subscriptions": 20}, true},
		{"unlisted category", map[string]float64{"rent": 800, "pets": 60}, false},
		{"only unlisted", map[string]float64{"textbooks": 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnalyzeBudget(d("3000"), NewExpenses(tt.expenses))
			sum := a.NeedsTotal.Add(a.WantsTotal)
			if sum.GreaterThan(a.TotalExpenses) {
				t.Fatalf("needs+wants %s > total %s", sum, a.TotalExpenses)
			}
			if sum.Equal(a.TotalExpenses) != tt.equal {
				t.Errorf("needs+wants == total is %v, want %v", !tt.equal, tt.equal)
			}
		})
	}
}

func TestAssessHealth_Bands(t *testing.T) {
	tests := []struct {
		rate string
		want HealthRating
	}{
		{"35", HealthExcellent},
		{"20", HealthExcellent},
		{"19.99", HealthGood},
		{"10", HealthGood},
		{"9.99", HealthFair},
		{"5", HealthFair},
		{"4.99", HealthNeedsImprovement},
		{"-40", HealthNeedsImprovement},
	}
	for _, tt := range tests {
		if got := AssessHealth(d(tt.rate), d("1"), d("2"), d("3")); got != tt.want {
			t.Errorf("AssessHealth(%s) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestAssessHealth_Monotonic(t *testing.T) {
	order := map[HealthRating]int{HealthNeedsImprovement: 0, HealthFair: 1, HealthGood: 2, HealthExcellent: 3}
	prev := -1
	for r := int64(-10); r <= 30; r++ {
		band := order[AssessHealth(decimal.NewFromInt(r), decimal.Zero, decimal.Zero, decimal.Zero)]
		if band < prev {
			t.Fatalf("rating dropped at rate %d", r)
		}
		prev = band
	}
}

func TestHealthRating_Title(t *testing.T) {
	if got := HealthNeedsImprovement.Title(); got != "Needs Improvement" {
		t.Errorf("Title() = %q", got)
	}
	if got := HealthExcellent.Title(); got != "Excellent" {
		t.Errorf("Title() = %q", got)
	}
}

func TestExpenses_Ranked(t *testing.T) {
	ranked := NewExpenses(map[string]float64{"b": 10, "a": 10, "c": 30}).Ranked()
	want := []string{"c", "a", "b"}
	for i, w := range want {
		if ranked[i].Category != w {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Category, w)
		}
	}
}
