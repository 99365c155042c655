package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kalambet/fincoach/internal/advisor"
	"github.com/kalambet/fincoach/internal/config"
	"github.com/kalambet/fincoach/internal/profile"
)

type demoScript struct {
	title   string
	profile profile.Profile
	queries []string
}

func incomeOf(v float64) *float64 { return &v }

var demoScripts = []demoScript{
	{
		title: "Student",
		profile: profile.Profile{
			ID:           "student_123",
			Segment:      profile.SegmentStudent,
			Age:          20,
			AnnualIncome: incomeOf(15000),
			MonthlyExpenses: map[string]float64{
				"rent":           600,
				"groceries":      200,
				"transportation": 100,
				"entertainment":  150,
				"textbooks":      50,
			},
			RiskTolerance: profile.RiskModerate,
		},
		queries: []string{
			"How much will I pay in taxes?",
			"Can you analyze my budget?",
			"What should I invest in?",
			"How should I save money?",
		},
	},
	{
		title: "Professional",
		profile: profile.Profile{
			ID:           "prof_456",
			Segment:      profile.SegmentProfessional,
			Age:          28,
			AnnualIncome: incomeOf(75000),
			MonthlyExpenses: map[string]float64{
				"rent":           1500,
				"groceries":      400,
				"transportation": 300,
				"dining_out":     300,
				"entertainment":  200,
				"subscriptions":  100,
				"insurance":      200,
			},
			RiskTolerance: profile.RiskHigh,
		},
		queries: []string{
			"What's my tax situation?",
			"Give me a budget analysis",
			"Investment recommendations please",
			"General financial advice",
		},
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through sample profiles and queries in process",
	Long: `Create a student and a professional sample profile in an in-memory
store, ask each a set of questions and print the profile summaries. No
server is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, cleanup, err := newAdvisor(config.Config{
			Storage: config.StorageConfig{Driver: "memory"},
			Cache:   config.CacheConfig{TTL: "0s"},
		})
		if err != nil {
			return err
		}
		defer cleanup()

		return runDemo(cmd.OutOrStdout(), adv)
	},
}

func runDemo(w io.Writer, adv *advisor.Advisor) error {
	printSection(w, "Creating Sample User Profiles")
	for _, s := range demoScripts {
		if _, err := adv.CreateProfile(s.profile); err != nil {
			return fmt.Errorf("creating %s profile: %w", s.title, err)
		}
		fmt.Fprintf(w, "Created %s profile %s\n", s.title, s.profile.ID)
	}

	for _, s := range demoScripts {
		fmt.Fprintln(w)
		printSection(w, "Testing "+s.title+" Queries")
		for _, q := range s.queries {
			in, reply := adv.Respond(s.profile.ID, q)
			fmt.Fprintf(w, "\n🔵 Query: %s %s\n", q, colorize(colorCyan, "["+string(in)+"]"))
			fmt.Fprintln(w, reply)
			printRule(w)
		}
	}

	fmt.Fprintln(w)
	printSection(w, "User Profile Summaries")
	for i, s := range demoScripts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s Profile:\n", s.title)
		fmt.Fprintln(w, adv.ProfileSummary(s.profile.ID))
	}
	return nil
}
