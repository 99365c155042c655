package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kalambet/fincoach/internal/api"
	"github.com/kalambet/fincoach/internal/config"
	"github.com/kalambet/fincoach/internal/finance"
	"github.com/kalambet/fincoach/internal/profile"
)

// parseExpenses converts category=amount pairs from the command line.
func parseExpenses(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("expense category must not be empty")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for %s: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func profilePath(id string, rest ...string) string {
	return "/" + strings.Join(append([]string{"profiles", url.PathEscape(id)}, rest...), "/")
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or replace a profile",
	Long: `Create or replace a profile. Income is annual, expenses are monthly.

Examples:
  fincoach profile create --segment student --age 20 --income 15000 \
    --expenses rent=600,groceries=200,entertainment=150
  fincoach profile create --id prof_456 --segment professional --risk high \
    --income 75000 --goals "Retirement planning,Buy a house"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		segment, _ := flags.GetString("segment")
		age, _ := flags.GetInt("age")
		risk, _ := flags.GetString("risk")
		goals, _ := flags.GetStringSlice("goals")
		rawExpenses, _ := flags.GetStringToString("expenses")

		if segment == "" {
			return fmt.Errorf("--segment is required (student or professional)")
		}

		expenses, err := parseExpenses(rawExpenses)
		if err != nil {
			return err
		}

		req := api.ProfileRequest{
			ID:              id,
			Segment:         profile.Segment(segment),
			Age:             age,
			MonthlyExpenses: expenses,
			FinancialGoals:  goals,
			RiskTolerance:   profile.RiskTolerance(risk),
		}
		if flags.Changed("income") {
			income, _ := flags.GetFloat64("income")
			req.AnnualIncome = &income
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/profiles", req)
		if err != nil {
			return err
		}

		var created profile.Profile
		if err := decodeJSON(resp, &created); err != nil {
			return err
		}

		printSuccess("Created profile %s", created.ID)
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profile ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profiles")
		if err != nil {
			return err
		}

		var list api.ProfileListResponse
		if err := decodeJSON(resp, &list); err != nil {
			return err
		}
		if len(list.Profiles) == 0 {
			printWarning("No profiles stored")
			return nil
		}
		for _, id := range list.Profiles {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), profilePath(args[0]))
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var profileSummaryCmd = &cobra.Command{
	Use:   "summary <id>",
	Short: "Show a readable profile summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), profilePath(args[0], "summary"))
		if err != nil {
			return err
		}

		var s api.SummaryResponse
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.Summary)
		return nil
	},
}

var profileExpensesCmd = &cobra.Command{
	Use:   "expenses <id> <category=amount>...",
	Short: "Merge monthly expenses into a profile",
	Long: `Merge monthly expenses into a profile. Matching categories are
overwritten, others are kept.

Example:
  fincoach profile expenses prof_456 rent=1600 subscriptions=60`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := make(map[string]string, len(args)-1)
		for _, pair := range args[1:] {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid expense %q, want category=amount", pair)
			}
			raw[k] = v
		}
		expenses, err := parseExpenses(raw)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), profilePath(args[0], "expenses"), api.ExpensesRequest{Expenses: expenses})
		if err != nil {
			return err
		}

		var updated profile.Profile
		if err := decodeJSON(resp, &updated); err != nil {
			return err
		}

		printSuccess("Updated %d expense categories for %s", len(expenses), updated.ID)
		return nil
	},
}

func init() {
	f := profileCreateCmd.Flags()
	f.String("id", "", "profile identifier (generated when empty)")
	f.String("segment", "", "user segment: student or professional")
	f.Int("age", 0, "age in years")
	f.Float64("income", 0, "annual income in dollars")
	f.StringToString("expenses", nil, "monthly expenses as category=amount pairs")
	f.StringSlice("goals", nil, "comma-separated financial goals")
	f.String("risk", "", "risk tolerance: low, moderate or high (default moderate)")

	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSummaryCmd)
	profileCmd.AddCommand(profileExpensesCmd)
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <id> <query>...",
	Short: "Ask a finance question about a profile",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args[1:], " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), profilePath(args[0], "query"), api.QueryRequest{Query: query})
		if err != nil {
			return err
		}

		var result api.QueryResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if result.Intent != "" {
			printStep("intent: %s", result.Intent)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Response)
		return nil
	},
}

// --- tax ---

var taxCmd = &cobra.Command{
	Use:   "tax <income>",
	Short: "Estimate federal income tax for an annual income",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		income, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid income %q: %w", args[0], err)
		}
		if income.IsNegative() {
			return fmt.Errorf("income must not be negative")
		}

		est := finance.EstimateTax(income, finance.FilingSingle)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(cmd.OutOrStdout(), est)
		}
		writeTaxEstimate(cmd.OutOrStdout(), est)
		return nil
	},
}

func writeTaxEstimate(w io.Writer, est finance.TaxEstimate) {
	fmt.Fprintf(w, "%s\n", colorize(colorBold, "Tax estimate for "+finance.FormatWholeDollars(est.Income)))
	fmt.Fprintf(w, "  Total tax:        %s\n", finance.FormatDollars(est.TotalTax))
	fmt.Fprintf(w, "  Effective rate:   %s\n", finance.FormatPercent(est.EffectiveRate))
	fmt.Fprintf(w, "  After-tax income: %s\n", finance.FormatDollars(est.AfterTaxIncome))

	if len(est.Breakdown) == 0 {
		return
	}
	fmt.Fprintln(w, "  Breakdown:")
	for _, b := range est.Breakdown {
		fmt.Fprintf(w, "    %-6s %-22s taxable %-14s tax %s\n",
			b.Rate, b.Range, finance.FormatDollars(b.TaxableAmount), finance.FormatDollars(b.TaxAmount))
	}
}

func init() {
	taxCmd.Flags().Bool("json", false, "print the estimate as JSON")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Valid keys: " + strings.Join(config.ValidKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value and fall back to the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
