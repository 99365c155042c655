package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/kalambet/fincoach/internal/advisor"
	"github.com/kalambet/fincoach/internal/finance"
	"github.com/kalambet/fincoach/internal/profile"
)

const profileURIScheme = "profile://"

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Advisor *advisor.Advisor
	Version string
}

// NewMCPServer creates an MCP server with all fincoach tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := server.NewMCPServer(
		"fincoach",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("fincoach: personal finance guidance for stored user profiles. Create a profile, then ask tax, budget, investment or savings questions."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("create_profile",
			mcp.WithDescription("Create or replace a user profile. Income is annual, expenses are monthly."),
			mcp.WithString("profile", mcp.Description(`JSON object: {"id","segment","age","annual_income","monthly_expenses","financial_goals","risk_tolerance"}; id is generated when omitted`), mcp.Required()),
		),
		mcpCreateProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("ask_finance",
			mcp.WithDescription("Ask a personal finance question about a stored profile."),
			mcp.WithString("profile_id", mcp.Description("Profile identifier"), mcp.Required()),
			mcp.WithString("query", mcp.Description("Question in plain language"), mcp.Required()),
		),
		mcpAskFinance(deps),
	)

	s.AddTool(
		mcp.NewTool("estimate_tax",
			mcp.WithDescription("Estimate federal income tax for an annual income using progressive brackets."),
			mcp.WithNumber("income", mcp.Description("Annual income in dollars"), mcp.Required()),
		),
		mcpEstimateTax(),
	)

	s.AddTool(
		mcp.NewTool("update_expenses",
			mcp.WithDescription("Merge monthly expenses into a stored profile; matching categories are overwritten."),
			mcp.WithString("profile_id", mcp.Description("Profile identifier"), mcp.Required()),
			mcp.WithString("expenses", mcp.Description(`JSON object of category to monthly amount, e.g. {"rent": 800}`), mcp.Required()),
		),
		mcpUpdateExpenses(deps),
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			profileURIScheme+"{id}",
			"Profile Summary",
			mcp.WithTemplateDescription("Human-readable summary of a stored profile"),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		mcpResourceProfile(deps),
	)

	return s
}

func mcpCreateProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("profile")
		if err != nil {
			return mcpError("profile is required"), nil
		}

		var in ProfileRequest
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return mcpError(fmt.Sprintf("invalid profile JSON: %v", err)), nil
		}
		if in.Segment == "" {
			return mcpError("segment is required"), nil
		}
		if in.ID == "" {
			in.ID = uuid.New().String()
		}

		p, err := deps.Advisor.CreateProfile(profile.Profile{
			ID:              in.ID,
			Segment:         in.Segment,
			Age:             in.Age,
			AnnualIncome:    in.AnnualIncome,
			MonthlyExpenses: in.MonthlyExpenses,
			FinancialGoals:  in.FinancialGoals,
			RiskTolerance:   in.RiskTolerance,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to create profile: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Created profile %s", p.ID)), nil
	}
}

func mcpAskFinance(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("profile_id")
		if err != nil {
			return mcpError("profile_id is required"), nil
		}
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		return mcpText(deps.Advisor.ProcessQuery(id, query)), nil
	}
}

func mcpEstimateTax() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		income, err := req.RequireFloat("income")
		if err != nil {
			return mcpError("income is required"), nil
		}
		if income < 0 {
			return mcpError("income must not be negative"), nil
		}

		est := finance.EstimateTax(decimal.NewFromFloat(income), finance.FilingSingle)
		b, err := json.Marshal(est)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal estimate: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpUpdateExpenses(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("profile_id")
		if err != nil {
			return mcpError("profile_id is required"), nil
		}
		raw, err := req.RequireString("expenses")
		if err != nil {
			return mcpError("expenses is required"), nil
		}

		var expenses map[string]float64
		if err := json.Unmarshal([]byte(raw), &expenses); err != nil {
			return mcpError(fmt.Sprintf("invalid expenses JSON: %v", err)), nil
		}
		if len(expenses) == 0 {
			return mcpError("expenses must not be empty"), nil
		}

		if err := deps.Advisor.UpdateExpenses(id, expenses); err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				return mcpError(advisor.MsgCreateProfileFirst), nil
			}
			return mcpError(fmt.Sprintf("failed to update expenses: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Updated %d expense categories for %s", len(expenses), id)), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(req.Params.URI, profileURIScheme)
		if id == "" || id == req.Params.URI {
			return nil, fmt.Errorf("invalid profile URI %q", req.Params.URI)
		}

		if _, err := deps.Advisor.Profile(id); err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     deps.Advisor.ProfileSummary(id),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
