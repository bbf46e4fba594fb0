package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/analyzer"
	"github.com/ludo-technologies/qadash/internal/version"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names exposed over MCP
const (
	ToolEvaluateRepository = "evaluate_repository"
	ToolListRuns           = "list_runs"
	ToolRepositoryTrend    = "repository_trend"
)

const defaultToolLimit = 20

// EvaluationResponse is the payload of evaluate_repository
type EvaluationResponse struct {
	Snapshot         *domain.RepositoryQualitySnapshot `json:"snapshot"`
	FailedConditions []domain.ConditionResult          `json:"failed_conditions"`
}

type toolHandler struct {
	quality domain.QualityService
	history domain.HistoryStore
	policy  domain.Policy
}

// NewMCPServer configures the qadash MCP server without starting it
func NewMCPServer(quality domain.QualityService, history domain.HistoryStore, policy domain.Policy) *server.MCPServer {
	s := server.NewMCPServer(
		"qadash Quality Gate Server",
		version.Version,
		server.WithLogging(),
	)

	h := &toolHandler{quality: quality, history: history, policy: policy}

	s.AddTool(mcp.NewTool(ToolEvaluateRepository,
		mcp.WithDescription("Evaluate the quality gate of one repository from the tool outputs in the work directory."),
		mcp.WithString("repository", mcp.Description("Repository name as used in the artifact file names."), mcp.Required()),
		mcp.WithNumber("coverage_threshold", mcp.Description("Minimal unit test coverage in percent. Defaults to the configured threshold.")),
	), h.handleEvaluateRepository)

	s.AddTool(mcp.NewTool(ToolListRuns,
		mcp.WithDescription("List the most recent recorded evaluation runs."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return.")),
	), h.handleListRuns)

	s.AddTool(mcp.NewTool(ToolRepositoryTrend,
		mcp.WithDescription("Show the recorded gate results of one repository, newest first."),
		mcp.WithString("repository", mcp.Description("Repository name."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum number of rows to return.")),
	), h.handleRepositoryTrend)

	return s
}

// ServeMCP serves the MCP server on stdio until the client disconnects
func ServeMCP(quality domain.QualityService, history domain.HistoryStore, policy domain.Policy) error {
	return server.ServeStdio(NewMCPServer(quality, history, policy))
}

func (h *toolHandler) handleEvaluateRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := request.GetString("repository", "")
	if repository == "" {
		return mcp.NewToolResultError("repository is required"), nil
	}

	policy := h.policy
	if threshold := request.GetFloat("coverage_threshold", -1); threshold >= 0 {
		policy.CoverageThreshold = threshold
	}
	if err := policy.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snapshot, err := h.quality.EvaluateRepository(ctx, repository, policy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	return jsonResult(EvaluationResponse{
		Snapshot:         snapshot,
		FailedConditions: analyzer.FailedConditions(snapshot.Metrics(), policy),
	})
}

func (h *toolHandler) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runs, err := h.history.ListRuns(ctx, request.GetInt("limit", defaultToolLimit))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	return jsonResult(runs)
}

func (h *toolHandler) handleRepositoryTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := request.GetString("repository", "")
	if repository == "" {
		return mcp.NewToolResultError("repository is required"), nil
	}

	rows, err := h.history.RepositoryTrend(ctx, repository, request.GetInt("limit", defaultToolLimit))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read history: %v", err)), nil
	}
	if rows == nil {
		rows = []domain.SnapshotRecord{}
	}
	return jsonResult(rows)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
