package contextres

import (
	"context"
	"fmt"
	"strings"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// The fixed capability set a resolved query routes into.
const (
	ToolAsk     = "ask"
	ToolCompare = "compare"
	ToolBlog    = "blog"
	ToolStats   = "stats"
)

var validTools = map[string]bool{
	ToolAsk:     true,
	ToolCompare: true,
	ToolBlog:    true,
	ToolStats:   true,
}

// ToolRouter classifies a resolved query into one capability. Any
// classifier output outside the fixed set, and any call failure, maps to
// "ask" — the only capability with no minimum-document precondition.
type ToolRouter struct {
	llm llm.Client
	cfg config.LLMConfig
}

func NewToolRouter(client llm.Client, cfg config.LLMConfig) *ToolRouter {
	return &ToolRouter{llm: client, cfg: cfg}
}

const routeSystemPrompt = "You are a strict intent classifier. Respond with exactly one word."

func routePrompt(query string) string {
	return fmt.Sprintf(`Classify the user query into exactly one of these tools:

- ask: question about a single candidate's resume.
  Examples: "What are Sriram's skills?", "How many years of experience does Alice have?"
- compare: compare two or more candidates against each other.
  Examples: "Compare Alice and Bob", "Who is stronger in backend work?"
- blog: write a report or blog post about the candidates.
  Examples: "Write a blog post comparing the candidates", "Generate a hiring report"
- stats: numeric scores, metrics or charts about the candidates.
  Examples: "Show me the performance stats", "Give me the candidate scores"

Query: %s

Respond with exactly one word: ask, compare, blog or stats.`, query)
}

// Route returns one of ask/compare/blog/stats, never anything else.
func (r *ToolRouter) Route(ctx context.Context, query string) string {
	defer logging.LogDuration(ctx, "tool_route")()

	raw, err := r.llm.Run(ctx, llm.ChatRequest{
		Model: r.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: routeSystemPrompt},
			{Role: "user", Content: routePrompt(query)},
		},
		Options: &llm.Options{Temperature: 0},
	})
	if err != nil {
		logging.ErrorLogger.Error("tool routing call failed", zap.Error(err))
		return ToolAsk
	}

	tool := normalizeTool(raw)
	if !validTools[tool] {
		logging.AppLogger.Info("unrecognized tool from classifier, defaulting to ask",
			zap.String("raw", raw))
		return ToolAsk
	}
	return tool
}

func normalizeTool(raw string) string {
	tool := strings.ToLower(strings.TrimSpace(raw))
	tool = strings.Trim(tool, "\"'`.!")
	// Models sometimes answer "tool: compare" or similar; keep the last
	// whitespace-delimited token.
	if fields := strings.Fields(tool); len(fields) > 0 {
		tool = fields[len(fields)-1]
	}
	return tool
}
