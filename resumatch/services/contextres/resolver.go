package contextres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/jsonutils"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// DefaultContextWindow is how many recent messages are used as resolution
// evidence.
const DefaultContextWindow = 10

// HistoryProvider supplies the recent-message slice of a session, oldest
// first, each message carrying its previously persisted entities.
type HistoryProvider interface {
	ContextWindow(ctx context.Context, sessionID string, n int) ([]types.HistoryMessage, error)
}

// ContextResolver rewrites queries with pronouns into explicit form using
// session history and the completion service.
type ContextResolver struct {
	llm       llm.Client
	extractor *EntityExtractor
	history   HistoryProvider
	cfg       config.LLMConfig
	windowLen int
}

func NewContextResolver(client llm.Client, extractor *EntityExtractor, history HistoryProvider, cfg config.LLMConfig) *ContextResolver {
	return &ContextResolver{
		llm:       client,
		extractor: extractor,
		history:   history,
		cfg:       cfg,
		windowLen: DefaultContextWindow,
	}
}

// ResolveQuery runs extraction and, when pronoun indicators are present,
// reference resolution against the session's context window. It never
// fails the turn: every degradation path returns a usable Resolution.
func (r *ContextResolver) ResolveQuery(ctx context.Context, query, sessionID string) types.Resolution {
	defer logging.LogDuration(ctx, "resolve_query")()

	entities := r.extractor.Extract(ctx, query)
	entities, hasPronouns := EnsurePronouns(query, entities)

	if !hasPronouns {
		return types.Resolution{
			OriginalQuery: query,
			ResolvedQuery: query,
			Entities:      entities,
			ContextUsed:   false,
			Confidence:    1.0,
		}
	}

	window, err := r.history.ContextWindow(ctx, sessionID, r.windowLen)
	if err != nil {
		logging.ErrorLogger.Error("context window fetch failed",
			zap.Error(err), zap.String("session_id", sessionID))
		window = nil
	}
	if len(window) == 0 {
		return types.Resolution{
			OriginalQuery: query,
			ResolvedQuery: query,
			Entities:      entities,
			ContextUsed:   false,
			Confidence:    0.0,
			Warning:       "No chat history available for context resolution",
		}
	}

	resolved := r.resolveReferences(ctx, query, window, entities)
	resolved.OriginalQuery = query
	resolved.ContextUsed = true
	return resolved
}

const resolveSystemPrompt = "You are an intelligent context resolution assistant. Output ONLY valid JSON."

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func resolvePrompt(query string, history []types.HistoryMessage, pronouns []types.Entity) string {
	var historyText strings.Builder
	for _, msg := range history {
		entitiesStr := jsonutils.ToJSON(msg.Entities)
		fmt.Fprintf(&historyText, "- %s: %q\n  Entities: %s\n",
			capitalize(msg.Role), msg.Message, entitiesStr)
	}

	return fmt.Sprintf(`TASK: Resolve what pronouns/references refer to using chat history and semantic reasoning.

Chat History (with entities):
%s
Current Query: %s
Detected Pronouns/References: %s

Instructions:
- Analyze each pronoun and determine what type of entity it could refer to
- Look at chat history entities and find semantically compatible matches
- Consider recency (more recent mentions are more likely)
- Consider semantic compatibility (does the pronoun usage make sense with this entity?)
- Use your reasoning to pick the most likely entity

Return ONLY valid JSON (no markdown, no extra text):
{
  "resolutions": [
    {
      "pronoun": "the pronoun",
      "resolved_entity": "entity name from history",
      "entity_type": "type of the resolved entity",
      "confidence": 0.95,
      "reasoning": "detailed explanation"
    }
  ],
  "resolved_query": "query rewritten with explicit entity names",
  "needs_clarification": false
}

If multiple entities are equally likely or no clear match exists:
- Set "needs_clarification": true
- In "reasoning", explain the ambiguity`,
		historyText.String(), query, jsonutils.ToJSON(pronouns))
}

type resolutionItem struct {
	Pronoun        string  `json:"pronoun"`
	ResolvedEntity string  `json:"resolved_entity"`
	EntityType     string  `json:"entity_type"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// resolveReferences issues the single resolution call and merges its
// output with the current turn's entities. Transport or parse failures
// degrade to the original query with confidence 0 and the error captured
// in the reasoning field.
func (r *ContextResolver) resolveReferences(ctx context.Context, query string, history []types.HistoryMessage, current []types.Entity) types.Resolution {
	pronouns := types.Pronouns(current)

	fallback := func(err error) types.Resolution {
		logging.ErrorLogger.Error("reference resolution failed", zap.Error(err))
		return types.Resolution{
			ResolvedQuery: query,
			Entities:      current,
			Confidence:    0.0,
			Reasoning:     fmt.Sprintf("Error: %v", err),
		}
	}

	raw, err := r.llm.Run(ctx, llm.ChatRequest{
		Model: r.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: resolveSystemPrompt},
			{Role: "user", Content: resolvePrompt(query, history, pronouns)},
		},
		Format:  "json",
		Options: &llm.Options{Temperature: r.cfg.Temperature},
	})
	if err != nil {
		return fallback(err)
	}

	var parsed struct {
		Resolutions        []resolutionItem `json:"resolutions"`
		ResolvedQuery      string           `json:"resolved_query"`
		NeedsClarification bool             `json:"needs_clarification"`
	}
	if err := json.Unmarshal([]byte(jsonutils.ExtractJSON(raw)), &parsed); err != nil {
		return fallback(fmt.Errorf("parse resolution output: %w", err))
	}

	// Aggregate confidence is the mean of per-pronoun confidences.
	confidence := 0.0
	if len(parsed.Resolutions) > 0 {
		for _, res := range parsed.Resolutions {
			confidence += res.Confidence
		}
		confidence /= float64(len(parsed.Resolutions))
	}

	// Pronoun mentions are replaced by their resolved named entities;
	// the non-pronoun entities of the current turn are kept as-is.
	entities := types.NonPronouns(current)
	reasons := make([]string, 0, len(parsed.Resolutions))
	for _, res := range parsed.Resolutions {
		entities = append(entities, types.Entity{
			Name:         res.ResolvedEntity,
			Type:         res.EntityType,
			IsPronoun:    false,
			Confidence:   res.Confidence,
			ResolvedFrom: res.Pronoun,
		})
		if res.Reasoning != "" {
			reasons = append(reasons, res.Reasoning)
		}
	}

	resolvedQuery := parsed.ResolvedQuery
	if resolvedQuery == "" {
		resolvedQuery = query
	}

	return types.Resolution{
		ResolvedQuery:      resolvedQuery,
		Entities:           entities,
		Confidence:         confidence,
		Reasoning:          strings.Join(reasons, "; "),
		NeedsClarification: parsed.NeedsClarification,
	}
}
