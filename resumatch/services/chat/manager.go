package chat

import (
	"context"
	"fmt"
	"time"

	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// ToolExecutor runs one routed capability against a resolved query and
// returns the natural-language response for the turn.
type ToolExecutor interface {
	Execute(ctx context.Context, tool string, res types.Resolution) (string, error)
}

// Orchestrator drives a full chat turn: session resolution, context
// resolution, tool routing, tool execution, then one atomic persistence
// of the user+assistant message pair. Nothing is written to the session
// until the turn has fully decided what it is doing.
type Orchestrator struct {
	resolver *contextres.ContextResolver
	router   *contextres.ToolRouter
	sessions *dao.ChatMessageDAO
	searches *dao.SearchHistoryDAO
	executor ToolExecutor
}

func NewOrchestrator(
	resolver *contextres.ContextResolver,
	router *contextres.ToolRouter,
	sessions *dao.ChatMessageDAO,
	searches *dao.SearchHistoryDAO,
	executor ToolExecutor,
) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		router:   router,
		sessions: sessions,
		searches: searches,
		executor: executor,
	}
}

// Stage names reported to streaming clients while a turn is processed.
const (
	StageResolving = "resolving_context"
	StageRouting   = "routing"
	StageExecuting = "executing"
	StageSaving    = "saving"
)

// CreateSession creates a durable session and returns its id.
func (o *Orchestrator) CreateSession(ctx context.Context, metadata map[string]interface{}) (string, error) {
	return o.sessions.CreateSession(ctx, "", metadata)
}

// ProcessTurn handles one user query end to end.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req types.ChatRequest) (*types.TurnResult, error) {
	return o.ProcessTurnWithProgress(ctx, req, nil)
}

// ProcessTurnWithProgress is ProcessTurn with per-stage notifications,
// used by the websocket transport to stream status while the LLM calls
// run. notify may be nil.
func (o *Orchestrator) ProcessTurnWithProgress(ctx context.Context, req types.ChatRequest, notify func(stage string)) (*types.TurnResult, error) {
	defer logging.LogDuration(ctx, "process_turn")()
	if notify == nil {
		notify = func(string) {}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		created, err := o.sessions.CreateSession(ctx, "", nil)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		sessionID = created
	}

	notify(StageResolving)
	resolution := o.resolver.ResolveQuery(ctx, req.Query, sessionID)

	notify(StageRouting)
	tool := o.router.Route(ctx, resolution.ResolvedQuery)

	notify(StageExecuting)
	response, err := o.executor.Execute(ctx, tool, resolution)
	if err != nil {
		logging.ErrorLogger.Error("tool execution failed",
			zap.String("tool", tool), zap.Error(err))
		response = fmt.Sprintf("Sorry, I couldn't complete that request: %v", err)
	}

	// The session is written only now, once the turn has a final answer.
	// Resolved entities attach to both messages so later turns can
	// resolve pronouns against either side of this exchange.
	notify(StageSaving)
	user := dao.SavedMessage{
		Role:          "user",
		Message:       req.Query,
		ResolvedQuery: resolution.ResolvedQuery,
		Entities:      resolution.Entities,
	}
	assistant := dao.SavedMessage{
		Role:     "assistant",
		Message:  response,
		Entities: types.NonPronouns(resolution.Entities),
	}
	if err := o.sessions.SaveTurn(ctx, sessionID, user, assistant); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	if err := o.searches.LogQuery(ctx, resolution.ResolvedQuery, tool, response); err != nil {
		logging.ErrorLogger.Error("search history write failed", zap.Error(err))
	}

	return &types.TurnResult{
		SessionID:          sessionID,
		OriginalQuery:      req.Query,
		ResolvedQuery:      resolution.ResolvedQuery,
		Entities:           resolution.Entities,
		ContextApplied:     resolution.ContextUsed,
		Confidence:         resolution.Confidence,
		Reasoning:          resolution.Reasoning,
		NeedsClarification: resolution.NeedsClarification,
		Tool:               tool,
		Response:           response,
	}, nil
}

// GetSessionHistory returns the full transcript of an existing session.
// Unknown ids report dao.ErrSessionNotFound.
func (o *Orchestrator) GetSessionHistory(ctx context.Context, sessionID string) ([]types.HistoryMessage, error) {
	records, err := o.sessions.GetSessionHistoryStrict(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history := make([]types.HistoryMessage, 0, len(records))
	for _, rec := range records {
		history = append(history, types.HistoryMessage{
			Role:          rec.Role,
			Message:       rec.Message,
			ResolvedQuery: rec.ResolvedQuery,
			Entities:      []types.Entity(rec.EntitiesMentioned),
			Timestamp:     rec.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return history, nil
}

// ClearSession wipes a session's messages while keeping the session
// itself usable.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) error {
	return o.sessions.ClearSession(ctx, sessionID)
}
