package controllers

import (
	"context"

	"resumatch/resumatch/services/chat"
	"resumatch/resumatch/types"
)

// ChatController fronts the conversation orchestrator for the HTTP and
// websocket transports.
type ChatController struct {
	orch *chat.Orchestrator
}

func NewChatController(orch *chat.Orchestrator) *ChatController {
	return &ChatController{orch: orch}
}

func (c *ChatController) Chat(ctx context.Context, req types.ChatRequest) (*types.TurnResult, error) {
	return c.orch.ProcessTurn(ctx, req)
}

// ChatWithProgress streams per-stage status to notify while the turn
// runs; the websocket route uses it to keep the client informed during
// the slow LLM calls.
func (c *ChatController) ChatWithProgress(ctx context.Context, req types.ChatRequest, notify func(stage string)) (*types.TurnResult, error) {
	return c.orch.ProcessTurnWithProgress(ctx, req, notify)
}

func (c *ChatController) CreateSession(ctx context.Context, req types.CreateSessionRequest) (map[string]string, error) {
	sessionID, err := c.orch.CreateSession(ctx, req.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]string{"session_id": sessionID}, nil
}

func (c *ChatController) GetMessages(ctx context.Context, sessionID string) ([]types.HistoryMessage, error) {
	return c.orch.GetSessionHistory(ctx, sessionID)
}

func (c *ChatController) ClearSession(ctx context.Context, sessionID string) error {
	return c.orch.ClearSession(ctx, sessionID)
}
