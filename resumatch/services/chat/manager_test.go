package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/sources/psql/models"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// scriptedLLM replays canned completions in call order.
type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Run(ctx context.Context, req llm.ChatRequest) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("script exhausted")
	}
	out := s.responses[s.calls]
	s.calls++
	return out, nil
}

func (s *scriptedLLM) RunStream(ctx context.Context, req llm.ChatRequest) (<-chan string, error) {
	return nil, errors.New("streaming not supported")
}

type recordingExecutor struct {
	tool     string
	res      types.Resolution
	response string
	err      error
}

func (e *recordingExecutor) Execute(ctx context.Context, tool string, res types.Resolution) (string, error) {
	e.tool = tool
	e.res = res
	if e.err != nil {
		return "", e.err
	}
	return e.response, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.ResumeMetadata{},
		&models.SearchHistory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newOrchestrator(t *testing.T, client llm.Client, executor ToolExecutor, candidates []string) (*Orchestrator, *gorm.DB) {
	t.Helper()
	logging.InitLogger()
	db := setupTestDB(t)
	cfg := config.LLMConfig{Provider: "ollama", Model: "test-model", Temperature: 0.1}

	sessions := dao.NewChatMessageDAO(db)
	resumes := dao.NewResumeDAO(db)
	for _, name := range candidates {
		if err := resumes.SaveMetadata(context.Background(), name, name+".txt", types.Resume{Name: name}); err != nil {
			t.Fatalf("seed candidate %s: %v", name, err)
		}
	}

	extractor := contextres.NewEntityExtractor(client, resumes, cfg)
	resolver := contextres.NewContextResolver(client, extractor, sessions, cfg)
	router := contextres.NewToolRouter(client, cfg)
	return NewOrchestrator(resolver, router, sessions, dao.NewSearchHistoryDAO(db), executor), db
}

func TestProcessTurnCreatesSessionWhenMissing(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"entities": [{"name": "Sriram", "type": "job_candidate", "is_pronoun": false}]}`,
		"ask",
	}}
	executor := &recordingExecutor{response: "Sriram is a backend engineer."}
	orch, _ := newOrchestrator(t, client, executor, []string{"Sriram"})

	result, err := orch.ProcessTurn(context.Background(), types.ChatRequest{Query: "Tell me about Sriram"})
	if err != nil {
		t.Fatalf("process turn: %v", err)
	}
	if result.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if result.Tool != "ask" {
		t.Errorf("expected ask, got %s", result.Tool)
	}
	if result.Response != "Sriram is a backend engineer." {
		t.Errorf("unexpected response %q", result.Response)
	}
}

// A two-turn exchange: the first turn names a candidate, the second uses
// a pronoun that must resolve against the saved history.
func TestProcessTurnPronounResolvesAcrossTurns(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		// turn 1: extraction, routing
		`{"entities": [{"name": "Sriram", "type": "job_candidate", "is_pronoun": false}]}`,
		"ask",
		// turn 2: extraction, resolution, routing
		`{"entities": [{"name": "his", "type": "person_reference", "is_pronoun": true}]}`,
		`{
			"resolutions": [{
				"pronoun": "his",
				"resolved_entity": "Sriram",
				"entity_type": "job_candidate",
				"confidence": 0.95,
				"reasoning": "only candidate in recent history"
			}],
			"resolved_query": "What are Sriram's skills?",
			"needs_clarification": false
		}`,
		"ask",
	}}
	executor := &recordingExecutor{response: "Go, Postgres and Kafka."}
	orch, _ := newOrchestrator(t, client, executor, []string{"Sriram"})
	ctx := context.Background()

	first, err := orch.ProcessTurn(ctx, types.ChatRequest{Query: "Tell me about Sriram"})
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}

	second, err := orch.ProcessTurn(ctx, types.ChatRequest{
		Query:     "What are his skills?",
		SessionID: first.SessionID,
	})
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if second.ResolvedQuery != "What are Sriram's skills?" {
		t.Errorf("expected rewritten query, got %q", second.ResolvedQuery)
	}
	if !second.ContextApplied {
		t.Error("expected context_applied=true on the pronoun turn")
	}
	if executor.res.ResolvedQuery != "What are Sriram's skills?" {
		t.Errorf("executor must receive the resolved query, got %q", executor.res.ResolvedQuery)
	}

	history, err := orch.GetSessionHistory(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages after two turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Errorf("unexpected role order: %s, %s", history[0].Role, history[1].Role)
	}
	if history[2].ResolvedQuery != "What are Sriram's skills?" {
		t.Errorf("user message must carry resolved query, got %q", history[2].ResolvedQuery)
	}
}

func TestProcessTurnRoutesComparison(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"entities": [
			{"name": "Alice", "type": "job_candidate", "is_pronoun": false},
			{"name": "Bob", "type": "job_candidate", "is_pronoun": false}
		]}`,
		"compare",
	}}
	executor := &recordingExecutor{response: "Alice and Bob overlap on Python."}
	orch, _ := newOrchestrator(t, client, executor, []string{"Alice", "Bob"})

	result, err := orch.ProcessTurn(context.Background(), types.ChatRequest{Query: "Compare Alice and Bob"})
	if err != nil {
		t.Fatalf("process turn: %v", err)
	}
	if result.Tool != "compare" || executor.tool != "compare" {
		t.Errorf("expected compare routing, got result=%s executor=%s", result.Tool, executor.tool)
	}
}

func TestProcessTurnExecutorFailureStillPersists(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"entities": []}`,
		"stats",
	}}
	executor := &recordingExecutor{err: errors.New("no resumes loaded")}
	orch, _ := newOrchestrator(t, client, executor, nil)
	ctx := context.Background()

	result, err := orch.ProcessTurn(ctx, types.ChatRequest{Query: "Show me the stats"})
	if err != nil {
		t.Fatalf("executor failure must not fail the turn: %v", err)
	}
	if !strings.Contains(result.Response, "no resumes loaded") {
		t.Errorf("expected failure reason in response, got %q", result.Response)
	}

	history, err := orch.GetSessionHistory(ctx, result.SessionID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected the failed turn to be persisted, got %d messages", len(history))
	}
}

func TestSessionHistoryUnknownSession(t *testing.T) {
	orch, _ := newOrchestrator(t, &scriptedLLM{}, &recordingExecutor{}, nil)

	_, err := orch.GetSessionHistory(context.Background(), "nope")
	if !errors.Is(err, dao.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := orch.ClearSession(context.Background(), "nope"); !errors.Is(err, dao.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on clear, got %v", err)
	}
}

func TestClearSessionKeepsSessionUsable(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"entities": []}`,
		"ask",
	}}
	orch, _ := newOrchestrator(t, client, &recordingExecutor{response: "ok"}, nil)
	ctx := context.Background()

	result, err := orch.ProcessTurn(ctx, types.ChatRequest{Query: "hello"})
	if err != nil {
		t.Fatalf("process turn: %v", err)
	}
	if err := orch.ClearSession(ctx, result.SessionID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	history, err := orch.GetSessionHistory(ctx, result.SessionID)
	if err != nil {
		t.Fatalf("history after clear must not 404: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d", len(history))
	}
}
