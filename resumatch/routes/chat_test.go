package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"resumatch/resumatch/config"
	"resumatch/resumatch/controllers"
	"resumatch/resumatch/services/chat"
	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/sources/psql/models"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"

	"github.com/coder/websocket"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// scriptedClient replays canned completions in call order.
type scriptedClient struct {
	responses []string
	calls     int
}

func (s *scriptedClient) Run(ctx context.Context, req llm.ChatRequest) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("script exhausted")
	}
	out := s.responses[s.calls]
	s.calls++
	return out, nil
}

func (s *scriptedClient) RunStream(ctx context.Context, req llm.ChatRequest) (<-chan string, error) {
	return nil, errors.New("streaming not supported")
}

type stubExecutor struct {
	response string
}

func (e *stubExecutor) Execute(ctx context.Context, tool string, res types.Resolution) (string, error) {
	return e.response, nil
}

func newChatServer(t *testing.T, client llm.Client, executor chat.ToolExecutor) *httptest.Server {
	t.Helper()
	logging.InitLogger()
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

	cfg := config.LLMConfig{Provider: "ollama", Model: "test-model", Temperature: 0.1}
	sessions := dao.NewChatMessageDAO(db)
	extractor := contextres.NewEntityExtractor(client, dao.NewResumeDAO(db), cfg)
	resolver := contextres.NewContextResolver(client, extractor, sessions, cfg)
	router := contextres.NewToolRouter(client, cfg)
	orch := chat.NewOrchestrator(resolver, router, sessions, dao.NewSearchHistoryDAO(db), executor)

	srv := httptest.NewServer(ChatRoutes(controllers.NewChatController(orch), config.Config{}))
	t.Cleanup(srv.Close)
	return srv
}

// A full websocket turn: the client sends one request, the server streams
// a status frame per pipeline stage and finishes with the turn result.
func TestWebsocketTurnStreamsStagesAndResult(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"entities": []}`,
		"ask",
	}}
	srv := newChatServer(t, client, &stubExecutor{response: "All good here."})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	request, _ := json.Marshal(map[string]interface{}{
		"chat_request": types.ChatRequest{Query: "hello"},
	})
	if err := conn.Write(ctx, websocket.MessageText, request); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var stages []string
	var result types.TurnResult
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read frame after %d stages: %v", len(stages), err)
		}
		var frame map[string]json.RawMessage
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("bad frame %q: %v", data, err)
		}
		if raw, ok := frame["error"]; ok {
			t.Fatalf("server reported error: %s", raw)
		}
		if raw, ok := frame["status"]; ok {
			var stage string
			json.Unmarshal(raw, &stage)
			stages = append(stages, stage)
			continue
		}
		if raw, ok := frame["result"]; ok {
			if err := json.Unmarshal(raw, &result); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			break
		}
		t.Fatalf("unexpected frame %q", data)
	}

	want := []string{chat.StageResolving, chat.StageRouting, chat.StageExecuting, chat.StageSaving}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("expected stages %v, got %v", want, stages)
	}
	if result.Response != "All good here." {
		t.Errorf("unexpected response %q", result.Response)
	}
	if result.SessionID == "" {
		t.Error("expected a session id in the result")
	}
}

func TestWebsocketRejectsInvalidJSON(t *testing.T) {
	srv := newChatServer(t, &scriptedClient{}, &stubExecutor{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "invalid json") {
		t.Errorf("expected invalid json error, got %q", data)
	}
}
