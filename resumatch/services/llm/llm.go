package llm

import (
	"context"
	"encoding/json"
	"io"

	httputils "resumatch/resumatch/utils/http"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// Client is the completion-service contract the rest of the system depends
// on. Run performs one blocking chat completion; RunStream yields response
// chunks. Implementations must return transport/parse problems as errors —
// callers in the resolution pipeline degrade instead of crashing.
type Client interface {
	Run(ctx context.Context, req ChatRequest) (string, error)
	RunStream(ctx context.Context, req ChatRequest) (<-chan string, error)
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	// Format asks the backend for constrained output; "json" requests a
	// structured (JSON object) response.
	Format  string   `json:"format,omitempty"`
	Options *Options `json:"options,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Temperature float64 `json:"temperature"`
}

type ChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// OllamaClient talks to a local Ollama server's /api/chat endpoint.
type OllamaClient struct {
	baseURL string
}

func NewOllamaClient(baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}
	return &OllamaClient{baseURL: baseURL}
}

func (c *OllamaClient) Run(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "llm_service_run")()
	req.Stream = false
	var resp ChatResponse
	if err := httputils.PostJSON(c.baseURL+"/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (c *OllamaClient) RunStream(ctx context.Context, req ChatRequest) (<-chan string, error) {
	defer logging.LogDuration(ctx, "llm_service_run_stream")()
	req.Stream = true

	body, err := httputils.PostStream(c.baseURL+"/chat", req)
	if err != nil {
		return nil, err
	}

	ch := make(chan string)

	go func() {
		defer func() {
			close(ch)
			body.Close()
		}()

		decoder := json.NewDecoder(body)

		for {
			select {
			case <-ctx.Done():
				logging.AppLogger.Info("llm RunStream context cancelled")
				return
			default:
			}

			var chunk ChatResponse
			if err := decoder.Decode(&chunk); err != nil {
				if err == io.EOF {
					return
				}
				logging.ErrorLogger.Error("llm stream decode error", zap.Error(err))
				return
			}
			if chunk.Done {
				return
			}
			select {
			case ch <- chunk.Message.Content:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
