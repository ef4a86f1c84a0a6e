package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	httputils "resumatch/resumatch/utils/http"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint
// (OpenAI itself, Groq, vLLM, ...).
type OpenAIClient struct {
	baseURL string
	apiKey  string
}

func NewOpenAIClient(baseURL, apiKey string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{baseURL: baseURL, apiKey: apiKey}
}

type openAIRequest struct {
	Model          string      `json:"model"`
	Messages       []Message   `json:"messages"`
	Stream         bool        `json:"stream"`
	Temperature    float64     `json:"temperature,omitempty"`
	ResponseFormat interface{} `json:"response_format,omitempty"`
}

func (c *OpenAIClient) buildRequest(req ChatRequest) openAIRequest {
	out := openAIRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   req.Stream,
	}
	if req.Options != nil {
		out.Temperature = req.Options.Temperature
	}
	if req.Format == "json" {
		out.ResponseFormat = map[string]string{"type": "json_object"}
	}
	return out
}

func (c *OpenAIClient) Run(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "openai_service_run")()

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req.Stream = false

	var resp struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := httputils.PostJSONWithAuth(url, c.apiKey, c.buildRequest(req), &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// RunStream reads SSE chunks from the completions endpoint.
func (c *OpenAIClient) RunStream(ctx context.Context, req ChatRequest) (<-chan string, error) {
	defer logging.LogDuration(ctx, "openai_service_run_stream")()

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req.Stream = true
	body, err := httputils.PostStreamWithAuth(url, c.apiKey, c.buildRequest(req))
	if err != nil {
		return nil, err
	}

	ch := make(chan string)

	go func() {
		defer func() {
			close(ch)
			body.Close()
		}()

		reader := bufio.NewReader(body)

		for {
			select {
			case <-ctx.Done():
				logging.AppLogger.Info("OpenAI RunStream context cancelled")
				return
			default:
			}

			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return
				}
				logging.ErrorLogger.Error("openai stream read error", zap.Error(err))
				return
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if line == "[DONE]" {
				return
			}

			var chunk struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				logging.ErrorLogger.Error("openai stream JSON parse error",
					zap.Error(err), zap.String("raw_line", line))
				continue
			}

			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case ch <- choice.Delta.Content:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
