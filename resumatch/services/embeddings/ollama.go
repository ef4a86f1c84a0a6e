package embeddings

import (
	"context"
	"fmt"

	httputils "resumatch/resumatch/utils/http"
	"resumatch/resumatch/utils/logging"
)

// DefaultModel produces 384-dimensional vectors.
const DefaultModel = "all-minilm:l6-v2"

// OllamaEmbedder generates embeddings through a local Ollama server.
type OllamaEmbedder struct {
	baseURL string
	model   string
}

var _ Embedder = (*OllamaEmbedder)(nil)

func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}
	if model == "" {
		model = DefaultModel
	}
	return &OllamaEmbedder{baseURL: baseURL, model: model}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	defer logging.LogDuration(ctx, "embed_batch")()

	var resp embedResponse
	err := httputils.PostJSON(e.baseURL+"/embed", embedRequest{Model: e.model, Input: texts}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

func (e *OllamaEmbedder) Model() string {
	return e.model
}
