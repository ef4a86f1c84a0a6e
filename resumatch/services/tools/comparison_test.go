package tools

import (
	"context"
	"errors"
	"math"
	"testing"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"
)

type stubLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubLLM) Run(ctx context.Context, req llm.ChatRequest) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("stub exhausted")
}

func (s *stubLLM) RunStream(ctx context.Context, req llm.ChatRequest) (<-chan string, error) {
	return nil, errors.New("streaming not supported")
}

func testCfg() config.LLMConfig {
	return config.LLMConfig{Provider: "ollama", Model: "test-model", Temperature: 0.1}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestJaccardMatrix(t *testing.T) {
	resumes := []types.Resume{
		{Name: "A", TechStack: []string{"Go", "Python"}},
		{Name: "B", TechStack: []string{"go", "Java"}},
		{Name: "C"},
	}
	matrix := JaccardMatrix(resumes)

	if !almostEqual(matrix[0][0], 1.0) {
		t.Errorf("diagonal must be 1, got %f", matrix[0][0])
	}
	// {go, python} vs {go, java}: 1 shared of 3 total, case-insensitive.
	if !almostEqual(matrix[0][1], 1.0/3.0) {
		t.Errorf("expected 1/3, got %f", matrix[0][1])
	}
	if !almostEqual(matrix[0][2], 0.0) {
		t.Errorf("empty vs non-empty stack must score 0, got %f", matrix[0][2])
	}

	empty := JaccardMatrix([]types.Resume{{Name: "X"}, {Name: "Y"}})
	if !almostEqual(empty[0][1], 1.0) {
		t.Errorf("two empty stacks count as identical, got %f", empty[0][1])
	}
}

func TestCompareFallsBackToJaccard(t *testing.T) {
	logging.InitLogger()
	client := &stubLLM{responses: []string{
		`{
			"summary": {
				"most_experienced": "Alice",
				"most_diverse_skills": "Bob",
				"overall_verdict": "Both are strong."
			},
			"recommendations": {"backend_engineer": "Alice"}
		}`,
	}}
	engine := NewComparisonEngine(client, nil, testCfg())

	resumes := []types.Resume{
		{Name: "Alice", TechStack: []string{"Go", "Postgres"}},
		{Name: "Bob", TechStack: []string{"Go", "React"}},
	}
	result, err := engine.Compare(context.Background(), resumes)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if result.Similarity.Method != "jaccard" {
		t.Errorf("no embedder configured, expected jaccard method, got %s", result.Similarity.Method)
	}
	if got := result.TechStacks.CommonTechnologies; len(got) != 1 || got[0] != "Go" {
		t.Errorf("expected common [Go], got %v", got)
	}
	if result.LLM == nil || result.LLM.Summary.MostExperienced != "Alice" {
		t.Errorf("expected parsed llm analysis, got %+v", result.LLM)
	}
	if !almostEqual(result.Similarity.AverageSimilarity, 1.0/3.0) {
		t.Errorf("expected average 1/3, got %f", result.Similarity.AverageSimilarity)
	}
}

func TestCompareLLMFailureIsNonFatal(t *testing.T) {
	logging.InitLogger()
	client := &stubLLM{errs: []error{errors.New("llm down")}}
	engine := NewComparisonEngine(client, nil, testCfg())

	result, err := engine.Compare(context.Background(), []types.Resume{
		{Name: "Alice", TechStack: []string{"Go"}},
		{Name: "Bob", TechStack: []string{"Go"}},
	})
	if err != nil {
		t.Fatalf("similarity must survive an llm failure: %v", err)
	}
	if result.LLM != nil {
		t.Error("expected nil llm analysis after failure")
	}
	if !almostEqual(result.Similarity.AverageSimilarity, 1.0) {
		t.Errorf("identical stacks must score 1, got %f", result.Similarity.AverageSimilarity)
	}
}

func TestCompareRejectsSingleResume(t *testing.T) {
	engine := NewComparisonEngine(&stubLLM{}, nil, testCfg())
	if _, err := engine.Compare(context.Background(), []types.Resume{{Name: "Solo"}}); err == nil {
		t.Error("expected error for fewer than 2 resumes")
	}
}

func TestExtremePairs(t *testing.T) {
	matrix := [][]float64{
		{1.0, 0.9, 0.1},
		{0.9, 1.0, 0.5},
		{0.1, 0.5, 1.0},
	}
	most, least := extremePairs(matrix)
	if most.CandidateIndices != [2]int{0, 1} || !almostEqual(most.SimilarityScore, 0.9) {
		t.Errorf("unexpected most similar pair: %+v", most)
	}
	if least.CandidateIndices != [2]int{0, 2} || !almostEqual(least.SimilarityScore, 0.1) {
		t.Errorf("unexpected least similar pair: %+v", least)
	}
}

func TestTechStackAnalysisUniqueSets(t *testing.T) {
	names := []string{"Alice", "Bob"}
	resumes := []types.Resume{
		{Name: "Alice", TechStack: []string{"Go", "Kafka"}},
		{Name: "Bob", TechStack: []string{"Go", "React"}},
	}
	analysis := techStackAnalysis(names, resumes)

	if got := analysis.UniqueByCandidate["Alice"]; len(got) != 1 || got[0] != "Kafka" {
		t.Errorf("expected Alice unique [Kafka], got %v", got)
	}
	if got := analysis.UniqueByCandidate["Bob"]; len(got) != 1 || got[0] != "React" {
		t.Errorf("expected Bob unique [React], got %v", got)
	}
	if analysis.Counts["Alice"] != 2 || analysis.Counts["Bob"] != 2 {
		t.Errorf("unexpected counts %v", analysis.Counts)
	}
}
