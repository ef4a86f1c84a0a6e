package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/embeddings"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/jsonutils"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// PairScore identifies a candidate pair and its similarity.
type PairScore struct {
	CandidateIndices [2]int  `json:"candidate_indices"`
	SimilarityScore  float64 `json:"similarity_score"`
}

// SimilarityAnalysis is the numeric half of a comparison.
type SimilarityAnalysis struct {
	Matrix            [][]float64 `json:"overall_similarity_matrix"`
	AverageSimilarity float64     `json:"average_similarity"`
	MostSimilarPair   PairScore   `json:"most_similar_pair"`
	LeastSimilarPair  PairScore   `json:"least_similar_pair"`
	// Method records how the matrix was computed: "embeddings" or
	// "jaccard" when the embedding service was unavailable.
	Method string `json:"method"`
}

// TechStackAnalysis is the set arithmetic over candidate tech stacks.
type TechStackAnalysis struct {
	CommonTechnologies []string            `json:"common_technologies"`
	AllTechnologies    []string            `json:"all_technologies"`
	ByCandidate        map[string][]string `json:"technologies_by_candidate"`
	UniqueByCandidate  map[string][]string `json:"unique_technologies_by_candidate"`
	Counts             map[string]int      `json:"technology_counts"`
}

// LLMAnalysis is the recruiter-style comparison produced by the model.
type LLMAnalysis struct {
	Summary struct {
		MostExperienced   string `json:"most_experienced"`
		MostDiverseSkills string `json:"most_diverse_skills"`
		OverallVerdict    string `json:"overall_verdict"`
	} `json:"summary"`
	StrengthsWeaknesses map[string]struct {
		Strengths  []string `json:"strengths"`
		Weaknesses []string `json:"weaknesses"`
	} `json:"strengths_weaknesses"`
	Recommendations map[string]string `json:"recommendations"`
}

// ComparisonResult is the full output of comparing stored candidates.
type ComparisonResult struct {
	CandidateNames []string           `json:"candidate_names"`
	Similarity     SimilarityAnalysis `json:"similarity_analysis"`
	TechStacks     TechStackAnalysis  `json:"tech_stack_analysis"`
	LLM            *LLMAnalysis       `json:"llm_analysis,omitempty"`
}

// ComparisonEngine scores candidate similarity with embeddings and asks
// the model for a qualitative comparison. The embedding path is optional:
// with no embedder, or when the embedding call fails, similarity falls
// back to Jaccard overlap of tech stacks.
type ComparisonEngine struct {
	llm      llm.Client
	embedder embeddings.Embedder
	cfg      config.LLMConfig
}

func NewComparisonEngine(client llm.Client, embedder embeddings.Embedder, cfg config.LLMConfig) *ComparisonEngine {
	return &ComparisonEngine{llm: client, embedder: embedder, cfg: cfg}
}

// Compare runs the full comparison over two or more resumes.
func (e *ComparisonEngine) Compare(ctx context.Context, resumes []types.Resume) (*ComparisonResult, error) {
	defer logging.LogDuration(ctx, "compare_resumes")()
	if len(resumes) < 2 {
		return nil, fmt.Errorf("need at least 2 resumes for comparison, have %d", len(resumes))
	}

	names := make([]string, len(resumes))
	for i, r := range resumes {
		names[i] = r.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("Candidate %d", i+1)
		}
	}

	result := &ComparisonResult{
		CandidateNames: names,
		Similarity:     e.similarity(ctx, resumes),
		TechStacks:     techStackAnalysis(names, resumes),
	}

	analysis, err := e.llmComparison(ctx, resumes)
	if err != nil {
		logging.ErrorLogger.Error("llm comparison failed", zap.Error(err))
	} else {
		result.LLM = analysis
	}
	return result, nil
}

func (e *ComparisonEngine) similarity(ctx context.Context, resumes []types.Resume) SimilarityAnalysis {
	matrix, method := e.similarityMatrix(ctx, resumes)
	analysis := SimilarityAnalysis{
		Matrix:            matrix,
		AverageSimilarity: averageOffDiagonal(matrix),
		Method:            method,
	}
	analysis.MostSimilarPair, analysis.LeastSimilarPair = extremePairs(matrix)
	return analysis
}

// embedWorkers bounds concurrent single-document embedding calls.
const embedWorkers = 4

func (e *ComparisonEngine) similarityMatrix(ctx context.Context, resumes []types.Resume) ([][]float64, string) {
	if e.embedder != nil {
		docs := make([]string, len(resumes))
		for i, r := range resumes {
			docs[i] = resumeDocument(r)
		}
		vectors, err := e.embedder.EmbedBatch(ctx, docs)
		if err != nil {
			logging.ErrorLogger.Error("embedding batch failed, retrying per document",
				zap.Error(err))
			vectors, err = e.embedEach(ctx, docs)
		}
		if err == nil && len(vectors) == len(resumes) {
			return embeddings.SimilarityMatrix(vectors), "embeddings"
		}
		logging.ErrorLogger.Error("embedding failed, falling back to jaccard",
			zap.Error(err))
	}
	return JaccardMatrix(resumes), "jaccard"
}

// embedEach embeds documents one call each through a small worker pool,
// for backends without a batch endpoint.
func (e *ComparisonEngine) embedEach(ctx context.Context, docs []string) ([][]float32, error) {
	vectors := make([][]float32, len(docs))
	errs := make(chan error, len(docs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < embedWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := e.embedder.Embed(ctx, docs[i])
				if err != nil {
					errs <- err
					continue
				}
				vectors[i] = vec
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	return vectors, nil
}

// resumeDocument flattens a resume into one embeddable text.
func resumeDocument(r types.Resume) string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Summary != "" {
		b.WriteString("\n" + r.Summary)
	}
	if len(r.TechStack) > 0 {
		b.WriteString("\nTech: " + strings.Join(r.TechStack, ", "))
	}
	for _, exp := range r.Experience {
		fmt.Fprintf(&b, "\n%s at %s. %s", exp.Title, exp.Company, exp.Description)
	}
	for _, edu := range r.Education {
		fmt.Fprintf(&b, "\n%s, %s", edu.Degree, edu.Institution)
	}
	return b.String()
}

// JaccardMatrix computes pairwise Jaccard similarity over tech stacks.
// Two empty stacks count as identical; one empty stack scores zero.
func JaccardMatrix(resumes []types.Resume) [][]float64 {
	sets := make([]map[string]bool, len(resumes))
	for i, r := range resumes {
		sets[i] = map[string]bool{}
		for _, tech := range r.TechStack {
			sets[i][strings.ToLower(strings.TrimSpace(tech))] = true
		}
	}

	n := len(sets)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			switch {
			case i == j:
				matrix[i][j] = 1.0
			case len(sets[i]) == 0 && len(sets[j]) == 0:
				matrix[i][j] = 1.0
			case len(sets[i]) == 0 || len(sets[j]) == 0:
				matrix[i][j] = 0.0
			default:
				inter := 0
				for tech := range sets[i] {
					if sets[j][tech] {
						inter++
					}
				}
				union := len(sets[i]) + len(sets[j]) - inter
				matrix[i][j] = float64(inter) / float64(union)
			}
		}
	}
	return matrix
}

func averageOffDiagonal(matrix [][]float64) float64 {
	n := len(matrix)
	if n < 2 {
		return 0
	}
	var sum float64
	var count int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += matrix[i][j]
			count++
		}
	}
	return sum / float64(count)
}

// extremePairs scans the upper triangle for the most and least similar
// candidate pairs.
func extremePairs(matrix [][]float64) (most, least PairScore) {
	most = PairScore{SimilarityScore: -1}
	least = PairScore{SimilarityScore: 2}
	n := len(matrix)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if matrix[i][j] > most.SimilarityScore {
				most = PairScore{CandidateIndices: [2]int{i, j}, SimilarityScore: matrix[i][j]}
			}
			if matrix[i][j] < least.SimilarityScore {
				least = PairScore{CandidateIndices: [2]int{i, j}, SimilarityScore: matrix[i][j]}
			}
		}
	}
	return most, least
}

func techStackAnalysis(names []string, resumes []types.Resume) TechStackAnalysis {
	sets := make([]map[string]bool, len(resumes))
	byCandidate := map[string][]string{}
	counts := map[string]int{}
	for i, r := range resumes {
		sets[i] = map[string]bool{}
		for _, tech := range r.TechStack {
			sets[i][tech] = true
		}
		byCandidate[names[i]] = sortedKeys(sets[i])
		counts[names[i]] = len(sets[i])
	}

	all := map[string]bool{}
	for _, set := range sets {
		for tech := range set {
			all[tech] = true
		}
	}
	common := map[string]bool{}
	for tech := range all {
		shared := true
		for _, set := range sets {
			if !set[tech] {
				shared = false
				break
			}
		}
		if shared {
			common[tech] = true
		}
	}

	unique := map[string][]string{}
	for i, set := range sets {
		var own []string
		for tech := range set {
			elsewhere := false
			for j, other := range sets {
				if i != j && other[tech] {
					elsewhere = true
					break
				}
			}
			if !elsewhere {
				own = append(own, tech)
			}
		}
		sort.Strings(own)
		unique[names[i]] = own
	}

	return TechStackAnalysis{
		CommonTechnologies: sortedKeys(common),
		AllTechnologies:    sortedKeys(all),
		ByCandidate:        byCandidate,
		UniqueByCandidate:  unique,
		Counts:             counts,
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const compareSystemPrompt = "You are a Technical Recruiter comparing candidates. Output ONLY JSON."

func (e *ComparisonEngine) llmComparison(ctx context.Context, resumes []types.Resume) (*LLMAnalysis, error) {
	prompt := fmt.Sprintf(`Compare the following candidates based on their resume data.
Provide a detailed analysis in JSON format with the following keys:
- summary (object with: most_experienced, most_diverse_skills, overall_verdict)
- strengths_weaknesses (dictionary where key is candidate name and value is object with strengths=[], weaknesses=[])
- recommendations (dictionary where key is a potential job role and value is the best candidate name)

Candidates Data:
%s`, jsonutils.ToJSON(resumes))

	raw, err := e.llm.Run(ctx, llm.ChatRequest{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: compareSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Format:  "json",
		Options: &llm.Options{Temperature: 0.2},
	})
	if err != nil {
		return nil, err
	}
	var analysis LLMAnalysis
	if err := json.Unmarshal([]byte(jsonutils.ExtractJSON(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("parse comparison output: %w", err)
	}
	return &analysis, nil
}
