package tools

import (
	"context"
	"fmt"
	"strings"

	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// Runner executes a routed capability against the stored candidate pool
// and renders its outcome as a chat response. Precondition failures
// (too few resumes) come back as friendly messages, not errors — the
// conversation continues either way.
type Runner struct {
	parser   *ResumeParser
	comparer *ComparisonEngine
	blogger  *BlogGenerator
	resumes  *dao.ResumeDAO
}

func NewRunner(parser *ResumeParser, comparer *ComparisonEngine, blogger *BlogGenerator, resumes *dao.ResumeDAO) *Runner {
	return &Runner{parser: parser, comparer: comparer, blogger: blogger, resumes: resumes}
}

// Execute dispatches on the routed tool name.
func (r *Runner) Execute(ctx context.Context, tool string, res types.Resolution) (string, error) {
	defer logging.LogDuration(ctx, "tool_execute")()

	records, err := r.resumes.GetAllResumes(ctx)
	if err != nil {
		return "", fmt.Errorf("load resumes: %w", err)
	}
	pool := make([]types.Resume, 0, len(records))
	for _, rec := range records {
		pool = append(pool, types.Resume(rec.ParsedJSON))
	}

	switch tool {
	case contextres.ToolCompare:
		return r.runCompare(ctx, pool)
	case contextres.ToolBlog:
		return r.runBlog(ctx, pool)
	case contextres.ToolStats:
		return r.runStats(pool)
	default:
		return r.runAsk(ctx, pool, res)
	}
}

func (r *Runner) runAsk(ctx context.Context, pool []types.Resume, res types.Resolution) (string, error) {
	if len(pool) == 0 {
		return "No resumes are uploaded yet. Upload a resume first, then ask me about the candidate.", nil
	}

	names := make([]string, len(pool))
	for i, resume := range pool {
		names[i] = resume.Name
	}

	queried := queriedCandidate(res.Entities)
	if queried != "" {
		if matched, ok := contextres.MatchCandidate(queried, names); ok {
			for _, resume := range pool {
				if resume.Name == matched {
					return r.parser.Answer(ctx, resume, res.ResolvedQuery)
				}
			}
		}
		logging.AppLogger.Info("queried candidate not in pool, answering across all",
			zap.String("queried", queried))
	}
	return r.parser.AnswerAcross(ctx, pool, res.ResolvedQuery)
}

// queriedCandidate picks the candidate name a resolved query is about:
// the first job_candidate entity, falling back to the first non-pronoun
// entity of any type.
func queriedCandidate(entities []types.Entity) string {
	for _, e := range entities {
		if e.Type == contextres.CandidateType && !e.IsPronoun {
			return e.Name
		}
	}
	for _, e := range entities {
		if !e.IsPronoun {
			return e.Name
		}
	}
	return ""
}

func (r *Runner) runCompare(ctx context.Context, pool []types.Resume) (string, error) {
	if len(pool) < 2 {
		return fmt.Sprintf("I need at least 2 resumes to run a comparison; %d uploaded so far.", len(pool)), nil
	}
	result, err := r.comparer.Compare(ctx, pool)
	if err != nil {
		return "", err
	}
	return renderComparison(result), nil
}

func (r *Runner) runBlog(ctx context.Context, pool []types.Resume) (string, error) {
	if len(pool) < 2 {
		return fmt.Sprintf("I need at least 2 resumes to write a comparison post; %d uploaded so far.", len(pool)), nil
	}
	result, err := r.comparer.Compare(ctx, pool)
	if err != nil {
		return "", err
	}
	return r.blogger.Generate(ctx, result, pool)
}

func (r *Runner) runStats(pool []types.Resume) (string, error) {
	if len(pool) == 0 {
		return "No resumes are uploaded yet, so there are no stats to report.", nil
	}
	metrics := CalculatePerformanceMetrics(pool)

	var b strings.Builder
	b.WriteString("Candidate performance scores (1-10):\n")
	for _, m := range metrics {
		fmt.Fprintf(&b, "\n%s — overall match %.1f%%\n", m.Name, m.OverallMatch)
		for _, label := range scoreLabels {
			fmt.Fprintf(&b, "  %s: %.1f\n", label, m.Scores[label])
		}
	}
	return b.String(), nil
}

func renderComparison(result *ComparisonResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compared candidates: %s\n", strings.Join(result.CandidateNames, ", "))
	fmt.Fprintf(&b, "Overall similarity: %.0f%%\n", result.Similarity.AverageSimilarity*100)

	most := result.Similarity.MostSimilarPair
	if len(result.CandidateNames) > most.CandidateIndices[1] {
		fmt.Fprintf(&b, "Most similar pair: %s and %s (%.0f%%)\n",
			result.CandidateNames[most.CandidateIndices[0]],
			result.CandidateNames[most.CandidateIndices[1]],
			most.SimilarityScore*100)
	}

	if common := result.TechStacks.CommonTechnologies; len(common) > 0 {
		show := common
		if len(show) > 10 {
			show = show[:10]
		}
		fmt.Fprintf(&b, "Shared technologies: %s\n", strings.Join(show, ", "))
	}

	if result.LLM != nil {
		if v := result.LLM.Summary.MostExperienced; v != "" {
			fmt.Fprintf(&b, "Most experienced: %s\n", v)
		}
		if v := result.LLM.Summary.MostDiverseSkills; v != "" {
			fmt.Fprintf(&b, "Most diverse skills: %s\n", v)
		}
		if v := result.LLM.Summary.OverallVerdict; v != "" {
			fmt.Fprintf(&b, "\n%s\n", v)
		}
	}
	return b.String()
}
