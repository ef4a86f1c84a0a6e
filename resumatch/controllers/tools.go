package controllers

import (
	"context"
	"errors"
	"fmt"

	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/services/tools"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/types"
)

// Precondition errors the routes map to 4xx responses.
var (
	ErrNotEnoughResumes  = errors.New("not enough resumes")
	ErrCandidateNotFound = errors.New("candidate not found")
)

// ToolsController exposes the capabilities directly, without the chat
// pipeline: a caller that already knows what it wants can hit these
// instead of phrasing a query.
type ToolsController struct {
	parser   *tools.ResumeParser
	comparer *tools.ComparisonEngine
	blogger  *tools.BlogGenerator
	resumes  *dao.ResumeDAO
}

func NewToolsController(parser *tools.ResumeParser, comparer *tools.ComparisonEngine, blogger *tools.BlogGenerator, resumes *dao.ResumeDAO) *ToolsController {
	return &ToolsController{parser: parser, comparer: comparer, blogger: blogger, resumes: resumes}
}

func (c *ToolsController) pool(ctx context.Context) ([]types.Resume, error) {
	records, err := c.resumes.GetAllResumes(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]types.Resume, 0, len(records))
	for _, rec := range records {
		pool = append(pool, types.Resume(rec.ParsedJSON))
	}
	return pool, nil
}

// Ask answers one question about one named candidate.
func (c *ToolsController) Ask(ctx context.Context, req types.AskRequest) (map[string]string, error) {
	pool, err := c.pool(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pool))
	for i, r := range pool {
		names[i] = r.Name
	}
	matched, ok := contextres.MatchCandidate(req.CandidateName, names)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCandidateNotFound, req.CandidateName)
	}
	for _, resume := range pool {
		if resume.Name == matched {
			answer, err := c.parser.Answer(ctx, resume, req.Question)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"candidate": matched,
				"question":  req.Question,
				"answer":    answer,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCandidateNotFound, req.CandidateName)
}

// Compare runs the comparison over all stored candidates.
func (c *ToolsController) Compare(ctx context.Context) (*tools.ComparisonResult, error) {
	pool, err := c.pool(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 for comparison, have %d", ErrNotEnoughResumes, len(pool))
	}
	return c.comparer.Compare(ctx, pool)
}

// Blog generates the comparison post over all stored candidates.
func (c *ToolsController) Blog(ctx context.Context) (map[string]string, error) {
	pool, err := c.pool(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 for a comparison post, have %d", ErrNotEnoughResumes, len(pool))
	}
	comparison, err := c.comparer.Compare(ctx, pool)
	if err != nil {
		return nil, err
	}
	content, err := c.blogger.Generate(ctx, comparison, pool)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"title":   "Resume Comparison Blog Post",
		"content": content,
	}, nil
}

// StatsResponse is the stats endpoint payload: per-candidate scores and
// a ready-to-render radar chart, plus similarity when comparable.
type StatsResponse struct {
	PerformanceMetrics []tools.CandidateMetrics  `json:"performance_metrics"`
	ComparisonSummary  *tools.SimilarityAnalysis `json:"comparison_summary,omitempty"`
	ChartData          tools.ChartData           `json:"chart_data"`
}

// Stats scores all stored candidates.
func (c *ToolsController) Stats(ctx context.Context) (*StatsResponse, error) {
	pool, err := c.pool(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no resumes uploaded", ErrNotEnoughResumes)
	}

	metrics := tools.CalculatePerformanceMetrics(pool)
	resp := &StatsResponse{
		PerformanceMetrics: metrics,
		ChartData:          tools.BuildChartData(metrics),
	}
	if len(pool) >= 2 {
		if comparison, err := c.comparer.Compare(ctx, pool); err == nil {
			resp.ComparisonSummary = &comparison.Similarity
		}
	}
	return resp, nil
}
