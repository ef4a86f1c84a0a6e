package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/jsonutils"
	"resumatch/resumatch/utils/logging"
)

// BlogGenerator turns a comparison into a publishable markdown post.
type BlogGenerator struct {
	llm llm.Client
	cfg config.LLMConfig
}

func NewBlogGenerator(client llm.Client, cfg config.LLMConfig) *BlogGenerator {
	return &BlogGenerator{llm: client, cfg: cfg}
}

// Generate writes the post: a generated narrative body framed by a
// deterministic header and footer.
func (g *BlogGenerator) Generate(ctx context.Context, comparison *ComparisonResult, resumes []types.Resume) (string, error) {
	defer logging.LogDuration(ctx, "generate_blog")()

	body, err := g.narrative(ctx, comparison, resumes)
	if err != nil {
		return "", err
	}
	date := time.Now().Format("January 2, 2006")
	return blogHeader(comparison.CandidateNames, date) + body + blogFooter, nil
}

func (g *BlogGenerator) narrative(ctx context.Context, comparison *ComparisonResult, resumes []types.Resume) (string, error) {
	names := make([]string, 0, len(resumes))
	for _, r := range resumes {
		names = append(names, r.Name)
	}
	contextData := jsonutils.ToJSON(map[string]interface{}{
		"comparison": comparison,
		"candidates": names,
	})

	prompt := fmt.Sprintf(`Write a professional technical blog post comparing these candidates.
Use Markdown formatting.
Include:
- An engaging title
- Executive summary
- Detailed technical comparison
- Strengths of each candidate
- Final recommendation

Context Data:
%s`, contextData)

	return g.llm.Run(ctx, llm.ChatRequest{
		Model: g.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: "You are a Technical Writer creating a hiring report."},
			{Role: "user", Content: prompt},
		},
		Options: &llm.Options{Temperature: 0.7},
	})
}

func blogHeader(candidates []string, date string) string {
	var list strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&list, "- **%s**\n", c)
	}
	return fmt.Sprintf(`# Comparative Analysis of Technical Talent: Insights from Resume Evaluation

*Published: %s*

### Overview
This analysis compares %d technical professionals based on their resumes, providing insights for hiring managers,
recruiters, and technical leaders. The evaluation focuses on technical skills, experience patterns, and unique value propositions.

**Candidates Analyzed:**
%s
---

`, date, len(candidates), list.String())
}

const blogFooter = `

---

### About This Analysis

**Methodology:**
- Resume parsing using LLM extraction
- Embedding-based similarity analysis
- Comparative evaluation across multiple dimensions

**Disclaimer:**
This analysis is generated automatically and should be used as one of several inputs in the hiring process.
Always conduct interviews and reference checks for comprehensive evaluation.
`
