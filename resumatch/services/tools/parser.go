// Package tools implements the routed capabilities: resume parsing and
// question answering, multi-candidate comparison, blog generation and
// performance statistics.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/jsonutils"
	"resumatch/resumatch/utils/logging"
)

// maxResumeChars caps how much document text goes into the extraction
// prompt.
const maxResumeChars = 4000

// ResumeParser extracts structured candidate data from raw resume text
// and answers questions against a parsed resume.
type ResumeParser struct {
	llm llm.Client
	cfg config.LLMConfig
}

func NewResumeParser(client llm.Client, cfg config.LLMConfig) *ResumeParser {
	return &ResumeParser{llm: client, cfg: cfg}
}

const parseSystemPrompt = "You look for structured data in resumes. Output ONLY JSON."

func parsePrompt(text string) string {
	if len(text) > maxResumeChars {
		text = text[:maxResumeChars]
	}
	return fmt.Sprintf(`You are an expert Resume Parser. Extract the following information from the resume text below into a valid JSON object:
- name (string)
- email (string)
- phone (string)
- summary (string)
- skills (dictionary with keys: programming_languages, frameworks, tools, databases)
- experience (list of objects: title, company, description, dates)
- education (list of objects: degree, institution, year)
- tech_stack (list of strings - all technical keywords found)

Resume Text:
%s`, text)
}

// Parse runs the extraction call and returns the structured resume.
func (p *ResumeParser) Parse(ctx context.Context, filename, text string) (types.Resume, error) {
	defer logging.LogDuration(ctx, "parse_resume")()

	raw, err := p.llm.Run(ctx, llm.ChatRequest{
		Model: p.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: parseSystemPrompt},
			{Role: "user", Content: parsePrompt(text)},
		},
		Format:  "json",
		Options: &llm.Options{Temperature: 0.1},
	})
	if err != nil {
		return types.Resume{}, fmt.Errorf("resume extraction call: %w", err)
	}

	var resume types.Resume
	if err := json.Unmarshal([]byte(jsonutils.ExtractJSON(raw)), &resume); err != nil {
		return types.Resume{}, fmt.Errorf("parse extraction output: %w", err)
	}
	if resume.Name == "" {
		return types.Resume{}, fmt.Errorf("no candidate name found in %s", filename)
	}
	resume.SourceFile = filename
	return resume, nil
}

// Answer answers one question from a parsed resume.
func (p *ResumeParser) Answer(ctx context.Context, resume types.Resume, question string) (string, error) {
	defer logging.LogDuration(ctx, "answer_question")()

	prompt := fmt.Sprintf(`Based on the resume data below, answer the question: %q
Keep the answer concise (under 50 words).

Resume Data:
%s`, question, jsonutils.ToJSON(resume))

	return p.llm.Run(ctx, llm.ChatRequest{
		Model: p.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: "You are an assistant answering questions about a candidate."},
			{Role: "user", Content: prompt},
		},
		Options: &llm.Options{Temperature: 0.3},
	})
}

// AnswerAcross answers a question over the whole candidate pool, used
// when a query names no specific candidate.
func (p *ResumeParser) AnswerAcross(ctx context.Context, resumes []types.Resume, question string) (string, error) {
	defer logging.LogDuration(ctx, "answer_question_across")()

	prompt := fmt.Sprintf(`Based on the resume data of all candidates below, answer the question: %q
Name the candidates you draw on. Keep the answer concise.

Candidates Data:
%s`, question, jsonutils.ToJSON(resumes))

	return p.llm.Run(ctx, llm.ChatRequest{
		Model: p.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: "You are an assistant answering questions about job candidates."},
			{Role: "user", Content: prompt},
		},
		Options: &llm.Options{Temperature: 0.3},
	})
}
