package contextres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/jsonutils"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// CandidateType is the canonical entity type for stored candidates. The
// model's type guess is always overridden with this label when a name
// matches the known candidate list.
const CandidateType = "job_candidate"

// pronounKeywords is the lexical safety net for pronoun detection; it
// backs up the model when it misses obvious reference words.
var pronounKeywords = map[string]bool{
	"he": true, "she": true, "it": true, "they": true,
	"his": true, "her": true, "their": true,
	"this": true, "that": true,
}

// CandidateProvider supplies known candidate display names as grounding
// hints, most recently stored first.
type CandidateProvider interface {
	CandidateNames(ctx context.Context) ([]string, error)
}

// EntityExtractor tags entities and pronouns in a single query using the
// completion service, then applies deterministic corrections.
type EntityExtractor struct {
	llm        llm.Client
	candidates CandidateProvider
	cfg        config.LLMConfig
}

func NewEntityExtractor(client llm.Client, candidates CandidateProvider, cfg config.LLMConfig) *EntityExtractor {
	return &EntityExtractor{llm: client, candidates: candidates, cfg: cfg}
}

const extractSystemPrompt = "You are an intelligent entity extraction assistant. Output ONLY valid JSON."

func extractPrompt(query string, knownCandidates []string) string {
	candidateContext := ""
	if len(knownCandidates) > 0 {
		candidateContext = fmt.Sprintf("\nKnown candidate names in database: %s", strings.Join(knownCandidates, ", "))
	}
	return fmt.Sprintf(`TASK: Extract ALL entities from the query and assign appropriate types based on your understanding.

IMPORTANT: Entity types are NOT predefined. Determine the most appropriate type for each entity based on context and your world knowledge.

Query: %s
%s

Instructions:
- Identify all named entities (people, places, things, concepts, etc.)
- For ANY proper name that could be a person (especially if it matches known candidates), mark it as "job_candidate" type
- Assign a descriptive type that best represents the entity in this context
- For pronouns, infer what type of entity they likely refer to
- ALWAYS identify pronouns ("he", "she", "it", "they", "his", "her", "their", "this", "that")

Return ONLY valid JSON (no markdown, no extra text):
{
  "entities": [
    {
      "name": "entity_name",
      "type": "your_determined_type",
      "is_pronoun": false,
      "context": "brief context about the entity"
    }
  ]
}`, query, candidateContext)
}

// Extract runs the extraction call and the candidate-type correction.
// A failed or unparseable completion degrades to an empty entity list —
// the turn continues; the caller's lexical net still applies.
func (e *EntityExtractor) Extract(ctx context.Context, query string) []types.Entity {
	defer logging.LogDuration(ctx, "entity_extract")()

	var known []string
	if e.candidates != nil {
		names, err := e.candidates.CandidateNames(ctx)
		if err != nil {
			logging.ErrorLogger.Error("candidate hint lookup failed", zap.Error(err))
		} else {
			known = names
		}
	}

	raw, err := e.llm.Run(ctx, llm.ChatRequest{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: extractSystemPrompt},
			{Role: "user", Content: extractPrompt(query, known)},
		},
		Format:  "json",
		Options: &llm.Options{Temperature: e.cfg.Temperature},
	})
	if err != nil {
		logging.ErrorLogger.Error("entity extraction call failed", zap.Error(err))
		return nil
	}

	var parsed struct {
		Entities []types.Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(jsonutils.ExtractJSON(raw)), &parsed); err != nil {
		logging.ErrorLogger.Error("entity extraction parse failed",
			zap.Error(err), zap.String("raw", raw))
		return nil
	}

	// Deterministic correction: names matching stored candidates are
	// candidates, whatever the model guessed.
	for i := range parsed.Entities {
		ent := &parsed.Entities[i]
		if ent.IsPronoun || ent.Name == "" {
			continue
		}
		name := strings.ToLower(ent.Name)
		for _, cand := range known {
			if strings.ToLower(cand) == name {
				ent.Type = CandidateType
				ent.Context = "Known candidate from resume database"
				break
			}
		}
	}
	return parsed.Entities
}

// EnsurePronouns applies the lexical pronoun net. It reports whether any
// pronoun indicator exists (model-flagged OR keyword hit) and, when the
// keywords fired but the model returned no pronoun entities, appends
// minimal "unknown"-typed pronoun entities so downstream resolution always
// has something to resolve.
func EnsurePronouns(query string, entities []types.Entity) ([]types.Entity, bool) {
	matched := pronounTokens(query)

	hasModelPronouns := len(types.Pronouns(entities)) > 0
	if hasModelPronouns {
		return entities, true
	}
	if len(matched) == 0 {
		return entities, false
	}
	for _, word := range matched {
		entities = append(entities, types.Entity{
			Name:      word,
			Type:      "unknown",
			IsPronoun: true,
			Context:   "keyword match",
		})
	}
	return entities, true
}

func pronounTokens(query string) []string {
	seen := map[string]bool{}
	var matched []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, ".,!?;:\"'")
		if pronounKeywords[tok] && !seen[tok] {
			seen[tok] = true
			matched = append(matched, tok)
		}
	}
	return matched
}
