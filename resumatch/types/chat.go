package types

// ChatRequest is the body of POST /chat/.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// CreateSessionRequest is the body of POST /chat/session.
type CreateSessionRequest struct {
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// TurnResult is what one processed chat turn returns to the caller.
type TurnResult struct {
	SessionID          string   `json:"session_id"`
	OriginalQuery      string   `json:"original_query"`
	ResolvedQuery      string   `json:"resolved_query"`
	Entities           []Entity `json:"entities"`
	ContextApplied     bool     `json:"context_applied"`
	Confidence         float64  `json:"confidence"`
	Reasoning          string   `json:"reasoning,omitempty"`
	NeedsClarification bool     `json:"needs_clarification,omitempty"`
	Tool               string   `json:"tool"`
	Response           string   `json:"response"`
}

// Resolution is the outcome of context resolution for a single query,
// before routing. ContextUsed is false when the query had no pronouns or
// no history was available.
type Resolution struct {
	OriginalQuery      string   `json:"original_query"`
	ResolvedQuery      string   `json:"resolved_query"`
	Entities           []Entity `json:"entities"`
	ContextUsed        bool     `json:"context_used"`
	Confidence         float64  `json:"confidence"`
	Reasoning          string   `json:"reasoning,omitempty"`
	NeedsClarification bool     `json:"needs_clarification,omitempty"`
	Warning            string   `json:"warning,omitempty"`
}

// HistoryMessage is one message in a session transcript as returned by
// GET /chat/session/{id}/messages and consumed by the resolver prompt.
type HistoryMessage struct {
	Role          string   `json:"role"`
	Message       string   `json:"message"`
	ResolvedQuery string   `json:"resolved_query,omitempty"`
	Entities      []Entity `json:"entities"`
	Timestamp     string   `json:"timestamp,omitempty"`
}
