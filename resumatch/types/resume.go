package types

// Resume is the structured form the LLM extracts from a resume document.
// Fields mirror the extraction prompt; TechStack is the flat keyword list
// the comparison engine works from.
type Resume struct {
	Name       string              `json:"name"`
	Email      string              `json:"email,omitempty"`
	Phone      string              `json:"phone,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Skills     map[string][]string `json:"skills,omitempty"`
	Experience []Experience        `json:"experience,omitempty"`
	Education  []Education         `json:"education,omitempty"`
	TechStack  []string            `json:"tech_stack,omitempty"`
	SourceFile string              `json:"source_file,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
	Dates       string `json:"dates,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// AskRequest is the body of POST /tools/ask.
type AskRequest struct {
	CandidateName string `json:"candidate_name"`
	Question      string `json:"question"`
}

// UploadResult reports the outcome of one uploaded file.
type UploadResult struct {
	Filename  string `json:"filename"`
	Candidate string `json:"candidate,omitempty"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}
