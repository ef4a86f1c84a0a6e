package types

// Entity is a named or pronoun reference detected in a message. Types are
// free-form labels chosen by the model; the only type corrected
// deterministically is "job_candidate", applied when a name matches a
// stored candidate.
type Entity struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	IsPronoun    bool    `json:"is_pronoun"`
	Confidence   float64 `json:"confidence,omitempty"`
	ResolvedFrom string  `json:"resolved_from,omitempty"`
	Context      string  `json:"context,omitempty"`
}

// NonPronouns filters out pronoun mentions.
func NonPronouns(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if !e.IsPronoun {
			out = append(out, e)
		}
	}
	return out
}

// Pronouns keeps only pronoun mentions.
func Pronouns(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.IsPronoun {
			out = append(out, e)
		}
	}
	return out
}
