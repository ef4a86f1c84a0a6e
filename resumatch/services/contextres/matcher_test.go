package contextres

import "testing"

func TestMatchCandidateExact(t *testing.T) {
	candidates := []string{"Sriram Kumar", "Gobika R"}
	name, ok := MatchCandidate("sriram kumar", candidates)
	if !ok || name != "Sriram Kumar" {
		t.Errorf("expected exact match Sriram Kumar, got %q ok=%v", name, ok)
	}
}

func TestMatchCandidateSubstring(t *testing.T) {
	candidates := []string{"Sriram Kumar"}

	// queried inside candidate
	if name, ok := MatchCandidate("sriram", candidates); !ok || name != "Sriram Kumar" {
		t.Errorf("expected substring match, got %q ok=%v", name, ok)
	}
	// candidate inside queried
	if name, ok := MatchCandidate("Mr. Sriram Kumar Esq", candidates); !ok || name != "Sriram Kumar" {
		t.Errorf("expected reverse substring match, got %q ok=%v", name, ok)
	}
}

func TestMatchCandidateFirstToken(t *testing.T) {
	candidates := []string{"Raju Venkatesan"}
	name, ok := MatchCandidate("Raju Subramanian", candidates)
	if !ok || name != "Raju Venkatesan" {
		t.Errorf("expected first-token match, got %q ok=%v", name, ok)
	}
}

func TestMatchCandidateExactWinsOverWeakerRules(t *testing.T) {
	// "Bob" would substring-match "Bobby Tables" but exact-matches "Bob".
	candidates := []string{"Bobby Tables", "Bob"}
	name, ok := MatchCandidate("bob", candidates)
	if !ok || name != "Bob" {
		t.Errorf("exact match must win over substring, got %q ok=%v", name, ok)
	}
}

func TestMatchCandidateOrderTieBreak(t *testing.T) {
	// Both candidates share the first token; list order (most recently
	// stored first) decides, deterministically.
	candidates := []string{"Alice Newer", "Alice Older"}
	for i := 0; i < 10; i++ {
		name, ok := MatchCandidate("Alice Z", candidates)
		if !ok || name != "Alice Newer" {
			t.Fatalf("tie-break not deterministic: got %q ok=%v", name, ok)
		}
	}
}

func TestMatchCandidateNoMatch(t *testing.T) {
	if name, ok := MatchCandidate("Zelda", []string{"Alice", "Bob"}); ok {
		t.Errorf("expected no match, got %q", name)
	}
	if _, ok := MatchCandidate("", []string{"Alice"}); ok {
		t.Error("empty query must not match")
	}
	if _, ok := MatchCandidate("Alice", nil); ok {
		t.Error("empty candidate list must not match")
	}
}
