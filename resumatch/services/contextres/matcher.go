package contextres

import "strings"

// matchStrategy reports whether a queried name matches one candidate name.
type matchStrategy func(queried, candidate string) bool

// Strategies in priority order; a later rule is consulted only when no
// candidate satisfied the earlier one.
var matchStrategies = []matchStrategy{
	exactMatch,
	substringMatch,
	firstTokenMatch,
}

func exactMatch(queried, candidate string) bool {
	return queried == candidate
}

func substringMatch(queried, candidate string) bool {
	return strings.Contains(candidate, queried) || strings.Contains(queried, candidate)
}

func firstTokenMatch(queried, candidate string) bool {
	return firstToken(queried) == firstToken(candidate)
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// MatchCandidate resolves a queried name against the known candidate list.
// Rules, first hit wins: exact case-insensitive equality, case-insensitive
// substring containment in either direction, then first-token equality.
// Within a rule, candidates are tried in the given order, which callers
// supply most-recently-stored first — that is the deterministic tie-break
// for overlapping names. Pure function, no side effects.
func MatchCandidate(queriedName string, candidates []string) (string, bool) {
	queried := strings.ToLower(strings.TrimSpace(queriedName))
	if queried == "" {
		return "", false
	}
	for _, strategy := range matchStrategies {
		for _, candidate := range candidates {
			if strategy(queried, strings.ToLower(strings.TrimSpace(candidate))) {
				return candidate, true
			}
		}
	}
	return "", false
}
