package identity

import "sort"

// Fuzzy scoring weights. Type agreement is a prerequisite and contributes
// the base score; the remaining weights reward agreement on individual
// structural facts.
const (
	scoreType         = 40
	scoreParent       = 25
	scoreProperty     = 15
	scoreName         = 10
	scoreSiblingIndex = 10

	// DefaultFuzzyThreshold is the minimum score a stored fingerprint
	// must reach to be reused for a structurally moved node.
	DefaultFuzzyThreshold = 55
)

// fuzzyScore rates how well a stored fingerprint matches a candidate.
// Returns 0 when the node types differ; the name hint only counts when
// both sides carry one.
func fuzzyScore(candidate, stored Fingerprint) int {
	if candidate.AstType != stored.AstType {
		return 0
	}
	score := scoreType
	if candidate.ParentID == stored.ParentID {
		score += scoreParent
	}
	if candidate.Property == stored.Property {
		score += scoreProperty
	}
	if candidate.Name != "" && candidate.Name == stored.Name {
		score += scoreName
	}
	if candidate.SiblingIndex == stored.SiblingIndex {
		score += scoreSiblingIndex
	}
	return score
}

// bestFuzzyMatch picks the best-scoring stored fingerprint whose identity
// is still unclaimed this pass, or "" when none reaches the threshold.
// Candidates are visited in lexicographic identity order so equal scores
// break the same way on every run.
func (r *Registry) bestFuzzyMatch(candidate Fingerprint, claimed map[string]bool) string {
	ids := make([]string, 0, len(r.fpByID))
	for id := range r.fpByID {
		if !claimed[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	bestID := ""
	bestScore := 0
	for _, id := range ids {
		if s := fuzzyScore(candidate, r.fpByID[id]); s > bestScore {
			bestID, bestScore = id, s
		}
	}
	if bestScore < r.threshold {
		return ""
	}
	return bestID
}
