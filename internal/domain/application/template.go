package application

import (
	"fmt"
	"strings"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
)

// BuildChecklist derives the initial requirement checklist from a
// scholarship's declared template. Structured flags come first in a fixed
// order; free-text extras follow, deduplicated against what the flags
// already produced. Every entry starts as Missing.
func BuildChecklist(tmpl scholarship.Template, newID func() string) []Requirement {
	reqs := make([]Requirement, 0, 5+len(tmpl.Extras))

	add := func(label, details string) {
		reqs = append(reqs, Requirement{
			ID:      newID(),
			Label:   label,
			Status:  RequirementMissing,
			Details: details,
		})
	}

	add("Application form", "")

	if tmpl.EssayRequired {
		label := "Essay"
		if tmpl.EssayWordLimit.Min > 0 || tmpl.EssayWordLimit.Max > 0 {
			label = fmt.Sprintf("Essay (%d-%d words)", tmpl.EssayWordLimit.Min, tmpl.EssayWordLimit.Max)
		}
		add(label, tmpl.EssayPrompt)
	}

	if tmpl.TranscriptRequired {
		add("Official Transcript", "")
	}

	if n := tmpl.RecommendationLetters; n > 0 {
		add(fmt.Sprintf("%d Letter(s) of Recommendation", n), fmt.Sprintf("0/%d received", n))
	}

	if tmpl.PortfolioRequired {
		add("Portfolio", "")
	}

	for _, extra := range tmpl.Extras {
		extra = strings.TrimSpace(extra)
		if extra == "" || isDuplicateRequirement(extra, reqs) {
			continue
		}
		add(extra, "")
	}

	return reqs
}

// isDuplicateRequirement reports whether a free-text requirement repeats
// something the checklist already contains. Labels are compared by
// normalized keyword set: the candidate is a duplicate when every one of
// its keywords already appears in some existing label. This replaces the
// raw substring match that used to drop distinct requirements sharing a
// single word.
func isDuplicateRequirement(label string, existing []Requirement) bool {
	candidate := keywordSet(label)
	if len(candidate) == 0 {
		return true
	}

	for _, req := range existing {
		have := keywordSet(req.Label)
		if containsAll(have, candidate) {
			return true
		}
	}
	return false
}

// keywordSet normalizes a label into its set of lowercase alphanumeric
// tokens. Punctuation and casing differences don't count as distinct.
func keywordSet(s string) map[string]struct{} {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, s)

	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		set[tok] = struct{}{}
	}
	return set
}

func containsAll(have, want map[string]struct{}) bool {
	for tok := range want {
		if _, ok := have[tok]; !ok {
			return false
		}
	}
	return true
}
