package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
)

func labels(reqs []Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Label
	}
	return out
}

func TestBuildChecklist_FullTemplate(t *testing.T) {
	tmpl := scholarship.Template{
		EssayRequired:         true,
		EssayPrompt:           "Why do you deserve this award?",
		EssayWordLimit:        scholarship.WordLimit{Min: 500, Max: 750},
		TranscriptRequired:    true,
		RecommendationLetters: 2,
		PortfolioRequired:     true,
	}

	reqs := BuildChecklist(tmpl, testIDGen())

	assert.Equal(t, []string{
		"Application form",
		"Essay (500-750 words)",
		"Official Transcript",
		"2 Letter(s) of Recommendation",
		"Portfolio",
	}, labels(reqs))

	assert.Equal(t, "Why do you deserve this award?", reqs[1].Details)
	assert.Equal(t, "0/2 received", reqs[3].Details)
	for _, req := range reqs {
		assert.Equal(t, RequirementMissing, req.Status)
		assert.NotEmpty(t, req.ID)
	}
}

func TestBuildChecklist_EmptyTemplate(t *testing.T) {
	reqs := BuildChecklist(scholarship.Template{}, testIDGen())

	// Every application at least has the form itself.
	require.Len(t, reqs, 1)
	assert.Equal(t, "Application form", reqs[0].Label)
}

func TestBuildChecklist_EssayWithoutLimit(t *testing.T) {
	tmpl := scholarship.Template{EssayRequired: true}
	reqs := BuildChecklist(tmpl, testIDGen())

	require.Len(t, reqs, 2)
	assert.Equal(t, "Essay", reqs[1].Label)
}

func TestBuildChecklist_Extras(t *testing.T) {
	tmpl := scholarship.Template{
		TranscriptRequired: true,
		Extras:             []string{"FAFSA confirmation", "Proof of enrollment", "  "},
	}

	reqs := BuildChecklist(tmpl, testIDGen())

	assert.Equal(t, []string{
		"Application form",
		"Official Transcript",
		"FAFSA confirmation",
		"Proof of enrollment",
	}, labels(reqs))
}

func TestBuildChecklist_ExtraDuplicatesStructuredFlag(t *testing.T) {
	tmpl := scholarship.Template{
		TranscriptRequired: true,
		Extras:             []string{"official transcript", "Official Transcript!"},
	}

	reqs := BuildChecklist(tmpl, testIDGen())

	// Case and punctuation differences do not make a new requirement.
	assert.Equal(t, []string{"Application form", "Official Transcript"}, labels(reqs))
}

func TestBuildChecklist_SharedWordIsNotDuplicate(t *testing.T) {
	tmpl := scholarship.Template{
		TranscriptRequired: true,
		Extras:             []string{"Unofficial high school transcript"},
	}

	reqs := BuildChecklist(tmpl, testIDGen())

	// Sharing the word "transcript" is not enough; the extra carries
	// keywords the structured entry does not.
	assert.Equal(t, []string{
		"Application form",
		"Official Transcript",
		"Unofficial high school transcript",
	}, labels(reqs))
}

func TestBuildChecklist_DuplicateExtras(t *testing.T) {
	tmpl := scholarship.Template{
		Extras: []string{"Budget plan", "budget plan", "Budget Plan."},
	}

	reqs := BuildChecklist(tmpl, testIDGen())
	assert.Equal(t, []string{"Application form", "Budget plan"}, labels(reqs))
}
