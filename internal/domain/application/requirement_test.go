package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateProgress(t *testing.T) {
	mk := func(statuses ...RequirementStatus) []Requirement {
		reqs := make([]Requirement, len(statuses))
		for i, s := range statuses {
			reqs[i] = Requirement{ID: "r", Label: "r", Status: s}
		}
		return reqs
	}

	tests := []struct {
		name string
		reqs []Requirement
		want int
	}{
		{"empty list", nil, 0},
		{"all missing", mk(RequirementMissing, RequirementMissing), 0},
		{"all completed", mk(RequirementCompleted, RequirementCompleted), 100},
		{"half completed", mk(RequirementCompleted, RequirementMissing), 50},
		{"draft counts half", mk(RequirementDraft, RequirementMissing), 25},
		{"pending counts zero", mk(RequirementPending, RequirementCompleted), 50},
		{"three of four plus draft rounds up", mk(
			RequirementCompleted, RequirementCompleted, RequirementCompleted, RequirementDraft,
		), 88}, // (3 + 0.5) / 4 = 87.5
		{"one draft of three rounds", mk(
			RequirementDraft, RequirementMissing, RequirementMissing,
		), 17}, // 0.5 / 3 = 16.67
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateProgress(tt.reqs))
		})
	}
}

func TestRequirementStatusIsValid(t *testing.T) {
	assert.True(t, RequirementCompleted.IsValid())
	assert.True(t, RequirementPending.IsValid())
	assert.True(t, RequirementMissing.IsValid())
	assert.True(t, RequirementDraft.IsValid())
	assert.False(t, RequirementStatus("done").IsValid())
	assert.False(t, RequirementStatus("").IsValid())
}
