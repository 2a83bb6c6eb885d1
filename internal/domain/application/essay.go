package application

import (
	"strings"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
)

// EssayDraft is one versioned snapshot of essay content. Drafts are
// immutable once saved; revisions append new snapshots.
type EssayDraft struct {
	// Content is the full essay text at save time.
	Content string `json:"content"`

	// WordCount is recomputed from Content on every save.
	WordCount int `json:"word_count"`

	// Version is monotonic per application, starting at 1.
	Version int `json:"version"`

	// LastUpdated is when this snapshot was saved.
	LastUpdated time.Time `json:"last_updated"`
}

// Essay holds the prompt, word limit, and append-only draft history for
// an application's essay.
type Essay struct {
	// Prompt is the essay question from the scholarship template.
	Prompt string `json:"prompt,omitempty"`

	// Drafts is the ordered snapshot history.
	Drafts []EssayDraft `json:"drafts"`

	// CurrentDraftIndex points at the most recently appended draft,
	// -1 when no draft exists yet.
	CurrentDraftIndex int `json:"current_draft_index"`

	// WordLimit bounds the expected length.
	WordLimit scholarship.WordLimit `json:"word_limit"`
}

// SaveDraft appends a new snapshot and moves the current-draft pointer.
// Versions increase strictly by one per save.
func (e *Essay) SaveDraft(content string, now time.Time) EssayDraft {
	version := 1
	if n := len(e.Drafts); n > 0 {
		version = e.Drafts[n-1].Version + 1
	}

	draft := EssayDraft{
		Content:     content,
		WordCount:   WordCount(content),
		Version:     version,
		LastUpdated: now,
	}
	e.Drafts = append(e.Drafts, draft)
	e.CurrentDraftIndex = len(e.Drafts) - 1
	return draft
}

// Current returns the draft CurrentDraftIndex points at, or nil.
func (e *Essay) Current() *EssayDraft {
	if e.CurrentDraftIndex < 0 || e.CurrentDraftIndex >= len(e.Drafts) {
		return nil
	}
	return &e.Drafts[e.CurrentDraftIndex]
}

// WithinLimit reports whether a word count satisfies the limit. A zero
// bound is open-ended on that side.
func (e *Essay) WithinLimit(wordCount int) bool {
	if e.WordLimit.Min > 0 && wordCount < e.WordLimit.Min {
		return false
	}
	if e.WordLimit.Max > 0 && wordCount > e.WordLimit.Max {
		return false
	}
	return true
}

// WordCount counts whitespace-delimited tokens in the content.
func WordCount(content string) int {
	return len(strings.Fields(content))
}
