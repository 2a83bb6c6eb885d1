package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
)

func TestEssaySaveDraft(t *testing.T) {
	essay := Essay{CurrentDraftIndex: -1}
	now := time.Now().UTC()

	first := essay.SaveDraft("the quick brown fox", now)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 4, first.WordCount)
	assert.Equal(t, now, first.LastUpdated)
	assert.Equal(t, 0, essay.CurrentDraftIndex)

	second := essay.SaveDraft("revised", now.Add(time.Minute))
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, 1, essay.CurrentDraftIndex)

	require.Len(t, essay.Drafts, 2)
	assert.Equal(t, "the quick brown fox", essay.Drafts[0].Content)

	current := essay.Current()
	require.NotNil(t, current)
	assert.Equal(t, "revised", current.Content)
}

func TestEssayCurrent_Empty(t *testing.T) {
	essay := Essay{CurrentDraftIndex: -1}
	assert.Nil(t, essay.Current())
}

func TestEssayWithinLimit(t *testing.T) {
	essay := Essay{WordLimit: scholarship.WordLimit{Min: 500, Max: 750}}

	assert.False(t, essay.WithinLimit(499))
	assert.True(t, essay.WithinLimit(500))
	assert.True(t, essay.WithinLimit(750))
	assert.False(t, essay.WithinLimit(751))

	// Zero bounds are open-ended.
	noMin := Essay{WordLimit: scholarship.WordLimit{Max: 100}}
	assert.True(t, noMin.WithinLimit(1))
	assert.False(t, noMin.WithinLimit(101))

	unlimited := Essay{}
	assert.True(t, unlimited.WithinLimit(0))
	assert.True(t, unlimited.WithinLimit(99999))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t "))
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 3, WordCount("  one\n two\tthree  "))
}
