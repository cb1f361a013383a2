package rag

import (
	"context"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/noterag/noterag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMarkdown_CodeBlocksKeptWhole(t *testing.T) {
	md := "Intro paragraph.\n\n```go\nfunc main() {\n\n\tprintln(1)\n}\n```\n\nOutro."

	got := SplitMarkdown(md, 500)

	require.Len(t, got, 3)
	assert.Equal(t, Candidate{Kind: domain.FragmentKindText, Content: "Intro paragraph."}, got[0])
	assert.Equal(t, domain.FragmentKindCode, got[1].Kind)
	assert.True(t, strings.HasPrefix(got[1].Content, "```go"))
	assert.Contains(t, got[1].Content, "println(1)")
	assert.Equal(t, Candidate{Kind: domain.FragmentKindText, Content: "Outro."}, got[2])
}

func TestSplitMarkdown_BlankLineParagraphs(t *testing.T) {
	md := "one\r\n\r\ntwo\n  \nthree\nstill three"

	got := SplitMarkdown(md, 500)

	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Content)
	assert.Equal(t, "two", got[1].Content)
	assert.Equal(t, "three\nstill three", got[2].Content)
}

func TestSplitMarkdown_LongParagraphChunkedByRunes(t *testing.T) {
	md := strings.Repeat("笔记", 600)

	got := SplitMarkdown(md, 500)

	require.Len(t, got, 3)
	assert.Equal(t, 500, utf8.RuneCountInString(got[0].Content))
	assert.Equal(t, 500, utf8.RuneCountInString(got[1].Content))
	assert.Equal(t, 200, utf8.RuneCountInString(got[2].Content))
	for _, c := range got {
		assert.True(t, utf8.ValidString(c.Content))
	}
}

func TestSplitMarkdown_Empty(t *testing.T) {
	assert.Empty(t, SplitMarkdown("", 500))
	assert.Empty(t, SplitMarkdown("  \n\n  ", 0))
}

func TestBuildFragments(t *testing.T) {
	note := &domain.Note{ID: 9, Title: "t", Content: "dup\n\ndup\n\nother"}

	frags := BuildFragments(note, 500)

	require.Len(t, frags, 2)
	assert.Equal(t, domain.FragmentID(9, "dup"), frags[0].ID)
	assert.Equal(t, 0, frags[0].Index)
	assert.Equal(t, "other", frags[1].Content)
	assert.Equal(t, 1, frags[1].Index)
	assert.Equal(t, int64(9), frags[1].NoteID)
}

func TestBuildFragments_EmptyContentUsesTitle(t *testing.T) {
	frags := BuildFragments(&domain.Note{ID: 1, Title: "just a title"}, 500)

	require.Len(t, frags, 1)
	assert.Equal(t, "just a title", frags[0].Content)
}

func TestHashEmbedder_DeterministicUnitVectors(t *testing.T) {
	e := NewHashEmbedder(64)
	assert.Equal(t, 64, e.Dimensions())

	got, err := e.EmbedBatch(context.Background(), []string{"alpha", "alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, got[0], got[1])
	assert.NotEqual(t, got[0], got[2])

	for _, v := range got {
		require.Len(t, v, 64)
		var sum float64
		for _, f := range v {
			sum += float64(f) * float64(f)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
	}
}

func TestHashEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHashEmbedder(8).EmbedBatch(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
