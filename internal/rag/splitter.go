// Package rag splits notes into fragments and embeds them for retrieval.
package rag

import (
	"regexp"
	"strings"

	"github.com/noterag/noterag/internal/domain"
)

// DefaultChunkSize is the maximum fragment length in characters.
const DefaultChunkSize = 500

var (
	codeBlockRe = regexp.MustCompile("(?s)```.*?```")
	blankLineRe = regexp.MustCompile(`\n\s*\n+`)
)

// Candidate is a fragment before it is assigned to a note.
type Candidate struct {
	Kind    domain.FragmentKind
	Content string
}

// SplitMarkdown keeps fenced code blocks whole and splits the surrounding
// prose on blank lines, cutting long paragraphs into chunkSize-rune pieces.
func SplitMarkdown(md string, chunkSize int) []Candidate {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	md = strings.ReplaceAll(md, "\r\n", "\n")
	out := make([]Candidate, 0)
	last := 0
	for _, rng := range codeBlockRe.FindAllStringIndex(md, -1) {
		out = appendParagraphs(out, md[last:rng[0]], chunkSize)
		if code := strings.TrimSpace(md[rng[0]:rng[1]]); code != "" {
			out = append(out, Candidate{Kind: domain.FragmentKindCode, Content: code})
		}
		last = rng[1]
	}
	return appendParagraphs(out, md[last:], chunkSize)
}

func appendParagraphs(out []Candidate, text string, chunkSize int) []Candidate {
	text = strings.TrimSpace(text)
	if text == "" {
		return out
	}

	for _, p := range blankLineRe.Split(text, -1) {
		runes := []rune(strings.TrimSpace(p))
		for len(runes) > 0 {
			n := chunkSize
			if n > len(runes) {
				n = len(runes)
			}
			if chunk := strings.TrimSpace(string(runes[:n])); chunk != "" {
				out = append(out, Candidate{Kind: domain.FragmentKindText, Content: chunk})
			}
			runes = runes[n:]
		}
	}
	return out
}

// BuildFragments splits a note and assigns stable fragment ids. Duplicate
// fragments inside one note collapse to the first occurrence.
func BuildFragments(note *domain.Note, chunkSize int) []*domain.Fragment {
	source := note.Content
	if strings.TrimSpace(source) == "" {
		source = note.Title
	}

	candidates := SplitMarkdown(source, chunkSize)
	frags := make([]*domain.Fragment, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		id := domain.FragmentID(note.ID, c.Content)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		frags = append(frags, &domain.Fragment{
			ID:      id,
			NoteID:  note.ID,
			Kind:    c.Kind,
			Index:   len(frags),
			Content: c.Content,
		})
	}
	return frags
}
