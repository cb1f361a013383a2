package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// FragmentKind distinguishes prose from fenced code in a note.
type FragmentKind string

const (
	FragmentKindText FragmentKind = "text"
	FragmentKindCode FragmentKind = "code"
)

// Fragment is one indexed slice of a note.
type Fragment struct {
	ID        string
	NoteID    int64
	Kind      FragmentKind
	Index     int
	Content   string
	Embedding []float32
}

// FragmentID derives a stable id from the owning note and the fragment text.
func FragmentID(noteID int64, content string) string {
	sum := sha1.Sum([]byte(strconv.FormatInt(noteID, 10) + ":" + content))
	return hex.EncodeToString(sum[:])
}

// SearchHit is a fragment matched by a RAG query.
type SearchHit struct {
	NoteID  int64
	Title   string
	FragID  string
	Score   float64
	Link    string
	Content string
}

// Answer is the result of a RAG question.
type Answer struct {
	Answer  string
	Sources []SearchHit
}
