package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultNoteTitle is applied when a note is created without a title.
const DefaultNoteTitle = "未命名笔记"

// MaxTitleLength is measured in characters, not bytes.
const MaxTitleLength = 200

// Note is a markdown note. Deleted notes live in the trash until purged.
type Note struct {
	ID        int64
	Title     string
	Content   string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNote builds an unsaved note. An empty title becomes DefaultNoteTitle;
// whitespace is kept as given.
func NewNote(title, content string) *Note {
	if title == "" {
		title = DefaultNoteTitle
	}
	return &Note{
		Title:   title,
		Content: content,
	}
}

// ValidateNote validates a Note instance
func ValidateNote(n *Note) error {
	if n == nil {
		return ErrNoteNotFound
	}
	if utf8.RuneCountInString(n.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	// Postgres TEXT cannot store NUL.
	if strings.IndexByte(n.Title, 0) >= 0 || strings.IndexByte(n.Content, 0) >= 0 {
		return ErrNulInText
	}
	return nil
}

// NoteUpdate carries the fields of a partial update. Nil fields are left untouched.
type NoteUpdate struct {
	Title   *string
	Content *string
}

// IsEmpty reports whether the update changes nothing.
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil
}

// Apply merges the update into n.
func (u NoteUpdate) Apply(n *Note) {
	if u.Title != nil {
		n.Title = *u.Title
		if n.Title == "" {
			n.Title = DefaultNoteTitle
		}
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
}

// NoteLink is the frontend route of a note.
func NoteLink(id int64) string {
	return "/note/" + strconv.FormatInt(id, 10)
}
