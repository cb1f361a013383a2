package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// UntitledNote replaces a blank title on create.
	UntitledNote = "未命名笔记"

	DefaultPage     = 1
	DefaultPageSize = 10
)

// Note is a note as returned by the API.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotePage is one page of notes plus the total across all pages.
type NotePage struct {
	List  []*Note `json:"list"`
	Total int64   `json:"total"`
}

// NoteUpdate carries the fields of a partial update. Nil fields are left unchanged.
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func notePath(id int64) string {
	return "/note/" + strconv.FormatInt(id, 10)
}

func pageQuery(page, size int) url.Values {
	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = DefaultPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// ListNotes fetches one page of live notes. Zero page or size uses the defaults.
func (c *APIClient) ListNotes(ctx context.Context, page, size int) (*NotePage, error) {
	var out NotePage
	if err := c.Get(ctx, "/note/list", RequestOptions{Query: pageQuery(page, size)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNote creates a note. An empty title becomes UntitledNote.
func (c *APIClient) CreateNote(ctx context.Context, title, content string) (*Note, error) {
	if title == "" {
		title = UntitledNote
	}

	var out Note
	if err := c.Post(ctx, "/note", createNoteRequest{Title: title, Content: content}, RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetNote fetches a single note. An unknown id returns an *APIError with status 404.
func (c *APIClient) GetNote(ctx context.Context, id int64) (*Note, error) {
	var out Note
	if err := c.Get(ctx, notePath(id), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNote applies a partial update and returns the updated note.
func (c *APIClient) UpdateNote(ctx context.Context, id int64, update NoteUpdate) (*Note, error) {
	var out Note
	if err := c.Put(ctx, notePath(id), update, RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNote moves a note to the trash.
func (c *APIClient) DeleteNote(ctx context.Context, id int64) error {
	return c.Delete(ctx, notePath(id), RequestOptions{}, nil)
}

// ListTrash fetches one page of deleted notes.
func (c *APIClient) ListTrash(ctx context.Context, page, size int) (*NotePage, error) {
	var out NotePage
	if err := c.Get(ctx, "/note/trash", RequestOptions{Query: pageQuery(page, size)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestoreNote takes a note out of the trash.
func (c *APIClient) RestoreNote(ctx context.Context, id int64) (*Note, error) {
	var out Note
	if err := c.Post(ctx, notePath(id)+"/restore", nil, RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurgeNote permanently deletes a note that is in the trash.
func (c *APIClient) PurgeNote(ctx context.Context, id int64) error {
	return c.Delete(ctx, notePath(id)+"/purge", RequestOptions{}, nil)
}

// SearchNotes runs a keyword search over live notes.
func (c *APIClient) SearchNotes(ctx context.Context, q string) ([]*Note, error) {
	query := url.Values{}
	query.Set("q", q)

	var out []*Note
	if err := c.Get(ctx, "/note/search", RequestOptions{Query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatNoteID(id int64) string {
	return fmt.Sprintf("#%d", id)
}
