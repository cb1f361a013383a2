package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// DefaultTopK is the number of hits RagSearch asks for when topK is zero.
const DefaultTopK = 5

// SearchHit is a fragment returned by RAG retrieval.
type SearchHit struct {
	NoteID  int64   `json:"note_id"`
	Title   string  `json:"title"`
	FragID  string  `json:"frag_id"`
	Score   float64 `json:"score"`
	Link    string  `json:"link"`
	Content string  `json:"content"`
}

// QAResult is the answer to a question plus the hits it was built from.
type QAResult struct {
	Answer  string       `json:"answer"`
	Sources []*SearchHit `json:"sources"`
}

type qaRequest struct {
	Question string `json:"question"`
}

// RagSearch retrieves the fragments most similar to q. Zero topK uses DefaultTopK.
func (c *APIClient) RagSearch(ctx context.Context, q string, topK int) ([]*SearchHit, error) {
	if topK == 0 {
		topK = DefaultTopK
	}
	query := url.Values{}
	query.Set("q", q)
	query.Set("topK", strconv.Itoa(topK))

	var out []*SearchHit
	if err := c.Get(ctx, "/rag/search", RequestOptions{Query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RagQA asks a question over the note corpus. Zero timeout uses DefaultQATimeout
// instead of the client default.
func (c *APIClient) RagQA(ctx context.Context, question string, timeout time.Duration) (*QAResult, error) {
	if timeout <= 0 {
		timeout = DefaultQATimeout
	}

	var out QAResult
	if err := c.Post(ctx, "/rag/qa", qaRequest{Question: question}, RequestOptions{Timeout: timeout}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
