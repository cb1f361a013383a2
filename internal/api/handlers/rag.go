package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/noterag/noterag/internal/api"
	"github.com/noterag/noterag/internal/domain"
)

type RAGService interface {
	Search(ctx context.Context, q string, topK int) ([]domain.SearchHit, error)
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}

type RAGHandler struct {
	svc RAGService
}

func NewRAGHandler(svc RAGService) *RAGHandler {
	return &RAGHandler{svc: svc}
}

type QARequest struct {
	Question string `json:"question"`
}

type SearchHitResponse struct {
	NoteID  int64   `json:"note_id"`
	Title   string  `json:"title"`
	FragID  string  `json:"frag_id"`
	Score   float64 `json:"score"`
	Link    string  `json:"link"`
	Content string  `json:"content"`
}

type QAResponse struct {
	Answer  string               `json:"answer"`
	Sources []*SearchHitResponse `json:"sources"`
}

func hitsToResponse(hits []domain.SearchHit) []*SearchHitResponse {
	out := make([]*SearchHitResponse, len(hits))
	for i, h := range hits {
		out[i] = &SearchHitResponse{
			NoteID:  h.NoteID,
			Title:   h.Title,
			FragID:  h.FragID,
			Score:   h.Score,
			Link:    h.Link,
			Content: h.Content,
		}
	}
	return out
}

func (h *RAGHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	topK := 0
	if raw := q.Get("topK"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, domain.ErrInvalidTopK.Message)
			return
		}
		topK = parsed
	}

	hits, err := h.svc.Search(r.Context(), q.Get("q"), topK)
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, hitsToResponse(hits))
}

func (h *RAGHandler) QA(w http.ResponseWriter, r *http.Request) {
	var req QARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.Answer(r.Context(), req.Question)
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, QAResponse{
		Answer:  answer.Answer,
		Sources: hitsToResponse(answer.Sources),
	})
}
