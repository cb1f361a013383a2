package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/noterag/noterag/internal/api"
	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/pagination"
	"github.com/noterag/noterag/internal/service"
)

type NoteService interface {
	Create(ctx context.Context, input service.CreateNoteInput) (*domain.Note, error)
	Get(ctx context.Context, id int64) (*domain.Note, error)
	Update(ctx context.Context, id int64, update domain.NoteUpdate) (*domain.Note, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, size int) (*pagination.PageResult[*domain.Note], error)
	ListTrash(ctx context.Context, page, size int) (*pagination.PageResult[*domain.Note], error)
	Restore(ctx context.Context, id int64) (*domain.Note, error)
	Purge(ctx context.Context, id int64) error
	Search(ctx context.Context, q string) ([]*domain.Note, error)
}

type NoteHandler struct {
	svc NoteService
}

func NewNoteHandler(svc NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest is a partial update; absent fields keep their value.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type NoteResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type NoteListResponse struct {
	List  []*NoteResponse `json:"list"`
	Total int64           `json:"total"`
}

func noteToResponse(n *domain.Note) *NoteResponse {
	return &NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func notesToResponse(notes []*domain.Note) []*NoteResponse {
	out := make([]*NoteResponse, len(notes))
	for i, n := range notes {
		out[i] = noteToResponse(n)
	}
	return out
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.svc.Create(r.Context(), service.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.svc.Update(r.Context(), id, domain.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, nil)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := h.svc.List(r.Context(), page, size)
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, NoteListResponse{
		List:  notesToResponse(result.List),
		Total: result.Total,
	})
}

func (h *NoteHandler) Trash(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := h.svc.ListTrash(r.Context(), page, size)
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, NoteListResponse{
		List:  notesToResponse(result.List),
		Total: result.Total,
	})
}

func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.svc.Restore(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Purge(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, nil)
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, notesToResponse(notes))
}

// noteID parses the {id} route parameter, writing a 400 when it is malformed.
func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidNoteID.Message)
		return 0, false
	}
	return id, true
}

// pageParams reads page and size leniently; the service clamps them.
func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return page, size
}
