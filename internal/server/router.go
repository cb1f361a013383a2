package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/noterag/noterag/internal/api"
	"github.com/noterag/noterag/internal/api/handlers"
	"github.com/noterag/noterag/internal/api/middleware"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	NoteHandler *handlers.NoteHandler
	RAGHandler  *handlers.RAGHandler
	Logger      *zap.Logger

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Use(middleware.MaxBodyBytes(maxBodyBytes))

		r.Route("/note", func(r chi.Router) {
			r.Post("/", cfg.NoteHandler.Create)
			r.Get("/list", cfg.NoteHandler.List)
			r.Get("/trash", cfg.NoteHandler.Trash)
			r.Get("/search", cfg.NoteHandler.Search)
			r.Get("/{id}", cfg.NoteHandler.Get)
			r.Put("/{id}", cfg.NoteHandler.Update)
			r.Delete("/{id}", cfg.NoteHandler.Delete)
			r.Post("/{id}/restore", cfg.NoteHandler.Restore)
			r.Delete("/{id}/purge", cfg.NoteHandler.Purge)
		})

		r.Route("/rag", func(r chi.Router) {
			r.Get("/search", cfg.RAGHandler.Search)
			r.Post("/qa", cfg.RAGHandler.QA)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
