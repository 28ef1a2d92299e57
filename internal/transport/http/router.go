package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quiz-review-service/internal/app"
	"quiz-review-service/internal/domain"
)

const defaultMaxBodyBytes = 8 << 20

// RouterOptions tunes the HTTP surface.
type RouterOptions struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter mounts the review API and the websocket endpoint.
func NewRouter(service *app.ReviewService, opts RouterOptions) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	h := &reviewHandler{service: service, maxBody: opts.MaxBodyBytes}
	ws := NewWSHandler(service, opts.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.Timeout(30 * time.Second))
		v1.Post("/extract", h.extract)
		v1.Post("/reviews", h.ingest)
		v1.Get("/reviews/{paperID}", h.get)
	})
	return r
}

type reviewHandler struct {
	service *app.ReviewService
	maxBody int64
}

type paperResponse struct {
	Paper domain.QuestionPaper `json:"paper"`
	Tally domain.Tally         `json:"tally"`
}

type storedResponse struct {
	domain.StoredPaper
	Tally domain.Tally `json:"tally"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *reviewHandler) extract(w http.ResponseWriter, r *http.Request) {
	markup, ok := h.readBody(w, r)
	if !ok {
		return
	}
	paper, err := h.service.Extract(markup)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paperResponse{Paper: paper, Tally: paper.Tally()})
}

func (h *reviewHandler) ingest(w http.ResponseWriter, r *http.Request) {
	markup, ok := h.readBody(w, r)
	if !ok {
		return
	}
	stored, err := h.service.Ingest(r.Context(), markup)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/reviews/"+stored.ID)
	writeJSON(w, http.StatusCreated, storedResponse{StoredPaper: stored, Tally: stored.Paper.Tally()})
}

func (h *reviewHandler) get(w http.ResponseWriter, r *http.Request) {
	stored, err := h.service.Get(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storedResponse{StoredPaper: stored, Tally: stored.Paper.Tally()})
}

func (h *reviewHandler) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorPayload{Message: "review page too large"})
			return "", false
		}
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "could not read request body"})
		return "", false
	}
	return string(body), true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptySource):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrPaperNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	default:
		log.Printf("review request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
