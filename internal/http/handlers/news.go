package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/globalwire/newspulse/internal/errors"
)

// ListNews — GET /news?category=&page=&limit=.
// Отдаёт только опубликованные статьи, свежие первыми.
func (h *Handlers) ListNews(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)

	stories, err := h.svc.ListStories(r.Context(), category, page, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stories)
}

// NewsByID — GET /news/{id}.
func (h *Handlers) NewsByID(w http.ResponseWriter, r *http.Request) {
	story, err := h.svc.Story(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, story)
}

// SearchNews — GET /search?q=&category=&page=&limit=.
// Подстрочный поиск по свежим опубликованным статьям.
func (h *Handlers) SearchNews(w http.ResponseWriter, r *http.Request) {
	stories, err := h.svc.SearchStories(r.Context(),
		r.URL.Query().Get("q"),
		r.URL.Query().Get("category"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 0),
	)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stories)
}
