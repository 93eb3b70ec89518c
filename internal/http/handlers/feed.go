package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/globalwire/newspulse/internal/errors"
	"github.com/globalwire/newspulse/internal/models"
)

// feedResponse — конверт выдачи агрегатора.
type feedResponse struct {
	Articles []models.Article `json:"articles"`
	Provider string           `json:"provider"`
	Cached   bool             `json:"cached,omitempty"`
}

// Feed — GET /feed/{category}?page=N&force=1.
// force=1 обходит кэш (результат всё равно кэшируется).
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	page := queryInt(r, "page", 1)
	force := queryBool(r, "force")

	articles, err := h.svc.FetchCategory(r.Context(), category, page, force)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Articles: articles,
		Provider: h.svc.ActiveProvider(),
	})
}

// FeedCached — GET /feed/{category}/cached.
// Отдаёт только то, что уже лежит в кэше; апстрим не трогает.
func (h *Handlers) FeedCached(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	articles, ok := h.svc.CachedCategory(category)
	if articles == nil {
		articles = []models.Article{}
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Articles: articles,
		Provider: h.svc.ActiveProvider(),
		Cached:   ok,
	})
}

// FeedSearch — GET /feed/search?q=...&category=...
func (h *Handlers) FeedSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	articles, err := h.svc.Search(r.Context(), query, category)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Articles: articles,
		Provider: h.svc.ActiveProvider(),
	})
}

// ClearCache — POST /feed/cache/clear (только админ).
// Сбрасывает кэш выборок и липкое состояние провайдеров.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCache()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.svc.ActiveProvider(),
	})
}
