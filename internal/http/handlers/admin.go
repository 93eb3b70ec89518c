package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/globalwire/newspulse/internal/errors"
	"github.com/globalwire/newspulse/internal/models"
)

// Редакционные эндпойнты. Все маршруты ниже защищены RequireAdmin.

// CreateStory — POST /admin/news.
// Payload нормализуется сервисом: отсутствующие поля получают дефолты.
func (h *Handlers) CreateStory(w http.ResponseWriter, r *http.Request) {
	var story models.Story
	if err := decodeStrict(r, &story); err != nil {
		apierrors.WriteError(w, r, invalidArgument("bad payload"))
		return
	}

	created, err := h.svc.CreateStory(r.Context(), story)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateStory — PATCH /admin/news/{id}. Документ заменяется целиком,
// серверные таймстампы сохраняются хранилищем.
func (h *Handlers) UpdateStory(w http.ResponseWriter, r *http.Request) {
	var story models.Story
	if err := decodeStrict(r, &story); err != nil {
		apierrors.WriteError(w, r, invalidArgument("bad payload"))
		return
	}

	updated, err := h.svc.UpdateStory(r.Context(), chi.URLParam(r, "id"), story)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteStory — DELETE /admin/news/{id}.
func (h *Handlers) DeleteStory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStory(r.Context(), chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
