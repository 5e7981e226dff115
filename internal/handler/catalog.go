package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/service"
)

// CatalogHandler serves tags and ingredients. Both are read-only and
// unpaginated.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func int64Param(r *http.Request, resource string) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NotFound(resource, raw)
	}
	return id, nil
}

// HTTP: GET /api/tags/
func (h *CatalogHandler) HandleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.Tags(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HTTP: GET /api/tags/{id}/
func (h *CatalogHandler) HandleTag(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "tag")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tag, err := h.catalog.Tag(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// HandleIngredients searches by name prefix, case-insensitively.
//
// HTTP: GET /api/ingredients/?name=fl
func (h *CatalogHandler) HandleIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.Ingredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// HTTP: GET /api/ingredients/{id}/
func (h *CatalogHandler) HandleIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "ingredient")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ing, err := h.catalog.Ingredient(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}
