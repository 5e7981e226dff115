package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/service"
)

// RelationHandler serves the toggle endpoints. One pair of handler
// constructors covers all three kinds; the route decides the kind.
//
//	POST|DELETE /api/recipes/{id}/favorite/
//	POST|DELETE /api/recipes/{id}/shopping_cart/
//	POST|DELETE /api/users/{id}/subscribe/
type RelationHandler struct {
	relations *service.RelationService
	logger    *slog.Logger
}

func NewRelationHandler(relations *service.RelationService, logger *slog.Logger) *RelationHandler {
	return &RelationHandler{relations: relations, logger: logger}
}

// HandleAdd responds 201 with the recipe summary, or the author summary for
// subscriptions. A repeated add is 409, a self-subscription 400.
func (h *RelationHandler) HandleAdd(kind model.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipesLimit, err := queryInt(r, "recipes_limit")
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}

		result, err := h.relations.ToggleAdd(r.Context(), kind, viewerID(r), chi.URLParam(r, "id"), recipesLimit)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, result.Payload())
	}
}

// HandleRemove responds 204, or 404 when the pair was not stored.
func (h *RelationHandler) HandleRemove(kind model.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.relations.ToggleRemove(r.Context(), kind, viewerID(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleSubscriptions lists the authors the caller follows.
//
// HTTP: GET /api/users/subscriptions/?page=1&limit=6&recipes_limit=3
func (h *RelationHandler) HandleSubscriptions(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	recipesLimit, err := queryInt(r, "recipes_limit")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.relations.Subscriptions(r.Context(), viewerID(r), recipesLimit, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
