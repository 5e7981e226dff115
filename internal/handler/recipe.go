package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/service"
	"github.com/sakif/foodgram/internal/shopping"
	"github.com/sakif/foodgram/internal/validation"
)

// RecipeHandler serves /api/recipes/ and the shopping list download.
type RecipeHandler struct {
	recipes  *service.RecipeService
	shopping *service.ShoppingService
	validate *validation.Validator
	logger   *slog.Logger
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	shopping *service.ShoppingService,
	validate *validation.Validator,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		shopping: shopping,
		validate: validate,
		logger:   logger,
	}
}

// viewerID is the authenticated user's id, or "" for anonymous requests.
func viewerID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// parseRecipeFilter reads ?author=&tags=&is_favorited=&is_in_shopping_cart=.
// tags may repeat; a recipe matches when it has any of them.
func parseRecipeFilter(r *http.Request) (model.RecipeFilter, error) {
	q := r.URL.Query()
	var f model.RecipeFilter

	if author := q.Get("author"); author != "" {
		f.AuthorID = &author
	}
	for _, slug := range q["tags"] {
		if slug != "" {
			f.TagSlugs = append(f.TagSlugs, slug)
		}
	}

	var err error
	if f.Favorited, err = queryBool(r, "is_favorited"); err != nil {
		return f, err
	}
	if f.InCart, err = queryBool(r, "is_in_shopping_cart"); err != nil {
		return f, err
	}
	return f, nil
}

// HandleList returns a page of recipes.
//
// HTTP: GET /api/recipes/?page=1&limit=6&author=<id>&tags=breakfast&is_favorited=1
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecipeFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.recipes.List(r.Context(), viewerID(r), filter, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HTTP: GET /api/recipes/{id}/
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.recipes.Get(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HTTP: POST /api/recipes/
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	view, err := h.recipes.Create(r.Context(), viewerID(r), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleUpdate replaces the recipe's fields, tags and ingredients.
//
// HTTP: PATCH /api/recipes/{id}/
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	view, err := h.recipes.Update(r.Context(), chi.URLParam(r, "id"), viewerID(r), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HTTP: DELETE /api/recipes/{id}/
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.recipes.Delete(r.Context(), chi.URLParam(r, "id"), viewerID(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) decodeInput(w http.ResponseWriter, r *http.Request) (model.RecipeInput, bool) {
	var in model.RecipeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return in, false
	}
	if err := h.validate.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return in, false
	}
	return in, true
}

// HandleDownloadShoppingCart sends the merged shopping list as a text
// attachment.
//
// HTTP: GET /api/recipes/download_shopping_cart/
func (h *RecipeHandler) HandleDownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	body, err := h.shopping.Export(r.Context(), viewerID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+shopping.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
