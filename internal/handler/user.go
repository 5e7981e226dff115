package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/foodgram/internal/service"
	"github.com/sakif/foodgram/internal/validation"
)

// UserHandler serves registration and profiles under /api/users/.
type UserHandler struct {
	users    *service.UserService
	auth     *service.AuthService
	validate *validation.Validator
	logger   *slog.Logger
}

func NewUserHandler(
	users *service.UserService,
	authSvc *service.AuthService,
	validate *validation.Validator,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:    users,
		auth:     authSvc,
		validate: validate,
		logger:   logger,
	}
}

// HandleRegister creates a password account and returns its profile.
//
// HTTP: POST /api/users/
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user.View(false))
}

// HTTP: GET /api/users/?page=1&limit=6
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	page, err := h.users.List(r.Context(), viewerID(r), limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HTTP: GET /api/users/{id}/
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.users.Get(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HTTP: GET /api/users/me/
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id := viewerID(r)
	view, err := h.users.Get(r.Context(), id, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// HTTP: POST /api/users/set_password/
func (h *UserHandler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.auth.SetPassword(r.Context(), viewerID(r), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
