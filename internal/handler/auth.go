package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/service"
	"github.com/sakif/foodgram/internal/validation"
)

const stateCookie = "oauth_state"

// AuthHandler issues and clears session tokens.
//
//   - HandleLogin          → email/password, token in body and cookie
//   - HandleLogout         → clear the cookie
//   - HandleGitHubLogin    → redirect to GitHub's consent page
//   - HandleGitHubCallback → exchange the code, upsert the user, set the cookie
//
// github is nil when OAuth is not configured; the GitHub routes are then
// not mounted.
type AuthHandler struct {
	auth     *service.AuthService
	tokens   *auth.TokenService
	github   *auth.GitHubProvider
	validate *validation.Validator
	secure   bool
	logger   *slog.Logger
}

func NewAuthHandler(
	authSvc *service.AuthService,
	tokens *auth.TokenService,
	github *auth.GitHubProvider,
	validate *validation.Validator,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		tokens:   tokens,
		github:   github,
		validate: validate,
		secure:   secureCookies,
		logger:   logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

// setTokenCookie stores the JWT in an HttpOnly cookie. A negative maxAge
// deletes it.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// HTTP: POST /api/auth/token/login/
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token, int(h.tokens.TTL().Seconds()))
	writeJSON(w, http.StatusOK, loginResponse{AuthToken: res.Token})
}

// HandleLogout only clears the cookie. Tokens are stateless and stay valid
// until they expire.
//
// HTTP: POST /api/auth/token/logout/
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	h.setTokenCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGitHubLogin stores a random state in a short-lived cookie and
// redirects to GitHub.
//
// HTTP: GET /api/auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback checks the state, exchanges the code and signs the
// user in.
//
// HTTP: GET /api/auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid OAuth state"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "missing OAuth code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: "authentication failed"})
		return
	}

	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token, int(h.tokens.TTL().Seconds()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
