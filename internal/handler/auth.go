package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/pavelanni/exitsurvey/internal/auth"
	appI18n "github.com/pavelanni/exitsurvey/internal/i18n"
	"github.com/pavelanni/exitsurvey/internal/model"
)

const sessionCookieName = "session"

type loginRequest struct {
	Role     model.Role `json:"role"`
	Identity string     `json:"identity"`
	Password string     `json:"password"`
}

type sessionResponse struct {
	Role    model.Role    `json:"role"`
	Session model.Session `json:"session"`
	Token   string        `json:"token,omitempty"`
}

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.path("/")
	}
	return "/"
}

// requireAuth is middleware that resolves the session token into a session.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.Gate.Current(r.Context(), sessionToken(r))
		if err != nil {
			if !errors.Is(err, auth.ErrNoSession) {
				slog.Error("failed to get auth session", "error", err)
			}
			h.writeError(w, r, err)
			return
		}
		ctx := model.ContextWithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that checks the session has one of the allowed roles.
func requireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := model.SessionFromContext(r.Context())
			if sess == nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, errorResponse{Error: appI18n.T(r.Context(), "ErrNotLoggedIn")})
				return
			}
			for _, role := range allowed {
				if sess.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, errorResponse{Error: appI18n.T(r.Context(), "ErrForbidden")})
		})
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, appI18n.T(r.Context(), "ErrBadRequest"))
		return
	}

	token, sess, err := h.Gate.Login(r.Context(), req.Role, strings.TrimSpace(req.Identity), req.Password)
	switch {
	case errors.Is(err, auth.ErrUnknownIdentity):
		h.respondError(w, r, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrInvalidRollNumber"))
		return
	case errors.Is(err, auth.ErrBadCredential) && req.Role == model.RoleAdmin:
		h.respondError(w, r, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrInvalidAdminCredentials"))
		return
	case errors.Is(err, auth.ErrBadCredential):
		h.respondError(w, r, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrInvalidPassword"))
		return
	case err != nil:
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	render.JSON(w, r, sessionResponse{Role: sess.Role(), Session: sess, Token: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Gate.Logout(r.Context(), sessionToken(r)); err != nil {
		slog.Warn("failed to delete auth session", "error", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := model.SessionFromContext(r.Context())
	render.JSON(w, r, sessionResponse{Role: sess.Role(), Session: sess})
}
