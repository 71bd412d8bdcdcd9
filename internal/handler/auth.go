package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bookserver/bookserver/internal/auth"
	"github.com/bookserver/bookserver/internal/handler/dto"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/session"
)

// SessionManager is the session lifecycle surface the auth handlers need.
type SessionManager interface {
	Login(ctx context.Context, input session.LoginInput) (*model.Session, *model.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles login, logout, and the rendered login page.
type AuthHandler struct {
	sessions     SessionManager
	logger       *slog.Logger
	tmpl         *template.Template
	cookieName   string
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions SessionManager, logger *slog.Logger, tmpl *template.Template, cookieName string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		logger:       logger,
		tmpl:         tmpl,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
	}
}

// loginPageData is the template context for the login page.
type loginPageData struct {
	Error string
}

// LoginPage renders the login form.
// GET /auth/login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, loginPageData{})
}

// Login authenticates credentials from a browser form or a JSON body
// and sets the session cookie.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	isForm := isFormRequest(r)

	username, password, ok := h.readCredentials(r, isForm)
	if !ok {
		if isForm {
			h.renderLogin(w, http.StatusBadRequest, loginPageData{Error: "Please enter a username and password."})
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	sess, user, err := h.sessions.Login(r.Context(), session.LoginInput{
		Username:  username,
		Password:  password,
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.logger.Warn("login failed",
				slog.String("ip", r.RemoteAddr),
			)
			if isForm {
				h.renderLogin(w, http.StatusUnauthorized, loginPageData{Error: "Invalid username or password."})
				return
			}
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		h.logger.Error("login error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.setSessionCookie(w, sess.ID, sess.ExpiresAt)

	h.logger.Info("login successful",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("ip", r.RemoteAddr),
	)

	if isForm {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLoginResponse(sess, user))
}

// Logout revokes the current session and clears the cookie.
// Safe to call without a valid session.
// POST /auth/logout (GET is also routed for the browser flow)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout error", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			return
		}
	}

	h.clearSessionCookie(w)

	if isFormRequest(r) || r.Method == http.MethodGet {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user.
// GET /api/v1/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.ToUserResponse(p.User))
}

// readCredentials extracts the username and password from the form fields
// (loginuser/loginpw, matching the rendered page) or the JSON body.
func (h *AuthHandler) readCredentials(r *http.Request, isForm bool) (username, password string, ok bool) {
	if isForm {
		if err := r.ParseForm(); err != nil {
			return "", "", false
		}
		username = strings.TrimSpace(r.PostFormValue("loginuser"))
		password = r.PostFormValue("loginpw")
		return username, password, username != "" && password != ""
	}

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "", false
	}
	username = strings.TrimSpace(req.Username)
	return username, req.Password, username != "" && req.Password != ""
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, data loginPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, "login.html", data); err != nil {
		h.logger.Error("render login page", "error", err)
	}
}

// isFormRequest reports whether the request came from the rendered page
// rather than an API client.
func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
