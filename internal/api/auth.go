package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dawntoweb/agency/internal/auth"
)

// SessionCookie carries the opaque login token.
const SessionCookie = "agency_session"

type sessionKey struct{}

// RequireAuth gates admin operations: requests without a valid, unexpired
// session are rejected before any store call.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil {
				httpError(w, http.StatusUnauthorized, "authentication_error", "authentication required")
				return
			}
			sess, ok := svc.Session(c.Value)
			if !ok {
				httpError(w, http.StatusUnauthorized, "authentication_error", "session expired or invalid")
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(r *http.Request) auth.Session {
	sess, _ := r.Context().Value(sessionKey{}).(auth.Session)
	return sess
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func handleLogin(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Username == "" || req.Password == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "username and password required")
			return
		}

		user, token, err := deps.Auth.Login(req.Username, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid credentials")
			return
		}
		if err != nil {
			deps.Logger.Error("login failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "login failed")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, map[string]any{
			"success": true,
			"user":    userInfo{ID: user.ID, Username: user.Username, Email: user.Email},
		})
	}
}

func handleLogout(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(SessionCookie); err == nil {
			deps.Auth.Logout(c.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
		writeJSON(w, map[string]any{"success": true})
	}
}

func handleMe(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		user, err := deps.Store.GetUser(sess.UserID)
		if err != nil {
			storeError(w, err, "user")
			return
		}
		writeJSON(w, userInfo{ID: user.ID, Username: user.Username, Email: user.Email})
	}
}
