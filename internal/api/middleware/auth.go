package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/dartsync/internal/api/apierr"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/auth"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth resolves the request's token to a session. Tokens are scoped to one
// room, so a token for another room than the {id} path variable is refused.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			if id, ok := mux.Vars(r)["id"]; ok && model.RoomID(id) != session.RoomID {
				apierr.WriteError(w, model.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads a Bearer token, falling back to the token query
// parameter for EventSource and WebSocket clients that cannot set headers
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetSession returns the authenticated session or panics
func MustGetSession(ctx context.Context) *model.Session {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return session
}
