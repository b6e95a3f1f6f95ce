package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"surveystudio/internal/model"
	"surveystudio/internal/service"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionResolver turns a bearer token into a stored session
type SessionResolver interface {
	Session(ctx context.Context, token string) (*model.Session, error)
}

// AuthMiddleware provides session authentication and route guards
type AuthMiddleware struct {
	sessions SessionResolver
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireSession resolves the session JWT from the Authorization header,
// or the token query param for WebSocket upgrades
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		session, err := m.sessions.Session(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// Require admits only sessions allowed into partition p. It must run
// after RequireSession.
func (m *AuthMiddleware) Require(p service.Partition) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r.Context())
			if service.Allow(session, p) {
				next.ServeHTTP(w, r)
				return
			}
			switch {
			case session == nil:
				writeError(w, http.StatusUnauthorized, "unauthorized")
			case session.IsBanned:
				writeError(w, http.StatusForbidden, "account banned")
			default:
				writeError(w, http.StatusForbidden, "forbidden")
			}
		})
	}
}

// GetSession extracts the session from context
func GetSession(ctx context.Context) *model.Session {
	if v, ok := ctx.Value(SessionKey).(*model.Session); ok {
		return v
	}
	return nil
}

// WithSession returns ctx carrying session
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
