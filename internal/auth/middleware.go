package auth

import (
	"context"
	"net/http"

	"github.com/PotatoBoi2658/notesapp/internal/obs"
)

// Context keys for auth data
type contextKey string

const (
	userKey contextKey = "user"
)

// Middleware provides authentication middleware for HTTP handlers.
type Middleware struct {
	sessionService *SessionService
	userService    *UserService
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(sessionService *SessionService, userService *UserService) *Middleware {
	return &Middleware{
		sessionService: sessionService,
		userService:    userService,
	}
}

// resolve loads the authenticated user for the request, or nil.
func (m *Middleware) resolve(r *http.Request) *User {
	sessionID, err := GetFromRequest(r)
	if err != nil {
		return nil
	}

	userID, err := m.sessionService.Validate(r.Context(), sessionID)
	if err != nil {
		return nil
	}

	user, err := m.userService.GetByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

// withUser stores the user on the request context, tagging the request
// correlation with the user ID for log lines downstream.
func withUser(r *http.Request, user *User) *http.Request {
	ctx := context.WithValue(r.Context(), userKey, user)
	corr := obs.CorrelationFromContext(ctx)
	corr.UserID = user.ID
	ctx = obs.WithCorrelation(ctx, corr)
	return r.WithContext(ctx)
}

// RequireAuthWithRedirect requires a valid session and redirects browsers to
// the login page instead of returning a bare 401.
func (m *Middleware) RequireAuthWithRedirect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.resolve(r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

// OptionalAuth is middleware that adds user info to context if present.
// Does not require authentication - continues with or without a session.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.resolve(r)
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil if no user is authenticated.
func GetUser(ctx context.Context) *User {
	user, _ := ctx.Value(userKey).(*User)
	return user
}

// IsAuthenticated checks if the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}
