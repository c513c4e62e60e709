package middleware

import (
	"context"
	"net/http"

	"github.com/kevinaaaquil/bookstore/backend/models"
)

type contextKey string

const userIDKey contextKey = "userID"

// Guard is implemented by *service.Guard.
type Guard interface {
	RequireAuthenticated(header string) (string, error)
	RequireAdmin(ctx context.Context, userID string) (*models.User, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// user id in the request context.
func Auth(g Guard) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := g.RequireAuthenticated(r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin must run after Auth. The role is looked up on every request.
func Admin(g Guard) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			if _, err := g.RequireAdmin(r.Context(), userID); err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
