package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// UserIDHeader carries the authenticated user's numeric ID, set by the
// authenticating gateway in front of the service.
const UserIDHeader = "X-User-ID"

const userIDKey contextKey = "user-id"

// RequireUser rejects requests without a positive numeric X-User-ID with 401
// and stores the ID in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(UserIDHeader)), 10, 64)

		if err != nil || userID <= 0 {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication is required.")

			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the user ID stored by RequireUser.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)

	return id, ok
}
