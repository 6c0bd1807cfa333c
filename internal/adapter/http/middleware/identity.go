package middleware

import (
	"context"
	"net/http"
	"strconv"
)

// ContextKey is the type for context keys.
type ContextKey string

// UserIDContextKey is the context key for the authenticated user ID.
const UserIDContextKey ContextKey = "user_id"

// userIDHeader carries the Telegram user ID resolved by the upstream
// auth gateway. The ledger trusts it; validating the Mini App init
// data is the gateway's job.
const userIDHeader = "X-User-Id"

// Identity extracts the authenticated user ID from the trusted header
// and stores it in the request context. Requests without a valid user
// ID are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(userIDHeader)
		if raw == "" {
			http.Error(w, "missing user identity", http.StatusUnauthorized)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, "invalid user identity", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok
}
