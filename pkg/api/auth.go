package api

import (
	"context"
	"net/http"
	"strings"

	"prefroute/pkg/user"
)

type contextKey int

const tokenContextKey contextKey = 0

// requireAuth rejects requests whose bearer token is missing or unknown to
// store before handler runs, and stashes the token in the request context
// for handler to look up. The teacher's surface has no accounts at all, so
// this middleware has no direct precedent there — it follows the same
// wrap-a-handler shape as withMiddleware, just wrapped one layer further out.
func requireAuth(handler http.HandlerFunc, store *user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		if _, err := store.Preferences(token); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		ctx := context.WithValue(r.Context(), tokenContextKey, token)
		handler(w, r.WithContext(ctx))
	}
}

// extractToken reads the raw token from the Authorization header. The
// header carries the token value directly (no "Bearer " scheme prefix),
// per the wire contract's `Authorization: <token>` format.
func extractToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Authorization"))
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
