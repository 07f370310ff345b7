package customer

import (
	"context"
	"net/http"

	"BookShelf/pkg/kit"
)

type ctxKey string

const (
	sessionKey  ctxKey = "session"
	usernameKey ctxKey = "username"
)

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// UsernameFromContext returns the authenticated username set by RequireToken.
func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok
}

// WithSession attaches the cookie-bound session to every request on the
// subtree, creating one when the client has none yet.
func WithSession(store *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := store.Ensure(w, r)
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireToken gates the authenticated subtree. No session or no bound token
// is 401; a token that fails verification (signature, expiry, malformed) is
// 403. On success the token's username goes into the request context.
func RequireToken(jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || sess.Token == "" {
				kit.WriteMessage(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := jwt.Parse(sess.Token)
			if err != nil || claims.Username == "" {
				kit.WriteMessage(w, r, http.StatusForbidden, "Forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
