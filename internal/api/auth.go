package api

import (
	"crypto/subtle"
	"net/http"
)

const tokenHeader = "x-api-token"

// TokenAuth guards a route group with the shared API token. The compare is
// constant-time so the token length and prefix do not leak through timing.
func TokenAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(tokenHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing API token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
