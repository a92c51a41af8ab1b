package middleware

import (
	"net/http"

	"golang.org/x/sync/semaphore"
)

// Serialize runs requests through next one at a time, as bounded by sem.
// The session behind the handlers is not safe for concurrent use. A request
// whose context ends while it waits for its turn is answered with 503 and
// never reaches next.
func Serialize(sem *semaphore.Weighted) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sem.Acquire(r.Context(), 1); err != nil {
				http.Error(w, "request cancelled while waiting", http.StatusServiceUnavailable)
				return
			}
			defer sem.Release(1)
			next.ServeHTTP(w, r)
		})
	}
}
