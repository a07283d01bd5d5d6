package app

import "net/http"

// SecurityHeaders wraps an http.Handler to set baseline security headers on
// all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Starter pages should never be embedded.
		w.Header().Set("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing.
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Avoid leaking full URLs to third parties (Stripe redirects).
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
