package middleware

import (
	"net/http"
	"strings"
)

// FrameAncestors ограничивает сайты, которые могут встраивать страницу в iframe.
// Пустой список запрещает встраивание
func FrameAncestors(origins []string) func(http.Handler) http.Handler {
	policy := "frame-ancestors 'none'"
	if len(origins) > 0 {
		policy = "frame-ancestors " + strings.Join(origins, " ")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy", policy)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders базовые заголовки для всех HTML страниц
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
