package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
)

// CORSHandler builds the CORS middleware wrapping every route. Allowed
// origins come from CORS_ORIGINS (comma-separated); with no env var set
// it falls back to the local dev origin, matching cors-middleware.go's
// hardcoded localhost/preview-deploy allowlist generalized to be
// configurable (SPEC_FULL.md §2).
func CORSHandler() func(http.Handler) http.Handler {
	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler
}
