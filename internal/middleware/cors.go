package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
)

// CORSConfig builds the CORS policy from CORS_ORIGINS (comma separated).
// The portal serves its own frontend, so cross-origin callers are opt-in
// only; with nothing configured the browser default (same-origin) applies.
func CORSConfig() cors.Config {
	config := cors.DefaultConfig()

	var origins []string
	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if env := strings.ToLower(os.Getenv("ENVIRONMENT")); env == "development" || env == "dev" {
		origins = append(origins, "http://localhost:3000", "http://localhost:8000")
	}
	if len(origins) == 0 {
		origins = []string{"https://example.invalid"}
	}

	config.AllowOrigins = origins
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.MaxAge = 12 * time.Hour
	return config
}
