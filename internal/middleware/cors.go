package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS 生成允许指定来源访问的跨域中间件，包含 * 时允许任意来源。
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		value := strings.TrimSpace(origin)
		if value == "" {
			continue
		}
		if value == "*" {
			allowAll = true
		}
		origins = append(origins, value)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-File-Name", "X-File-Extension", "X-File-Size"},
		AllowCredentials: !allowAll,
		MaxAge:           600,
	})
}
