package api

import (
	"net/http"

	"ossbridge/internal/config"
	obmiddleware "ossbridge/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter 构建 HTTP 路由，集中注册所有对外服务的端点。
// auth 为 nil 或配置关闭鉴权时，业务路由不做鉴权（开发模式）。
func NewRouter(cfg *config.Config, logger zerolog.Logger, fileHandler *FileHandler, auth *obmiddleware.Authenticator) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(obmiddleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(obmiddleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(obmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(obmiddleware.Metrics())

	// 健康检查不需要鉴权
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus 指标端点
	r.Handle("/metrics", promhttp.Handler())

	if fileHandler != nil {
		if cfg.AuthEnabled && auth != nil {
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware)
				fileHandler.RegisterRoutes(r)
			})
		} else {
			fileHandler.RegisterRoutes(r)
		}
	}

	return r
}
