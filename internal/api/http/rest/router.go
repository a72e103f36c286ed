package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"notes-store/internal/api/http/middleware"
	"notes-store/internal/api/http/response"
	"notes-store/internal/config"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/tmc/grpc-websocket-proxy/wsproxy"
)

// RouterOption дополнительные маршруты и middleware
type RouterOption func(*routerOptions)

type routerOptions struct {
	metricsHandler http.Handler
	httpMetrics    *middleware.HTTPMetrics
}

// WithMetricsHandler публикует метрики Prometheus на /metrics
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(o *routerOptions) { o.metricsHandler = h }
}

// WithHTTPMetrics считает HTTP запросы
func WithHTTPMetrics(m *middleware.HTTPMetrics) RouterOption {
	return func(o *routerOptions) { o.httpMetrics = m }
}

// NewRouter собирает HTTP обработчик REST API с middleware
func NewRouter(h *Handler, cfg *config.ConfigHTTP, opts ...RouterOption) (http.Handler, error) {
	o := &routerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	notesMux := runtime.NewServeMux(
		runtime.WithRoutingErrorHandler(routingError),
	)

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodPost, "/notes", h.CreateNote},
		{http.MethodGet, "/notes", h.ListNotes},
		{http.MethodGet, "/notes/{id}", h.GetNote},
		{http.MethodPatch, "/notes/{id}", h.UpdateNote},
		{http.MethodDelete, "/notes/bulk", h.DeleteNotes},
	}
	for _, rt := range routes {
		if err := notesMux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", notesMux)
	mux.HandleFunc("/notes/events", h.StreamEvents)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if o.metricsHandler != nil {
		mux.Handle("/metrics", o.metricsHandler)
	}

	// Порядок middleware (от внутреннего к внешнему):
	// Rate Limiting → Metrics → Logging → CORS → WebSocket Proxy
	var handler http.Handler = mux
	handler = middleware.RateLimit(handler, cfg.RateLimitRPS, cfg.RateLimitBurst)
	if o.httpMetrics != nil {
		handler = o.httpMetrics.Middleware(handler)
	}
	handler = middleware.Logging(handler)
	handler = setupCORS(cfg).Handler(handler)
	// WebSocket proxy должен быть самым внешним, чтобы корректно обрабатывать upgrade
	handler = wsproxy.WebsocketProxy(handler)

	logrus.WithField("origins", cfg.CORSAllowedOrigins).Info("CORS enabled")
	return handler, nil
}

// routingError отвечает на неизвестные маршруты в том же формате, что и остальные ошибки
func routingError(_ context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, r *http.Request, status int) {
	response.Error(w, status, fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigHTTP) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}
