package http

import (
	"io/fs"
	"net/http"

	"github.com/dreschagin/ipo-quickread/internal/infrastructure/observability/metrics"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/handler"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/middleware"
	"github.com/dreschagin/ipo-quickread/pkg/config"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

// Router настраивает маршруты приложения
type Router struct {
	mux              *http.ServeMux
	filingsHandler   *handler.FilingsHandler
	quickReadHandler *handler.QuickReadHandler
	rateLimiter      *middleware.IPRateLimiter
	metrics          *metrics.Metrics
	cfg              RouterConfig
	logger           *logger.Logger
}

// RouterConfig настройки, влияющие на цепочку middleware
type RouterConfig struct {
	Security       config.SecurityConfig
	TrustedProxies middleware.TrustedProxies
	MetricsEnabled bool
}

// NewRouter создает новый router. rateLimiter может быть nil, если ограничение выключено
func NewRouter(
	filingsHandler *handler.FilingsHandler,
	quickReadHandler *handler.QuickReadHandler,
	rateLimiter *middleware.IPRateLimiter,
	metrics *metrics.Metrics,
	cfg RouterConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		filingsHandler:   filingsHandler,
		quickReadHandler: quickReadHandler,
		rateLimiter:      rateLimiter,
		metrics:          metrics,
		cfg:              cfg,
		logger:           logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	// Static assets are embedded into the binary.
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("failed to initialize embedded static assets: " + err.Error())
	}
	rt.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Health endpoints stay unauthenticated for the orchestrator.
	rt.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rt.mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if rt.cfg.MetricsEnabled {
		rt.mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.cfg.Security.AuthEnabled,
		BearerToken: rt.cfg.Security.AuthToken,
	}, rt.logger)

	// Страницы сайта можно встраивать только в себя, embed страницы - на разрешенные сайты
	sameOrigin := middleware.FrameAncestors([]string{"'self'"})
	embeddable := middleware.FrameAncestors(rt.cfg.Security.FrameAncestors)

	page := func(frame func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
		return middleware.SecurityHeaders(frame(authMiddleware(h)))
	}

	// Pages
	rt.mux.Handle("GET /{$}", page(sameOrigin, rt.filingsHandler.ShowHome))
	rt.mux.Handle("GET /embed", page(embeddable, rt.quickReadHandler.ShowQuickRead))
	rt.mux.Handle("GET /embed/filings", page(embeddable, rt.filingsHandler.ShowEmbedList))

	// Применяем middleware
	var handler http.Handler = rt.mux
	handler = middleware.Compression(handler)
	if rt.rateLimiter != nil {
		handler = middleware.RateLimit(rt.rateLimiter, rt.cfg.TrustedProxies, rt.metrics.RateLimitDropped.Inc)(handler)
	}
	handler = rt.metrics.Middleware(handler)
	handler = middleware.Logger(rt.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(rt.logger, rt.metrics.PanicsRecovered.Inc)(handler)

	return handler
}
