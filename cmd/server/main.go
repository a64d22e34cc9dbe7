package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	// Application
	"github.com/dreschagin/ipo-quickread/internal/application/usecase"

	// Domain
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"

	// Infrastructure
	"github.com/dreschagin/ipo-quickread/internal/infrastructure/observability/metrics"
	"github.com/dreschagin/ipo-quickread/internal/infrastructure/quickreadapi"

	// Interfaces
	httpInterface "github.com/dreschagin/ipo-quickread/internal/interfaces/http"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/handler"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/middleware"

	// Shared
	"github.com/dreschagin/ipo-quickread/pkg/config"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

func main() {
	// 1. Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализируем logger
	log := logger.NewWithOptions(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	log.Info("Starting IPO QuickRead", "api_base_url", cfg.API.BaseURL)

	// 3. Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// 4. Dependency Injection - Infrastructure Layer

	filingsAPI, err := quickreadapi.NewClient(quickreadapi.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		MaxBodyBytes: cfg.API.MaxBodyBytes,
	}, appMetrics, log)
	if err != nil {
		log.Error("Failed to initialize filings API client", err)
		os.Exit(1)
	}

	// 5. Dependency Injection - Application Layer (Use Cases)

	listFilingsUC := usecase.NewListFilingsUseCase(filingsAPI, log)
	getQuickReadUC := usecase.NewGetQuickReadUseCase(filingsAPI, log)

	// 6. Dependency Injection - Interfaces Layer (HTTP Handlers)

	homeLookback, err := valueobject.NewLookback(cfg.Pages.HomeLookbackDays)
	if err != nil {
		log.Error("Invalid home lookback window", err)
		os.Exit(1)
	}

	filingsHandler := handler.NewFilingsHandler(listFilingsUC, homeLookback, appMetrics, log)
	quickReadHandler := handler.NewQuickReadHandler(getQuickReadUC, appMetrics, log)

	// 7. Запускаем фоновые процессы

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		log.Error("Invalid trusted proxies", err)
		os.Exit(1)
	}

	var rateLimiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go rateLimiter.Run(ctx)
		log.Info("Rate limiter enabled", "rps", cfg.RateLimit.RPS, "burst", cfg.RateLimit.Burst)
	}

	// Router
	router := httpInterface.NewRouter(
		filingsHandler,
		quickReadHandler,
		rateLimiter,
		appMetrics,
		httpInterface.RouterConfig{
			Security:       cfg.Security,
			TrustedProxies: trustedProxies,
			MetricsEnabled: cfg.Metrics.Enabled,
		},
		log,
	)

	// 8. Настраиваем HTTP сервер

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(log.Slog().Handler(), slog.LevelWarn),
	}

	// Канал для получения сигналов ОС
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Запускаем сервер в отдельной goroutine
	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		log.Info("QuickRead available at http://localhost:" + cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 9. Ожидаем сигнал для graceful shutdown

	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped gracefully")
}
