package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	API       APIConfig
	Pages     PagesConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// APIConfig описывает внешний API подач и QuickRead
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
}

type PagesConfig struct {
	HomeLookbackDays int
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int

	// TrustedProxies адреса и CIDR прокси, чьим X-Forwarded-For можно верить
	TrustedProxies []string
}

type SecurityConfig struct {
	FrameAncestors []string
	AuthEnabled    bool
	AuthToken      string
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	baseURL, err := parseBaseURL(getEnv("API_BASE_URL", getEnv("NEXT_PUBLIC_API_BASE", "http://127.0.0.1:8000")))
	if err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}

	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	if apiTimeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive")
	}

	maxBodyMB, err := strconv.Atoi(getEnv("API_MAX_BODY_MB", "4"))
	if err != nil || maxBodyMB <= 0 {
		return nil, fmt.Errorf("invalid API_MAX_BODY_MB: %q", os.Getenv("API_MAX_BODY_MB"))
	}

	lookbackDays, err := strconv.Atoi(getEnv("HOME_LOOKBACK_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOME_LOOKBACK_DAYS: %w", err)
	}
	if lookbackDays < 1 || lookbackDays > 365 {
		return nil, fmt.Errorf("HOME_LOOKBACK_DAYS must be between 1 and 365, got %d", lookbackDays)
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    apiTimeout + 10*time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		API: APIConfig{
			BaseURL:      baseURL,
			Timeout:      apiTimeout,
			MaxBodyBytes: int64(maxBodyMB) * 1024 * 1024,
		},
		Pages: PagesConfig{
			HomeLookbackDays: lookbackDays,
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:            rps,
			Burst:          burst,
			TrustedProxies: splitCSV(getEnv("RATE_LIMIT_TRUSTED_PROXIES", "")),
		},
		Security: SecurityConfig{
			FrameAncestors: splitCSV(getEnv("FRAME_ANCESTORS", "'self'")),
			AuthEnabled:    getEnvBool("AUTH_ENABLED", false),
			AuthToken:      getEnv("AUTH_BEARER_TOKEN", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0) {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when RATE_LIMIT_ENABLED=true")
	}

	for _, proxy := range cfg.RateLimit.TrustedProxies {
		if err := validateProxy(proxy); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_TRUSTED_PROXIES: %w", err)
		}
	}

	if cfg.Security.AuthEnabled && cfg.Security.AuthToken == "" {
		return nil, fmt.Errorf("AUTH_BEARER_TOKEN is required when AUTH_ENABLED=true")
	}

	return cfg, nil
}

// parseBaseURL проверяет, что адрес API абсолютный http(s) URL, и убирает завершающий слэш
func parseBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("host is empty")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// validateProxy принимает IP адрес или CIDR
func validateProxy(raw string) error {
	if strings.Contains(raw, "/") {
		_, err := netip.ParsePrefix(raw)
		return err
	}
	_, err := netip.ParseAddr(raw)
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
