package quickreadapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dreschagin/ipo-quickread/internal/application/port"
	"github.com/dreschagin/ipo-quickread/internal/domain/entity"
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"
	"github.com/dreschagin/ipo-quickread/internal/infrastructure/observability/metrics"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

const (
	endpointFilings   = "/filings"
	endpointQuickRead = "/quickread"

	defaultMaxBodyBytes = 4 << 20
)

var errBodyTooLarge = errors.New("response body exceeds limit")

// Config describes the filings API connection.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Client implements port.FilingsAPI over HTTP. One request per call, no retries.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	timeout      time.Duration
	maxBodyBytes int64
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

var _ port.FilingsAPI = (*Client)(nil)

// NewClient creates a filings API client.
func NewClient(cfg Config, m *metrics.Metrics, log *logger.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute, got %q", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if m == nil {
		m = metrics.NewDiscard()
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.Timeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	}

	return &Client{
		baseURL:      base,
		httpClient:   &http.Client{Transport: transport},
		timeout:      cfg.Timeout,
		maxBodyBytes: cfg.MaxBodyBytes,
		metrics:      m,
		logger:       log,
	}, nil
}

// ListFilings fetches GET /filings. The response may be a JSON array or an
// object carrying the array in "items".
func (c *Client) ListFilings(ctx context.Context, query port.FilingsQuery) ([]entity.Filing, error) {
	params := url.Values{}
	if query.Lookback.IsSet() {
		params.Set("days", strconv.Itoa(query.Lookback.Days()))
	}
	if !query.Forms.IsEmpty() {
		params.Set("form", query.Forms.String())
	}

	var items []wireFiling
	err := c.get(ctx, endpointFilings, c.endpointURL(params, "filings"), func(body []byte) error {
		var err error
		items, err = decodeFilings(body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return toFilings(items), nil
}

// GetQuickRead fetches GET /quickread/{accession}.
func (c *Client) GetQuickRead(ctx context.Context, accession valueobject.Accession) (*entity.QuickRead, error) {
	var wire wireQuickRead
	err := c.get(ctx, endpointQuickRead, c.endpointURL(nil, "quickread", accession.PathEscape()), func(body []byte) error {
		return json.Unmarshal(body, &wire)
	})
	if err != nil {
		return nil, err
	}

	return toQuickRead(&wire), nil
}

// endpointURL joins already escaped path segments onto the base URL.
func (c *Client) endpointURL(params url.Values, escapedSegments ...string) string {
	u := *c.baseURL
	u.RawQuery = ""
	u.Fragment = ""

	path := u.EscapedPath()
	for _, segment := range escapedSegments {
		path = trimSlash(path) + "/" + segment
	}

	u.RawPath = path
	if unescaped, err := url.PathUnescape(path); err == nil {
		u.Path = unescaped
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	return u.String()
}

func trimSlash(path string) string {
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}

// get performs one GET and hands a 2xx body to decode. Every call records
// exactly one upstream outcome.
func (c *Client) get(ctx context.Context, endpoint, target string, decode func([]byte) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	startedAt := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, metrics.OutcomeError, time.Since(startedAt))
		c.logger.Error("Filings API request failed", err, "endpoint", endpoint, "url", target)
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.metrics.ObserveUpstream(endpoint, metrics.OutcomeNoData, time.Since(startedAt))
		c.logger.Debug("Filings API returned non-success status",
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
		return &port.StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, metrics.OutcomeError, time.Since(startedAt))
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		c.metrics.ObserveUpstream(endpoint, metrics.OutcomeError, time.Since(startedAt))
		return fmt.Errorf("read %s response: %w", endpoint, errBodyTooLarge)
	}

	if err := decode(body); err != nil {
		c.metrics.ObserveUpstream(endpoint, metrics.OutcomeDecodeError, time.Since(startedAt))
		c.logger.Error("Filings API returned malformed body", err, "endpoint", endpoint, "size", len(body))
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	c.metrics.ObserveUpstream(endpoint, metrics.OutcomeOK, time.Since(startedAt))
	c.logger.Debug("Filings API request completed",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"size", len(body),
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	return nil
}

// decodeFilings accepts either a bare array or {"items": [...]}.
// An object without items and JSON null both decode to an empty list.
func decodeFilings(body []byte) ([]wireFiling, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var items []wireFiling
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var envelope wireFilingsEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		return envelope.Items, nil
	case 'n':
		if string(trimmed) == "null" {
			return nil, nil
		}
	}

	return nil, fmt.Errorf("unexpected filings payload starting with %q", trimmed[0])
}
