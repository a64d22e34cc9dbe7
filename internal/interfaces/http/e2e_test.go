package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/dreschagin/ipo-quickread/internal/application/usecase"
	"github.com/dreschagin/ipo-quickread/internal/infrastructure/observability/metrics"
	"github.com/dreschagin/ipo-quickread/internal/infrastructure/quickreadapi"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/handler"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/middleware"
	"github.com/dreschagin/ipo-quickread/pkg/config"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const demoAccession = "000-000-000"

const demoQuickReadJSON = `{
	"business_model": {"one_liner": "We are a demo IPO company used to test the pages.", "segments": ["Demo A", "Demo B"]},
	"risk_top5": [
		{"title": "High customer concentration"},
		{"title": "Regulatory uncertainty"},
		{"title": "Gross margin volatility"},
		{"title": "Use of proceeds execution risk"},
		{"title": "Key supplier dependency"},
		{"title": "Sixth risk that must not render"}
	],
	"financials": {"periods": [
		{"period": "FY2025", "revenue": "$12,500,000", "gross_margin": 0.45, "net_income": -3000000, "cash": "n/a"}
	]},
	"valuation": {"ps_low": 2.5, "ps_high": "4", "method": "Comparable companies"}
}`

// fakeFilingsAPI mimics the filings backend: /filings and /quickread/{acc}.
type fakeFilingsAPI struct {
	mu             sync.Mutex
	filingsBody    string
	filingsStatus  int
	quickReadBody  string
	quickReadReady map[string]bool
	requests       []string
}

func newFakeFilingsAPI() *fakeFilingsAPI {
	return &fakeFilingsAPI{
		filingsBody: `[
			{"cik": "0000000001", "company_name": "Zeta Robotics", "form": "S-1", "accession": "0001-24-000001", "filing_date": "2026-10-14", "status": "ready"},
			{"cik": "0000000002", "company_name": "Alpha & Omega", "form": "F-1", "accession": "0002-24/000002 x", "filing_date": "2026-10-13", "status": "new"},
			{"cik": "0000000000", "company_name": "Demo Company", "form": "S-1", "accession": "000-000-000", "filing_date": "2026-10-12", "doc_primary_url": "https://www.sec.gov/Archives/edgar/", "status": "ready"}
		]`,
		filingsStatus:  http.StatusOK,
		quickReadBody:  demoQuickReadJSON,
		quickReadReady: map[string]bool{demoAccession: true},
	}
}

func (f *fakeFilingsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.URL.RequestURI())

	switch {
	case r.URL.Path == "/filings":
		if f.filingsStatus != http.StatusOK {
			http.Error(w, "unavailable", f.filingsStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, f.filingsBody)
	case strings.HasPrefix(r.URL.Path, "/quickread/"):
		acc := strings.TrimPrefix(r.URL.Path, "/quickread/")
		if !f.quickReadReady[acc] {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail": "not ready"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, f.quickReadBody)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeFilingsAPI) lastRequest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeFilingsAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type testApp struct {
	server   *httptest.Server
	upstream *fakeFilingsAPI
	metrics  *metrics.Metrics
}

func newTestApp(t *testing.T, upstreamURL string, upstream *fakeFilingsAPI, security config.SecurityConfig) *testApp {
	t.Helper()

	log := logger.New("error")
	m := metrics.NewDiscard()

	client, err := quickreadapi.NewClient(quickreadapi.Config{BaseURL: upstreamURL, Timeout: 2 * time.Second}, m, log)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	filingsHandler := handler.NewFilingsHandler(usecase.NewListFilingsUseCase(client, log), 7, m, log)
	quickReadHandler := handler.NewQuickReadHandler(usecase.NewGetQuickReadUseCase(client, log), m, log)

	if security.FrameAncestors == nil {
		security.FrameAncestors = []string{"'self'"}
	}

	router := NewRouter(
		filingsHandler,
		quickReadHandler,
		middleware.NewIPRateLimiter(1000, 1000),
		m,
		RouterConfig{Security: security, MetricsEnabled: true},
		log,
	)

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return &testApp{server: server, upstream: upstream, metrics: m}
}

func newDefaultApp(t *testing.T) *testApp {
	t.Helper()

	upstream := newFakeFilingsAPI()
	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	return newTestApp(t, upstreamServer.URL, upstream, config.SecurityConfig{})
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string, *html.Node) {
	t.Helper()

	resp, err := http.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("parse body error = %v", err)
	}
	return resp, string(body), doc
}

func elementsByClass(n *html.Node, class string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key != "class" {
					continue
				}
				for _, f := range strings.Fields(a.Val) {
					if f == class {
						found = append(found, n)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func hrefOf(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "href" {
			return a.Val
		}
	}
	return ""
}

func TestHomeListsFilingsWithEncodedEmbedLinks(t *testing.T) {
	app := newDefaultApp(t)

	resp, body, doc := app.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := app.upstream.lastRequest(); got != "/filings?days=7" {
		t.Fatalf("expected home to request 7 day window, got %s", got)
	}
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}

	cards := elementsByClass(doc, "filing-card")
	if len(cards) != 3 {
		t.Fatalf("expected 3 filings, got %d:\n%s", len(cards), body)
	}

	links := elementsByClass(doc, "filing-card__link")
	want := []string{
		"/embed?acc=0001-24-000001",
		"/embed?acc=0002-24%2F000002+x",
		"/embed?acc=000-000-000",
	}
	for i, link := range links {
		if got := hrefOf(link); got != want[i] {
			t.Fatalf("link %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestHomeAcceptsItemsEnvelopeAndDaysOverride(t *testing.T) {
	app := newDefaultApp(t)
	app.upstream.filingsBody = `{"items": [{"company_name": "Only One", "form": "S-1", "accession": "1"}]}`

	_, _, doc := app.get(t, "/?days=30&form=s-1")

	if got := app.upstream.lastRequest(); got != "/filings?days=30&form=S-1" {
		t.Fatalf("unexpected upstream request: %s", got)
	}
	if cards := elementsByClass(doc, "filing-card"); len(cards) != 1 {
		t.Fatalf("expected 1 filing, got %d", len(cards))
	}
}

func TestHomeUpstreamFailureRendersNoData(t *testing.T) {
	app := newDefaultApp(t)
	app.upstream.filingsStatus = http.StatusServiceUnavailable

	resp, _, doc := app.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(elementsByClass(doc, "fallback--no-data")) != 1 {
		t.Fatal("expected no-data fallback")
	}
}

func TestEmbedRendersQuickRead(t *testing.T) {
	app := newDefaultApp(t)

	resp, body, doc := app.get(t, "/embed?acc="+demoAccession)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := app.upstream.lastRequest(); got != "/quickread/000-000-000" {
		t.Fatalf("unexpected upstream request: %s", got)
	}
	if got := resp.Header.Get("Content-Security-Policy"); got != "frame-ancestors 'self'" {
		t.Fatalf("unexpected CSP: %q", got)
	}

	if !strings.Contains(body, "We are a demo IPO company used to test the pages.") {
		t.Fatalf("expected headline in body:\n%s", body)
	}

	risks := elementsByClass(doc, "risk-list__title")
	if len(risks) != 5 {
		t.Fatalf("expected 5 risks, got %d", len(risks))
	}
	if strings.Contains(body, "Sixth risk") {
		t.Fatal("sixth risk must not render")
	}
	if got := risks[0].FirstChild.Data; got != "High customer concentration" {
		t.Fatalf("expected API order, first risk = %q", got)
	}

	if len(elementsByClass(doc, "financials-table__row")) != 1 {
		t.Fatalf("expected one financials row:\n%s", body)
	}
	for _, want := range []string{"$12,500,000", "45%", "-$3,000,000", "2.5x to 4x", "Comparable companies"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body", want)
		}
	}
}

func TestEmbedMissingAccessionRendersGuidance(t *testing.T) {
	app := newDefaultApp(t)

	for _, path := range []string{"/embed", "/embed?acc=", "/embed?acc=%20%20"} {
		t.Run(path, func(t *testing.T) {
			before := app.upstream.requestCount()
			resp, body, doc := app.get(t, path)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if !strings.Contains(body, "Missing accession parameter") {
				t.Fatalf("expected guidance, got:\n%s", body)
			}
			links := elementsByClass(doc, "fallback__home-link")
			if len(links) != 1 || hrefOf(links[0]) != "/" {
				t.Fatal("expected link back to home")
			}
			if app.upstream.requestCount() != before {
				t.Fatal("missing accession must not call upstream")
			}
		})
	}

	// the home link must work
	resp, _, _ := app.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home status = %d", resp.StatusCode)
	}
}

func TestEmbedNotReadyRendersNoDataNeverSummary(t *testing.T) {
	app := newDefaultApp(t)

	resp, body, doc := app.get(t, "/embed?acc=unknown")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(elementsByClass(doc, "fallback--no-data")) != 1 {
		t.Fatalf("expected no-data fallback:\n%s", body)
	}
	if len(elementsByClass(doc, "quickread-summary")) != 0 || len(elementsByClass(doc, "risk-list")) != 0 {
		t.Fatal("summary UI must not render for non-2xx upstream")
	}

	if got := testutil.ToFloat64(app.metrics.PagesRendered.WithLabelValues("quickread", "no_data")); got != 1 {
		t.Fatalf("expected no_data page metric, got %v", got)
	}
}

func TestEmbedUpstreamUnreachableRendersErrorPage(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	app := newTestApp(t, deadURL, newFakeFilingsAPI(), config.SecurityConfig{})

	resp, body, _ := app.get(t, "/embed?acc="+demoAccession)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if !strings.Contains(body, "Request ID: ") {
		t.Fatalf("expected request id on error page:\n%s", body)
	}
}

func TestEmbedMalformedUpstreamRendersErrorPage(t *testing.T) {
	app := newDefaultApp(t)
	app.upstream.quickReadBody = `{"business_model": `

	resp, _, _ := app.get(t, "/embed?acc="+demoAccession)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestEmbedFilingsList(t *testing.T) {
	app := newDefaultApp(t)

	resp, body, doc := app.get(t, "/embed/filings")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := app.upstream.lastRequest(); got != "/filings" {
		t.Fatalf("expected unfiltered filings request, got %s", got)
	}
	if len(elementsByClass(doc, "filing-card")) != 3 {
		t.Fatalf("expected 3 filings:\n%s", body)
	}
	if !strings.Contains(body, "https://www.sec.gov/Archives/edgar/") {
		t.Fatal("expected primary document link")
	}
}

func TestAuthProtectsPagesButNotHealthChecks(t *testing.T) {
	upstream := newFakeFilingsAPI()
	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	app := newTestApp(t, upstreamServer.URL, upstream, config.SecurityConfig{AuthEnabled: true, AuthToken: "secret"})

	resp, _, _ := app.get(t, "/")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	resp, _, _ = app.get(t, "/embed?acc="+demoAccession+"&token=secret")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", resp.StatusCode)
	}

	resp, _, _ = app.get(t, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestStaticMetricsAndUnknownRoutes(t *testing.T) {
	app := newDefaultApp(t)

	resp, _, _ := app.get(t, "/static/css/style.css")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected static response: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	app.get(t, "/")
	resp, body, _ := app.get(t, "/metrics")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "quickread_upstream_requests_total") {
		t.Fatalf("unexpected metrics response: %d", resp.StatusCode)
	}

	resp, _, _ = app.get(t, "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown route status = %d, want 404", resp.StatusCode)
	}

	post, err := http.Post(app.server.URL+"/embed", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d, want 405", post.StatusCode)
	}
}
