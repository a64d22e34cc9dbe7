package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dreschagin/ipo-quickread/internal/application/port"
	"github.com/dreschagin/ipo-quickread/internal/domain/entity"
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

type mockFilingsAPI struct {
	filings   []entity.Filing
	quickRead *entity.QuickRead
	err       error

	lastQuery     port.FilingsQuery
	lastAccession valueobject.Accession
	calls         int
}

func (m *mockFilingsAPI) ListFilings(_ context.Context, query port.FilingsQuery) ([]entity.Filing, error) {
	m.calls++
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.filings, nil
}

func (m *mockFilingsAPI) GetQuickRead(_ context.Context, accession valueobject.Accession) (*entity.QuickRead, error) {
	m.calls++
	m.lastAccession = accession
	if m.err != nil {
		return nil, m.err
	}
	return m.quickRead, nil
}

func TestListFilingsUseCase_PreservesOrderAndBuildsEmbedLinks(t *testing.T) {
	api := &mockFilingsAPI{
		filings: []entity.Filing{
			{CompanyName: "Zeta Inc", Form: "S-1", Accession: "0002-24-000010"},
			{CompanyName: "Alpha Corp", Form: "F-1", Accession: "a b&c"},
			{CompanyName: "", Form: "S-1"},
		},
	}
	uc := NewListFilingsUseCase(api, logger.New("error"))

	res, err := uc.Execute(context.Background(), port.FilingsQuery{Lookback: 7})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if api.lastQuery.Lookback.Days() != 7 {
		t.Fatalf("expected lookback 7 to be passed upstream, got %d", api.lastQuery.Lookback.Days())
	}
	if !res.Available {
		t.Fatalf("expected result to be available")
	}
	if len(res.Filings) != 3 {
		t.Fatalf("expected 3 filings, got %d", len(res.Filings))
	}
	if res.Filings[0].Company != "Zeta Inc" || res.Filings[1].Company != "Alpha Corp" {
		t.Fatalf("expected API order to be preserved, got %q, %q", res.Filings[0].Company, res.Filings[1].Company)
	}
	if res.Filings[1].EmbedURL != "/embed?acc=a+b%26c" {
		t.Fatalf("unexpected embed url: %s", res.Filings[1].EmbedURL)
	}
	if res.Filings[2].EmbedURL != "" {
		t.Fatalf("expected no embed url without accession, got %s", res.Filings[2].EmbedURL)
	}
	if res.Filings[2].Company != "Unknown Company" {
		t.Fatalf("expected company fallback, got %s", res.Filings[2].Company)
	}
}

func TestListFilingsUseCase_UpstreamStatusMeansNoData(t *testing.T) {
	api := &mockFilingsAPI{err: &port.StatusError{Endpoint: "/filings", StatusCode: http.StatusServiceUnavailable}}
	uc := NewListFilingsUseCase(api, logger.New("error"))

	res, err := uc.Execute(context.Background(), port.FilingsQuery{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Available {
		t.Fatalf("expected result to be unavailable")
	}
	if !res.IsEmpty() {
		t.Fatalf("expected no filings, got %d", len(res.Filings))
	}
}

func TestListFilingsUseCase_TransportError(t *testing.T) {
	api := &mockFilingsAPI{err: errors.New("connection refused")}
	uc := NewListFilingsUseCase(api, logger.New("error"))

	_, err := uc.Execute(context.Background(), port.FilingsQuery{})
	if err == nil || !strings.Contains(err.Error(), "failed to list filings") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestGetQuickReadUseCase_Success(t *testing.T) {
	api := &mockFilingsAPI{
		quickRead: &entity.QuickRead{
			BusinessModel: entity.BusinessModel{OneLiner: "We build demo IPOs."},
			Risks: []entity.Risk{
				{Title: "r1"}, {Title: "r2"}, {Title: "r3"},
				{Title: "r4"}, {Title: "r5"}, {Title: "r6"},
			},
		},
	}
	uc := NewGetQuickReadUseCase(api, logger.New("error"))

	res, err := uc.Execute(context.Background(), "  000-000-000 ")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if api.lastAccession != "000-000-000" {
		t.Fatalf("expected trimmed accession upstream, got %q", api.lastAccession)
	}
	if !res.Available || res.Summary == nil {
		t.Fatalf("expected summary to be available")
	}
	if res.Summary.Headline != "We build demo IPOs." {
		t.Fatalf("unexpected headline: %s", res.Summary.Headline)
	}
	if len(res.Summary.Risks) != 5 {
		t.Fatalf("expected 5 risks, got %d", len(res.Summary.Risks))
	}
	for i, risk := range res.Summary.Risks {
		want := []string{"r1", "r2", "r3", "r4", "r5"}[i]
		if risk.Title != want {
			t.Fatalf("risk[%d] = %s, want %s", i, risk.Title, want)
		}
	}
}

func TestGetQuickReadUseCase_MissingAccession(t *testing.T) {
	api := &mockFilingsAPI{}
	uc := NewGetQuickReadUseCase(api, logger.New("error"))

	_, err := uc.Execute(context.Background(), "   ")
	if !errors.Is(err, valueobject.ErrMissingAccession) {
		t.Fatalf("expected ErrMissingAccession, got %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("expected no upstream calls, got %d", api.calls)
	}
}

func TestGetQuickReadUseCase_NotReady(t *testing.T) {
	api := &mockFilingsAPI{err: &port.StatusError{Endpoint: "/quickread", StatusCode: http.StatusNotFound}}
	uc := NewGetQuickReadUseCase(api, logger.New("error"))

	res, err := uc.Execute(context.Background(), "123")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Available || res.Summary != nil {
		t.Fatalf("expected no summary for non-2xx upstream")
	}
	if res.Accession != "123" {
		t.Fatalf("unexpected accession: %s", res.Accession)
	}
}

func TestGetQuickReadUseCase_DecodeError(t *testing.T) {
	api := &mockFilingsAPI{err: errors.New("invalid character")}
	uc := NewGetQuickReadUseCase(api, logger.New("error"))

	_, err := uc.Execute(context.Background(), "123")
	if err == nil || errors.Is(err, port.ErrNoData) {
		t.Fatalf("expected propagated error, got %v", err)
	}
}
