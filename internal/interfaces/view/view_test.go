package view

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/dreschagin/ipo-quickread/internal/application/dto"
	"github.com/dreschagin/ipo-quickread/internal/domain/entity"
)

func render(t *testing.T, c templ.Component) (string, *html.Node) {
	t.Helper()

	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	doc, err := html.Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("rendered markup does not parse: %v", err)
	}
	return buf.String(), doc
}

// findByClass returns elements whose class attribute contains class, in document order.
func findByClass(n *html.Node, class string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, f := range strings.Fields(attr(n, "class")) {
				if f == class {
					found = append(found, n)
					break
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

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestHomeRendersOneEntryPerFilingInOrder(t *testing.T) {
	list := &dto.FilingListDTO{
		Available:    true,
		LookbackDays: 7,
		Filings: dto.ToFilingDTOs([]entity.Filing{
			{CompanyName: "Zeta Inc", Form: "S-1", Accession: "0001-24-000001", FilingDate: "2024-05-01"},
			{CompanyName: "Alpha & Sons", Form: "F-1", Accession: "a b/c&d", FilingDate: "2024-05-02"},
			{CompanyName: "Mid Co", Form: "S-1", Accession: "000-000-000", FilingDate: "2024-05-03"},
		}),
	}

	_, doc := render(t, Home(list))

	cards := findByClass(doc, "filing-card")
	if len(cards) != 3 {
		t.Fatalf("expected 3 filing entries, got %d", len(cards))
	}

	wantTitles := []string{
		"Zeta Inc · S-1 · 2024-05-01",
		"Alpha & Sons · F-1 · 2024-05-02",
		"Mid Co · S-1 · 2024-05-03",
	}
	for i, title := range findByClass(doc, "filing-card__title") {
		if got := textOf(title); got != wantTitles[i] {
			t.Fatalf("entry %d title = %q, want %q", i, got, wantTitles[i])
		}
	}

	links := findByClass(doc, "filing-card__link")
	wantHrefs := []string{"/embed?acc=0001-24-000001", "/embed?acc=a+b%2Fc%26d", "/embed?acc=000-000-000"}
	for i, link := range links {
		if got := attr(link, "href"); got != wantHrefs[i] {
			t.Fatalf("entry %d href = %q, want %q", i, got, wantHrefs[i])
		}
	}
}

func TestHomeUnavailableRendersNoData(t *testing.T) {
	out, doc := render(t, Home(&dto.FilingListDTO{Available: false, LookbackDays: 7}))

	if len(findByClass(doc, "fallback--no-data")) != 1 {
		t.Fatalf("expected no-data fallback, got:\n%s", out)
	}
	if len(findByClass(doc, "filing-card")) != 0 {
		t.Fatal("expected no filing entries")
	}
}

func TestFilingsEmbedRendersDocLinksAndFallbacks(t *testing.T) {
	list := &dto.FilingListDTO{
		Available: true,
		Filings: dto.ToFilingDTOs([]entity.Filing{
			{Form: "S-1", Accession: "1", DocPrimaryURL: "https://www.sec.gov/Archives/edgar/", Status: "ready"},
			{CompanyName: "Evil", Accession: "2", DocPrimaryURL: "javascript:alert(1)"},
			{CompanyName: "No Doc", Accession: "3"},
		}),
	}

	out, doc := render(t, FilingsEmbed(list))

	if strings.Contains(out, "site-header") {
		t.Fatal("embedded page must not render the site header")
	}

	titles := findByClass(doc, "filing-card__title")
	if len(titles) != 3 || textOf(titles[0]) != "Unknown Company" {
		t.Fatalf("expected company fallback in first entry, got %d titles", len(titles))
	}

	docs := findByClass(doc, "filing-card__doc")
	if got := attr(docs[0], "href"); got != "https://www.sec.gov/Archives/edgar/" {
		t.Fatalf("unexpected doc href: %s", got)
	}
	if got := attr(docs[1], "href"); strings.HasPrefix(got, "javascript:") {
		t.Fatalf("unsafe href was not sanitised: %s", got)
	}
	if got := textOf(docs[2]); got != "N/A" {
		t.Fatalf("expected N/A for missing doc, got %q", got)
	}
}

func TestFilingsEmbedEmptyRendersNoData(t *testing.T) {
	_, doc := render(t, FilingsEmbed(&dto.FilingListDTO{Available: true, Filings: []*dto.FilingDTO{}}))

	if len(findByClass(doc, "fallback--no-data")) != 1 {
		t.Fatal("expected no-data fallback for empty list")
	}
}

func TestQuickReadPageRendersHeadlineAndRisksInOrder(t *testing.T) {
	qr := &entity.QuickRead{
		BusinessModel: entity.BusinessModel{OneLiner: "We <build> demo IPOs.", Segments: []string{"A", "B"}},
		Risks: []entity.Risk{
			{Title: "Customer concentration"}, {Title: "Regulation"}, {Title: "Margins"},
			{Title: "Execution"}, {Title: "Suppliers"}, {Title: "Sixth risk"},
		},
		OfferingTerms: entity.OfferingTerms{PriceRange: "$8-$10", SharesOffered: 10000000},
	}
	res := &dto.QuickReadDTO{Accession: "000-000-000", Available: true, Summary: dto.FromQuickRead(qr)}

	out, doc := render(t, QuickReadPage(res))

	headline := findByClass(doc, "quickread-headline")
	if len(headline) != 1 || textOf(headline[0]) != "We <build> demo IPOs." {
		t.Fatalf("unexpected headline, got:\n%s", out)
	}
	if strings.Contains(out, "<build>") {
		t.Fatal("headline must be escaped")
	}

	risks := findByClass(doc, "risk-list__title")
	want := []string{"Customer concentration", "Regulation", "Margins", "Execution", "Suppliers"}
	if len(risks) != len(want) {
		t.Fatalf("expected %d risks, got %d", len(want), len(risks))
	}
	for i, risk := range risks {
		if got := textOf(risk); got != want[i] {
			t.Fatalf("risk %d = %q, want %q", i, got, want[i])
		}
	}

	if !strings.Contains(out, "10,000,000") {
		t.Fatalf("expected formatted shares offered, got:\n%s", out)
	}
	if len(findByClass(doc, "fallback--no-data")) != 0 {
		t.Fatal("summary page must not render the no-data fallback")
	}
}

func TestQuickReadPageUnavailableNeverRendersSummary(t *testing.T) {
	out, doc := render(t, QuickReadPage(&dto.QuickReadDTO{Accession: "missing", Available: false}))

	if len(findByClass(doc, "fallback--no-data")) != 1 {
		t.Fatalf("expected no-data fallback, got:\n%s", out)
	}
	for _, class := range []string{"quickread-summary", "quickread-headline", "risk-list"} {
		if len(findByClass(doc, class)) != 0 {
			t.Fatalf("no-data page must not contain %s", class)
		}
	}
}

func TestMissingAccessionLinksHome(t *testing.T) {
	out, doc := render(t, MissingAccession())

	if !strings.Contains(out, "Missing accession parameter") {
		t.Fatalf("expected guidance heading, got:\n%s", out)
	}
	links := findByClass(doc, "fallback__home-link")
	if len(links) != 1 || attr(links[0], "href") != "/" {
		t.Fatalf("expected a link back to /, got %d links", len(links))
	}
	if !strings.Contains(out, "?acc=&lt;accession&gt;") {
		t.Fatal("expected escaped usage hint")
	}
}

func TestErrorPageIncludesRequestID(t *testing.T) {
	out, _ := render(t, ErrorPage(502, "req-123"))

	if !strings.Contains(out, "502 Bad Gateway") || !strings.Contains(out, "Request ID: req-123") {
		t.Fatalf("unexpected error page:\n%s", out)
	}
}

func TestRenderStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Home(&dto.FilingListDTO{Available: true}).Render(ctx, &buf)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func ptr(v float64) *float64 { return &v }

func TestQuickReadPageRendersFinancialsAndValuation(t *testing.T) {
	qr := &entity.QuickRead{
		BusinessModel: entity.BusinessModel{OneLiner: "Demo"},
		UseOfProceeds: []entity.ProceedsUse{
			{Purpose: "R&D", AmountUSD: 40000000, Percent: 40, Note: "over 24 months"},
			{Purpose: "General corporate purposes"},
		},
		OfferingTerms: entity.OfferingTerms{SharesOffered: 10000000, FloatShares: 8500000},
		Financials: []entity.FinancialPeriod{
			{Period: "FY2023", Revenue: ptr(12500000), GrossMargin: ptr(0.45), NetIncome: ptr(-3000000)},
			{Period: "FY2022", Revenue: ptr(9000000), GrossMargin: ptr(41.5)},
		},
		Valuation: entity.Valuation{PSLow: 2.5, PSHigh: 4, Method: "Comparable companies", Assumptions: "Peers trade at 3x"},
		Meta:      entity.ExtractionMeta{ExtractionScore: 0.82, Warnings: []string{"cash flow table not found"}},
	}
	res := &dto.QuickReadDTO{Accession: "000-000-000", Available: true, Summary: dto.FromQuickRead(qr)}

	out, doc := render(t, QuickReadPage(res))

	rows := findByClass(doc, "financials-table__row")
	if len(rows) != 2 {
		t.Fatalf("expected 2 financial periods, got %d:\n%s", len(rows), out)
	}

	tests := []struct {
		row  int
		want []string
	}{
		{0, []string{"FY2023", "$12,500,000", "45%", "—", "-$3,000,000", "—", "—", "—"}},
		{1, []string{"FY2022", "$9,000,000", "41.5%", "—", "—", "—", "—", "—"}},
	}
	for _, tt := range tests {
		var cells []string
		for c := rows[tt.row].FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				cells = append(cells, textOf(c))
			}
		}
		if strings.Join(cells, "|") != strings.Join(tt.want, "|") {
			t.Errorf("row %d = %q, want %q", tt.row, cells, tt.want)
		}
	}

	for _, want := range []string{"2.5x to 4x", "Comparable companies", "Peers trade at 3x", "8,500,000", "over 24 months", "Extraction score: 0.82", "cash flow table not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}

	notes := findByClass(doc, "proceeds-table__note")
	if len(notes) != 2 || textOf(notes[1]) != "—" {
		t.Fatalf("expected placeholder note for second proceeds row, got %d notes", len(notes))
	}
}

func TestQuickReadPageOmitsEmptyOptionalSections(t *testing.T) {
	qr := &entity.QuickRead{BusinessModel: entity.BusinessModel{OneLiner: "Only a headline"}}
	res := &dto.QuickReadDTO{Accession: "1", Available: true, Summary: dto.FromQuickRead(qr)}

	_, doc := render(t, QuickReadPage(res))

	for _, class := range []string{"financials-table", "valuation", "offering-terms", "proceeds-table", "quickread-meta"} {
		if len(findByClass(doc, class)) != 0 {
			t.Errorf("section %s must be omitted when there is no data", class)
		}
	}
}

func TestLayoutMarksEmbeddedPages(t *testing.T) {
	tests := []struct {
		name     string
		page     templ.Component
		embedded bool
	}{
		{"home", Home(&dto.FilingListDTO{Available: true}), false},
		{"quickread", QuickReadPage(&dto.QuickReadDTO{Accession: "1"}), true},
		{"missing accession", MissingAccession(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, doc := render(t, tt.page)

			body := findByClass(doc, "page")
			if len(body) != 1 {
				t.Fatalf("expected one page body, got %d", len(body))
			}
			_, embedded := attrLookup(body[0], "data-embedded")
			if embedded != tt.embedded {
				t.Fatalf("data-embedded = %v, want %v", embedded, tt.embedded)
			}
			if got := strings.Contains(out, "site-header"); got == tt.embedded {
				t.Fatalf("site header rendered = %v for embedded = %v", got, tt.embedded)
			}
		})
	}
}

func attrLookup(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
