package entity

import "testing"

func TestFilingDisplayCompany(t *testing.T) {
	if got := (Filing{CompanyName: "  Acme Corp "}).DisplayCompany(); got != "Acme Corp" {
		t.Fatalf("DisplayCompany() = %q", got)
	}
	if got := (Filing{}).DisplayCompany(); got != "Unknown Company" {
		t.Fatalf("DisplayCompany() for empty name = %q", got)
	}
}

func TestQuickReadTopRisksKeepsOrderAndCapsAtFive(t *testing.T) {
	qr := &QuickRead{}
	titles := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	for _, title := range titles {
		qr.Risks = append(qr.Risks, Risk{Title: title})
	}

	top := qr.TopRisks()
	if len(top) != MaxTopRisks {
		t.Fatalf("len(TopRisks()) = %d, want %d", len(top), MaxTopRisks)
	}
	for i, risk := range top {
		if risk.Title != titles[i] {
			t.Fatalf("risk[%d] = %q, want %q", i, risk.Title, titles[i])
		}
	}

	short := &QuickRead{Risks: []Risk{{Title: "only"}}}
	if got := short.TopRisks(); len(got) != 1 || got[0].Title != "only" {
		t.Fatalf("TopRisks() for short list = %#v", got)
	}
}

func TestOfferingTermsAndValuationIsSet(t *testing.T) {
	tests := []struct {
		name  string
		terms OfferingTerms
		want  bool
	}{
		{name: "zero", terms: OfferingTerms{}, want: false},
		{name: "price range", terms: OfferingTerms{PriceRange: "$8-$10"}, want: true},
		{name: "float shares only", terms: OfferingTerms{FloatShares: 30000000}, want: true},
		{name: "greenshoe only", terms: OfferingTerms{Greenshoe: 1500000}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.terms.IsSet(); got != tt.want {
				t.Fatalf("IsSet() = %v, want %v", got, tt.want)
			}
		})
	}

	if (Valuation{}).IsSet() {
		t.Fatal("zero valuation should not be set")
	}
	if !(Valuation{Method: "Peer P/S"}).IsSet() {
		t.Fatal("valuation with method should be set")
	}
}
