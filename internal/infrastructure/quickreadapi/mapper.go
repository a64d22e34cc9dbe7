package quickreadapi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dreschagin/ipo-quickread/internal/domain/entity"
)

// wireFiling представление подачи в JSON ответе /filings
type wireFiling struct {
	CIK           string `json:"cik"`
	CompanyName   string `json:"company_name"`
	Form          string `json:"form"`
	Accession     string `json:"accession"`
	FilingDate    string `json:"filing_date"`
	FilingURL     string `json:"filing_url"`
	DocPrimaryURL string `json:"doc_primary_url"`
	Status        string `json:"status"`
}

// wireFilingsEnvelope альтернативная форма ответа /filings: {"items": [...]}
type wireFilingsEnvelope struct {
	Items []wireFiling `json:"items"`
}

// number числовое поле ответа. Принимает JSON число, число строкой ("1,200,000")
// или null. Значение другого типа считается отсутствующим и не ломает разбор всего ответа
type number struct {
	value float64
	valid bool
}

var numberCleaner = strings.NewReplacer(",", "", "_", "", "$", "", "%", "", " ", "")

func (n *number) UnmarshalJSON(data []byte) error {
	*n = number{}

	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = numberCleaner.Replace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.value, n.valid = v, true
	return nil
}

func (n number) float() float64 {
	if !n.valid {
		return 0
	}
	return n.value
}

func (n number) ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// count переводит значение в количество акций. Отрицательные значения
// и значения вне диапазона int64 отбрасываются
func (n number) count() int64 {
	if !n.valid || n.value <= 0 || n.value >= math.MaxInt64 {
		return 0
	}
	return int64(n.value)
}

// wireQuickRead представление ответа /quickread/{accession}
type wireQuickRead struct {
	BusinessModel struct {
		OneLiner       string   `json:"one_liner"`
		Segments       []string `json:"segments"`
		RevenueDrivers []string `json:"revenue_drivers"`
	} `json:"business_model"`
	RiskTop5 []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"risk_top5"`
	UseOfProceeds []struct {
		Purpose   string `json:"purpose"`
		AmountUSD number `json:"amount_usd"`
		Percent   number `json:"percent"`
		Note      string `json:"note"`
	} `json:"use_of_proceeds"`
	OfferingTerms struct {
		PriceRange    string   `json:"price_range"`
		SharesOffered number   `json:"shares_offered"`
		Greenshoe     number   `json:"greenshoe"`
		FloatShares   number   `json:"float_shares"`
		Underwriters  []string `json:"underwriters"`
	} `json:"offering_terms"`
	Financials struct {
		Periods []struct {
			Period      string `json:"period"`
			Revenue     number `json:"revenue"`
			GrossMargin number `json:"gross_margin"`
			OpIncome    number `json:"op_income"`
			NetIncome   number `json:"net_income"`
			CFO         number `json:"cfo"`
			Cash        number `json:"cash"`
			Debt        number `json:"debt"`
		} `json:"periods"`
	} `json:"financials"`
	Valuation struct {
		PSLow       number `json:"ps_low"`
		PSHigh      number `json:"ps_high"`
		Method      string `json:"method"`
		Assumptions string `json:"assumptions"`
	} `json:"valuation"`
	Meta struct {
		Warnings        []string `json:"warnings"`
		ExtractionScore number   `json:"extraction_score"`
	} `json:"meta"`
}

func toFilings(items []wireFiling) []entity.Filing {
	filings := make([]entity.Filing, 0, len(items))
	for _, item := range items {
		filings = append(filings, entity.Filing{
			CIK:           item.CIK,
			CompanyName:   item.CompanyName,
			Form:          item.Form,
			Accession:     item.Accession,
			FilingDate:    item.FilingDate,
			FilingURL:     item.FilingURL,
			DocPrimaryURL: item.DocPrimaryURL,
			Status:        item.Status,
		})
	}
	return filings
}

func toQuickRead(w *wireQuickRead) *entity.QuickRead {
	qr := &entity.QuickRead{
		BusinessModel: entity.BusinessModel{
			OneLiner:       w.BusinessModel.OneLiner,
			Segments:       w.BusinessModel.Segments,
			RevenueDrivers: w.BusinessModel.RevenueDrivers,
		},
		Risks: make([]entity.Risk, 0, len(w.RiskTop5)),
		OfferingTerms: entity.OfferingTerms{
			PriceRange:    w.OfferingTerms.PriceRange,
			SharesOffered: w.OfferingTerms.SharesOffered.count(),
			Greenshoe:     w.OfferingTerms.Greenshoe.count(),
			FloatShares:   w.OfferingTerms.FloatShares.count(),
			Underwriters:  w.OfferingTerms.Underwriters,
		},
		Valuation: entity.Valuation{
			PSLow:       w.Valuation.PSLow.float(),
			PSHigh:      w.Valuation.PSHigh.float(),
			Method:      w.Valuation.Method,
			Assumptions: w.Valuation.Assumptions,
		},
		Meta: entity.ExtractionMeta{
			Warnings:        w.Meta.Warnings,
			ExtractionScore: w.Meta.ExtractionScore.float(),
		},
	}

	for _, risk := range w.RiskTop5 {
		qr.Risks = append(qr.Risks, entity.Risk{Title: risk.Title, Detail: risk.Detail})
	}

	for _, use := range w.UseOfProceeds {
		qr.UseOfProceeds = append(qr.UseOfProceeds, entity.ProceedsUse{
			Purpose:   use.Purpose,
			AmountUSD: use.AmountUSD.float(),
			Percent:   use.Percent.float(),
			Note:      use.Note,
		})
	}

	for _, p := range w.Financials.Periods {
		qr.Financials = append(qr.Financials, entity.FinancialPeriod{
			Period:      p.Period,
			Revenue:     p.Revenue.ptr(),
			GrossMargin: p.GrossMargin.ptr(),
			OpIncome:    p.OpIncome.ptr(),
			NetIncome:   p.NetIncome.ptr(),
			CFO:         p.CFO.ptr(),
			Cash:        p.Cash.ptr(),
			Debt:        p.Debt.ptr(),
		})
	}

	return qr
}
