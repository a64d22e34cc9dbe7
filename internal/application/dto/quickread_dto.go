package dto

import "github.com/dreschagin/ipo-quickread/internal/domain/entity"

// QuickReadDTO результат запроса QuickRead для страницы
type QuickReadDTO struct {
	Accession string            `json:"accession"`
	Available bool              `json:"available"`
	Summary   *QuickReadSummary `json:"summary,omitempty"`
}

// QuickReadSummary содержимое выжимки, готовое к рендерингу
type QuickReadSummary struct {
	Headline        string               `json:"headline"`
	Segments        []string             `json:"segments,omitempty"`
	RevenueDrivers  []string             `json:"revenue_drivers,omitempty"`
	Risks           []RiskDTO            `json:"risks"`
	Offering        *OfferingDTO         `json:"offering,omitempty"`
	Proceeds        []ProceedsUseDTO     `json:"proceeds,omitempty"`
	Financials      []FinancialPeriodDTO `json:"financials,omitempty"`
	Valuation       *ValuationDTO        `json:"valuation,omitempty"`
	Warnings        []string             `json:"warnings,omitempty"`
	ExtractionScore float64              `json:"extraction_score,omitempty"`
}

// RiskDTO один риск
type RiskDTO struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// OfferingDTO условия размещения
type OfferingDTO struct {
	PriceRange    string   `json:"price_range,omitempty"`
	SharesOffered int64    `json:"shares_offered,omitempty"`
	Greenshoe     int64    `json:"greenshoe,omitempty"`
	FloatShares   int64    `json:"float_shares,omitempty"`
	Underwriters  []string `json:"underwriters,omitempty"`
}

// ProceedsUseDTO строка Use of Proceeds
type ProceedsUseDTO struct {
	Purpose   string  `json:"purpose"`
	AmountUSD float64 `json:"amount_usd,omitempty"`
	Percent   float64 `json:"percent,omitempty"`
	Note      string  `json:"note,omitempty"`
}

// FinancialPeriodDTO показатели за период. nil означает прочерк в таблице
type FinancialPeriodDTO struct {
	Period      string   `json:"period"`
	Revenue     *float64 `json:"revenue,omitempty"`
	GrossMargin *float64 `json:"gross_margin,omitempty"`
	OpIncome    *float64 `json:"op_income,omitempty"`
	NetIncome   *float64 `json:"net_income,omitempty"`
	CFO         *float64 `json:"cfo,omitempty"`
	Cash        *float64 `json:"cash,omitempty"`
	Debt        *float64 `json:"debt,omitempty"`
}

// ValuationDTO оценочный диапазон P/S
type ValuationDTO struct {
	PSLow       float64 `json:"ps_low,omitempty"`
	PSHigh      float64 `json:"ps_high,omitempty"`
	Method      string  `json:"method,omitempty"`
	Assumptions string  `json:"assumptions,omitempty"`
}

// FromQuickRead конвертирует entity в summary. Риски обрезаются до entity.MaxTopRisks
func FromQuickRead(q *entity.QuickRead) *QuickReadSummary {
	summary := &QuickReadSummary{
		Headline:        q.Headline(),
		Segments:        q.BusinessModel.Segments,
		RevenueDrivers:  q.BusinessModel.RevenueDrivers,
		Risks:           make([]RiskDTO, 0, entity.MaxTopRisks),
		Warnings:        q.Meta.Warnings,
		ExtractionScore: q.Meta.ExtractionScore,
	}

	for _, risk := range q.TopRisks() {
		summary.Risks = append(summary.Risks, RiskDTO{Title: risk.Title, Detail: risk.Detail})
	}

	if q.OfferingTerms.IsSet() {
		summary.Offering = &OfferingDTO{
			PriceRange:    q.OfferingTerms.PriceRange,
			SharesOffered: q.OfferingTerms.SharesOffered,
			Greenshoe:     q.OfferingTerms.Greenshoe,
			FloatShares:   q.OfferingTerms.FloatShares,
			Underwriters:  q.OfferingTerms.Underwriters,
		}
	}

	for _, use := range q.UseOfProceeds {
		summary.Proceeds = append(summary.Proceeds, ProceedsUseDTO{
			Purpose:   use.Purpose,
			AmountUSD: use.AmountUSD,
			Percent:   use.Percent,
			Note:      use.Note,
		})
	}

	for _, p := range q.Financials {
		summary.Financials = append(summary.Financials, FinancialPeriodDTO{
			Period:      p.Period,
			Revenue:     p.Revenue,
			GrossMargin: p.GrossMargin,
			OpIncome:    p.OpIncome,
			NetIncome:   p.NetIncome,
			CFO:         p.CFO,
			Cash:        p.Cash,
			Debt:        p.Debt,
		})
	}

	if q.Valuation.IsSet() {
		summary.Valuation = &ValuationDTO{
			PSLow:       q.Valuation.PSLow,
			PSHigh:      q.Valuation.PSHigh,
			Method:      q.Valuation.Method,
			Assumptions: q.Valuation.Assumptions,
		}
	}

	return summary
}
