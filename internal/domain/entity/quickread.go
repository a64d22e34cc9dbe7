package entity

import "strings"

// MaxTopRisks максимальное число рисков, показываемых в QuickRead
const MaxTopRisks = 5

// QuickRead краткая выжимка по одной подаче
type QuickRead struct {
	BusinessModel BusinessModel
	Risks         []Risk
	UseOfProceeds []ProceedsUse
	OfferingTerms OfferingTerms
	Financials    []FinancialPeriod
	Valuation     Valuation
	Meta          ExtractionMeta
}

// BusinessModel описывает бизнес компании
type BusinessModel struct {
	OneLiner       string
	Segments       []string
	RevenueDrivers []string
}

// Risk один риск-фактор из раздела Risk Factors
type Risk struct {
	Title  string
	Detail string
}

// ProceedsUse одна строка раздела Use of Proceeds
type ProceedsUse struct {
	Purpose   string
	AmountUSD float64
	Percent   float64
	Note      string
}

// OfferingTerms условия размещения
type OfferingTerms struct {
	PriceRange    string
	SharesOffered int64
	Greenshoe     int64
	FloatShares   int64
	Underwriters  []string
}

// FinancialPeriod ключевые показатели за один отчетный период.
// nil означает, что показатель не удалось извлечь
type FinancialPeriod struct {
	Period      string
	Revenue     *float64
	GrossMargin *float64
	OpIncome    *float64
	NetIncome   *float64
	CFO         *float64
	Cash        *float64
	Debt        *float64
}

// Valuation оценочный диапазон по мультипликатору P/S
type Valuation struct {
	PSLow       float64
	PSHigh      float64
	Method      string
	Assumptions string
}

// ExtractionMeta служебная информация о качестве извлечения
type ExtractionMeta struct {
	Warnings        []string
	ExtractionScore float64
}

// Headline возвращает однострочное описание бизнеса
func (q *QuickRead) Headline() string {
	return strings.TrimSpace(q.BusinessModel.OneLiner)
}

// TopRisks возвращает не более MaxTopRisks рисков в порядке, заданном API
func (q *QuickRead) TopRisks() []Risk {
	if len(q.Risks) <= MaxTopRisks {
		return q.Risks
	}
	return q.Risks[:MaxTopRisks]
}

// IsSet сообщает, заполнены ли условия размещения
func (t OfferingTerms) IsSet() bool {
	return t.PriceRange != "" || t.SharesOffered > 0 || t.Greenshoe > 0 || t.FloatShares > 0 || len(t.Underwriters) > 0
}

// IsSet сообщает, есть ли в оценке хоть что-то для показа
func (v Valuation) IsSet() bool {
	return v.PSLow > 0 || v.PSHigh > 0 || v.Method != "" || v.Assumptions != ""
}
