package dto

import (
	"github.com/dreschagin/ipo-quickread/internal/domain/entity"
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"
)

// EmbedPath путь страницы QuickRead
const EmbedPath = "/embed"

// FilingDTO представляет подачу для отображения
type FilingDTO struct {
	CIK           string `json:"cik,omitempty"`
	Company       string `json:"company"`
	Form          string `json:"form,omitempty"`
	Accession     string `json:"accession,omitempty"`
	FilingDate    string `json:"filing_date,omitempty"`
	FilingURL     string `json:"filing_url,omitempty"`
	DocPrimaryURL string `json:"doc_primary_url,omitempty"`
	Status        string `json:"status,omitempty"`
	EmbedURL      string `json:"embed_url,omitempty"` // пусто, если accession отсутствует
}

// FilingListDTO результат выборки подач
type FilingListDTO struct {
	Available    bool         `json:"available"`
	LookbackDays int          `json:"lookback_days,omitempty"`
	Forms        string       `json:"forms,omitempty"`
	Filings      []*FilingDTO `json:"filings"`
}

// IsEmpty true, если показывать нечего
func (l *FilingListDTO) IsEmpty() bool {
	return len(l.Filings) == 0
}

// EmbedURL строит ссылку на страницу QuickRead с закодированным acc
func EmbedURL(accession valueobject.Accession) string {
	return EmbedPath + "?acc=" + accession.QueryEscape()
}

// FromFiling конвертирует entity в DTO
func FromFiling(f entity.Filing) *FilingDTO {
	dto := &FilingDTO{
		CIK:           f.CIK,
		Company:       f.DisplayCompany(),
		Form:          f.Form,
		Accession:     f.Accession,
		FilingDate:    f.FilingDate,
		FilingURL:     f.FilingURL,
		DocPrimaryURL: f.DocPrimaryURL,
		Status:        f.Status,
	}

	if acc, err := valueobject.NewAccession(f.Accession); err == nil {
		dto.EmbedURL = EmbedURL(acc)
	}

	return dto
}

// ToFilingDTOs конвертирует список, сохраняя порядок
func ToFilingDTOs(filings []entity.Filing) []*FilingDTO {
	dtos := make([]*FilingDTO, 0, len(filings))
	for _, f := range filings {
		dtos = append(dtos, FromFiling(f))
	}
	return dtos
}
