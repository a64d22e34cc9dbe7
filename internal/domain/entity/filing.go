package entity

import "strings"

const unknownCompany = "Unknown Company"

// Filing представляет одну регуляторную подачу (S-1, F-1, 424B4 ...)
// Все поля опциональны: upstream может вернуть частично заполненную запись
type Filing struct {
	CIK           string
	CompanyName   string
	Form          string
	Accession     string
	FilingDate    string
	FilingURL     string
	DocPrimaryURL string
	Status        string
}

// DisplayCompany возвращает название компании или заглушку если оно пустое
func (f Filing) DisplayCompany() string {
	if name := strings.TrimSpace(f.CompanyName); name != "" {
		return name
	}
	return unknownCompany
}
