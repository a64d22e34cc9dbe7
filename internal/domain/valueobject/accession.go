package valueobject

import (
	"errors"
	"net/url"
	"strings"
)

// ErrMissingAccession возвращается, когда идентификатор подачи не передан
var ErrMissingAccession = errors.New("accession is required")

// Accession уникальный идентификатор подачи (Value Object)
type Accession string

// NewAccession нормализует идентификатор и проверяет, что он не пустой
func NewAccession(raw string) (Accession, error) {
	acc := strings.TrimSpace(raw)
	if acc == "" {
		return "", ErrMissingAccession
	}
	return Accession(acc), nil
}

// String возвращает строковое представление
func (a Accession) String() string {
	return string(a)
}

// QueryEscape кодирует идентификатор для query параметра acc
func (a Accession) QueryEscape() string {
	return url.QueryEscape(string(a))
}

// PathEscape кодирует идентификатор для сегмента пути upstream API
func (a Accession) PathEscape() string {
	return url.PathEscape(string(a))
}
