package view

import (
	"net/http"
	"strconv"

	"github.com/dreschagin/ipo-quickread/internal/application/dto"
)

//go:generate templ generate

const (
	siteTitleSuffix      = " · IPO QuickRead"
	defaultNoDataMessage = "No data available."
)

// LayoutOptions управляет оформлением страницы
type LayoutOptions struct {
	Title string
	// Embedded убирает шапку с навигацией для страниц, встраиваемых в iframe
	Embedded bool
}

func pageTitle(title string) string {
	return title + siteTitleSuffix
}

func lookbackSubtitle(days int) string {
	return "Filed in the last " + strconv.Itoa(days) + " days"
}

// filingTitle компания · форма · дата, пустые части пропускаются
func filingTitle(f *dto.FilingDTO) string {
	return joinNonEmpty(" · ", f.Company, f.Form, f.FilingDate)
}

func noDataMessage(message string) string {
	if message == "" {
		return defaultNoDataMessage
	}
	return message
}

func statusTitle(status int) string {
	return http.StatusText(status)
}

// statusLine 502 -> "502 Bad Gateway"
func statusLine(status int) string {
	return strconv.Itoa(status) + " " + http.StatusText(status)
}
