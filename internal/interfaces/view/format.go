package view

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// placeholder для отсутствующих значений в таблицах
const placeholder = "—"

var printer = message.NewPrinter(language.English)

// formatCount форматирует целое с разделителями тысяч: 10000000 -> 10,000,000
func formatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// formatUSD форматирует сумму в долларах без центов
func formatUSD(amount float64) string {
	if amount < 0 {
		return "-$" + printer.Sprintf("%.0f", -amount)
	}
	return "$" + printer.Sprintf("%.0f", amount)
}

// formatPercent 40 -> "40%", 32.5 -> "32.5%"
func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

func optionalUSD(amount float64) string {
	if amount <= 0 {
		return placeholder
	}
	return formatUSD(amount)
}

func optionalPercent(p float64) string {
	if p <= 0 {
		return placeholder
	}
	return formatPercent(p)
}

// formatAmount строка финансовой таблицы: nil -> "—", убыток со знаком минус
func formatAmount(v *float64) string {
	if v == nil {
		return placeholder
	}
	return formatUSD(*v)
}

// formatMargin принимает долю (0.45) или проценты (45), показывает "45%"
func formatMargin(v *float64) string {
	if v == nil {
		return placeholder
	}

	m := *v
	if m >= -1 && m <= 1 {
		m *= 100
	}
	return formatPercent(math.Round(m*10) / 10)
}

func formatMultiple(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "x"
}

// formatMultipleRange 2.5, 4 -> "2.5x to 4x"; одна граница выводится как есть
func formatMultipleRange(low, high float64) string {
	switch {
	case low > 0 && high > 0 && low != high:
		return formatMultiple(low) + " to " + formatMultiple(high)
	case low > 0:
		return formatMultiple(low)
	case high > 0:
		return formatMultiple(high)
	}
	return placeholder
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// joinNonEmpty склеивает непустые значения через разделитель
func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
