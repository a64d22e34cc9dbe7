package valueobject

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinLookbackDays = 1
	MaxLookbackDays = 365
)

// Lookback окно выборки подач в днях (Value Object)
// Нулевое значение означает "без ограничения"
type Lookback int

// NewLookback создает окно и проверяет границы
func NewLookback(days int) (Lookback, error) {
	if days < MinLookbackDays || days > MaxLookbackDays {
		return 0, fmt.Errorf("lookback must be between %d and %d days, got %d",
			MinLookbackDays, MaxLookbackDays, days)
	}
	return Lookback(days), nil
}

// ParseLookback разбирает значение из query string.
// Пустое или невалидное значение заменяется на fallback
func ParseLookback(raw string, fallback Lookback) Lookback {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	lookback, err := NewLookback(days)
	if err != nil {
		return fallback
	}
	return lookback
}

// Days возвращает количество дней
func (l Lookback) Days() int {
	return int(l)
}

// IsSet true, если окно ограничено
func (l Lookback) IsSet() bool {
	return l > 0
}
