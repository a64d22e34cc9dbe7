package valueobject

import "strings"

// FormFilter список типов форм для фильтрации (S-1, F-1, ...)
type FormFilter []string

// ParseFormFilter разбирает список форм через запятую.
// Пустые элементы отбрасываются, дубликаты удаляются с сохранением порядка
func ParseFormFilter(raw string) FormFilter {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	forms := make(FormFilter, 0, len(parts))

	for _, part := range parts {
		form := strings.ToUpper(strings.TrimSpace(part))
		if form == "" {
			continue
		}
		if _, ok := seen[form]; ok {
			continue
		}
		seen[form] = struct{}{}
		forms = append(forms, form)
	}

	if len(forms) == 0 {
		return nil
	}
	return forms
}

// String склеивает формы обратно в формат upstream параметра form
func (f FormFilter) String() string {
	return strings.Join(f, ",")
}

// IsEmpty true, если фильтр не задан
func (f FormFilter) IsEmpty() bool {
	return len(f) == 0
}
