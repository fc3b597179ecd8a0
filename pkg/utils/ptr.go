package utils

import "time"

func ToPtr[T any](v T) *T {
	return &v
}

// FormatTimePtr - nil для пустой даты, иначе дата в формате API.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
