package utils

import "time"

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// CompletedYears - число полных лет между from и now (по годовщинам, без дробной части).
// Покупка 2020-06-15: на 2024-06-14 это 3 года, на 2024-06-15 уже 4.
func CompletedYears(from, now time.Time) int {
	if now.Before(from) {
		return 0
	}
	years := now.Year() - from.Year()
	if now.Month() < from.Month() || (now.Month() == from.Month() && now.Day() < from.Day()) {
		years--
	}
	return years
}

// StartOfDay обрезает время до полуночи в той же зоне.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
