package services

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD. An empty value yields nil.
func parseDate(errs fieldErrors, field, value string) *datatypes.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		errs.add(field, "Enter a valid date (YYYY-MM-DD).")
		return nil
	}

	date := datatypes.Date(parsed)
	return &date
}

// FormatDate renders a date column, empty for NULL.
func FormatDate(date *datatypes.Date) string {
	if date == nil {
		return ""
	}
	return time.Time(*date).Format(DateLayout)
}
