package sqldb

import (
	"database/sql"
	"time"
)

// TimeLayout is a fixed-width UTC RFC3339 layout. Every stored timestamp
// has the same width so text comparison matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimeForDB formats t in UTC using TimeLayout
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatTimePtrForDB formats a *time.Time value, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses a stored timestamp. Any RFC3339 value is accepted.
func ParseTimeFromDB(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseNullTimeFromDB parses a nullable stored timestamp.
func ParseNullTimeFromDB(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := ParseTimeFromDB(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NullableString maps nil to SQL NULL.
func NullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// StringPtr maps SQL NULL to nil.
func StringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
