package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty string", "", false},
		{"whitespace only", "   ", false},
		{"tab and newline", "\t\n", false},
		{"valid string", "hello", true},
		{"leading and trailing spaces", "  hello  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, validator.IsNonEmptyString(tt.input))
		})
	}
}

func TestValidator_IsValidStringLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		min      int
		max      int
		expected bool
	}{
		{"empty string with min 1", "", 1, 10, false},
		{"too long", "very long string", 1, 5, false},
		{"exactly max", "hello", 1, 5, true},
		{"trims before counting", "  hello  ", 1, 5, true},
		{"counts runes not bytes", "日本語のタスク", 1, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, validator.IsValidStringLength(tt.input, tt.min, tt.max))
		})
	}
}

func TestValidator_IsValidTaskID(t *testing.T) {
	validator := NewValidator()

	assert.True(t, validator.IsValidTaskID("6f1c1f0a-1b5e-4c34-9a57-8a1d2b7d6b11"))
	assert.False(t, validator.IsValidTaskID("not-a-uuid"))
	assert.False(t, validator.IsValidTaskID(""))
}

func TestValidator_IsFutureDate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	validator := NewValidator().WithClock(func() time.Time { return now })

	assert.True(t, validator.IsFutureDate(now.Add(time.Minute)))
	assert.False(t, validator.IsFutureDate(now))
	assert.False(t, validator.IsFutureDate(now.Add(-time.Minute)))
}

func TestValidator_IsValidDateRange(t *testing.T) {
	validator := NewValidator()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	assert.True(t, validator.IsValidDateRange(nil, nil))
	assert.True(t, validator.IsValidDateRange(&start, nil))
	assert.True(t, validator.IsValidDateRange(&start, &end))
	assert.True(t, validator.IsValidDateRange(&start, &start))
	assert.False(t, validator.IsValidDateRange(&end, &start))
}

func TestValidator_NormalizeTags(t *testing.T) {
	validator := NewValidator()

	assert.Equal(t, []string{}, validator.NormalizeTags(nil))
	assert.Equal(t, []string{"work", "home"}, validator.NormalizeTags([]string{" work", "home ", "work"}))
	assert.Equal(t, []string{"a", ""}, validator.NormalizeTags([]string{"a", " ", ""}))
}
