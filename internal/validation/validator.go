package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"todo-list/internal/config"
)

// Validator provides common validation utilities. Limits come from the
// validation section of the configuration, or the defaults when none is
// supplied.
type Validator struct {
	limits config.ValidationConfig
	now    func() time.Time
}

// NewValidator creates a validator with the default limits.
func NewValidator() *Validator {
	return NewValidatorWithConfig(nil)
}

// NewValidatorWithConfig creates a validator using cfg's limits.
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	limits := config.NewConfig().Validation
	if cfg != nil {
		limits = cfg.Validation
	}
	return &Validator{limits: limits, now: time.Now}
}

// WithClock replaces the clock used for future-date checks.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Limits returns the limits this validator enforces.
func (v *Validator) Limits() config.ValidationConfig {
	return v.limits
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// RuneLength counts characters rather than bytes.
func (v *Validator) RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

// IsValidStringLength checks the trimmed character count is within [min, max].
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := v.RuneLength(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidTaskID reports whether id is a well-formed task identifier.
func (v *Validator) IsValidTaskID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsFutureDate reports whether t lies strictly after the current time.
func (v *Validator) IsFutureDate(t time.Time) bool {
	return t.After(v.now())
}

// IsValidDateRange accepts open-ended ranges and ranges where start <= end.
func (v *Validator) IsValidDateRange(start, end *time.Time) bool {
	if start == nil || end == nil {
		return true
	}
	return !start.After(*end)
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeTags trims every tag and drops duplicates, keeping first
// occurrence order. Empty tags are kept as "" so the caller can report them.
func (v *Validator) NormalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
