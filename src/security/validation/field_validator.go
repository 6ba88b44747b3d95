package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrValidationFailed is the sentinel wrapped by every validation error, so
// handlers can classify failures with errors.Is.
var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxDescriptionLength   = 1024
	MaxNotesLength         = 2048
	MaxTagLength           = 50
	MaxTagCount            = 20
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// --- Date Validators ---

const dateLayout = "2006-01-02"

// ValidateDateString checks if a string is a valid calendar date in "YYYY-MM-DD" format.
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, fieldName, s)
	}
	if t.Format(dateLayout) != trimmed {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is an invalid date (e.g., day/month mismatch)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// ValidateDateNotPast checks that a "YYYY-MM-DD" date is today or later.
func ValidateDateNotPast(s, fieldName string, now time.Time) (time.Time, error) {
	t, err := ValidateDateString(s, fieldName)
	if err != nil {
		return time.Time{}, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if t.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s cannot be in the past", ErrValidationFailed, fieldName)
	}
	return t, nil
}

// --- Enum Validator ---

// ValidateEnum checks membership in the allowed set, reporting the set on failure.
func ValidateEnum(value, fieldName string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s ('%s') must be one of: %s", ErrValidationFailed, fieldName, value, strings.Join(allowed, ", "))
}

// --- Tag Validator ---

// ValidateTags bounds the tag list and each tag's length; empty tags are rejected.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagCount {
		return fmt.Errorf("%w: at most %d tags are allowed", ErrValidationFailed, MaxTagCount)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: tags cannot be empty", ErrValidationFailed)
		}
		if err := ValidateStringMaxLength(tag, MaxTagLength, "tag"); err != nil {
			return err
		}
	}
	return nil
}
