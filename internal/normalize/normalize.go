// Package normalize cleans free-text legacy values.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MobilePrefix marks a Dutch mobile number.
const MobilePrefix = "06"

var (
	// ErrNotText is returned when a non-text value is cleaned.
	ErrNotText = errors.New("value is not text")
	// ErrNoDigits is returned when a house number holds no digits at all.
	ErrNoDigits = errors.New("house number contains no digits")
	// ErrBadHouseNumber is returned for a house number outside 0..MaxHouseNumber.
	ErrBadHouseNumber = errors.New("house number out of range")
)

// MaxHouseNumber is the largest house number the target schema can store.
const MaxHouseNumber = math.MaxInt32

// Cleanup trims a text value. Blank or absent values yield nil.
func Cleanup(value interface{}) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return Text(v), nil
	case *string:
		if v == nil {
			return nil, nil
		}
		return Text(*v), nil
	case []byte:
		return Text(string(v)), nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotText, value)
	}
}

// Text trims s and returns nil when nothing is left.
func Text(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// HouseNumber extracts the numeric part of a combined house number such as "12a".
func HouseNumber(raw string) (*int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, trimmed)
	if digits == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoDigits, raw)
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > MaxHouseNumber {
		return nil, fmt.Errorf("%w: %q", ErrBadHouseNumber, raw)
	}
	number := int(n)
	return &number, nil
}

// HouseNumberAddition returns what remains of raw once the numeric part is removed.
func HouseNumberAddition(raw string, number *int) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	rest := raw
	if number != nil {
		rest = strings.ReplaceAll(raw, strconv.Itoa(*number), "")
	}
	return Text(rest)
}

// SplitHouseNumber decomposes raw into its number and addition.
func SplitHouseNumber(raw string) (*int, *string, error) {
	number, err := HouseNumber(raw)
	if err != nil {
		return nil, nil, err
	}
	return number, HouseNumberAddition(raw, number), nil
}

// Phones holds classified phone numbers.
type Phones struct {
	Mobile    *string
	Telephone *string
}

// ClassifyPhones sorts candidates into mobile and landline numbers.
// A later candidate replaces an earlier one of the same kind; blank ones are ignored.
func ClassifyPhones(candidates ...string) Phones {
	var phones Phones
	for _, candidate := range candidates {
		cleaned := Text(candidate)
		if cleaned == nil {
			continue
		}
		if strings.HasPrefix(*cleaned, MobilePrefix) {
			phones.Mobile = cleaned
		} else {
			phones.Telephone = cleaned
		}
	}
	return phones
}

// Email trims and lower-cases an email address.
func Email(raw string) *string {
	cleaned := Text(raw)
	if cleaned == nil {
		return nil
	}
	lower := strings.ToLower(*cleaned)
	return &lower
}

// PostalCode removes all whitespace and upper-cases a postal code.
func PostalCode(raw string) *string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if compact == "" {
		return nil
	}
	upper := strings.ToUpper(compact)
	return &upper
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Value returns the text behind p, or "" when absent.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
