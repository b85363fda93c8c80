package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var digitsRegex = regexp.MustCompile(`^[0-9]+$`)

// Required fails for empty or whitespace-only values.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}
}

// NotEmpty fails only for the empty string; whitespace counts as content.
func NotEmpty(field, value string) Rule {
	return Rule{
		Check: func() bool { return value != "" },
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}
}

// MaxLen limits the number of characters (runes).
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey: "validation.max_length",
		},
	}
}

// MaxBytes limits the encoded length in bytes.
func MaxBytes(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at most %d bytes long", max),
			TranslationKey: "validation.max_bytes",
		},
	}
}

// ValidEmail accepts a bare RFC 5322 address whose domain has at least one dot.
// Display-name forms like "Alice <a@b.c>" are rejected.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			value = strings.TrimSpace(value)
			if value == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value || addr.Name != "" {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return strings.Contains(domain, ".")
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
		},
	}
}

// NumericCode accepts exactly length ASCII digits.
func NumericCode(field, value string, length int) Rule {
	return Rule{
		Check: func() bool {
			value = strings.TrimSpace(value)
			return len(value) == length && digitsRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be a %d-digit code", length),
			TranslationKey: "validation.numeric_code",
		},
	}
}

// OneOf accepts only the listed values.
func OneOf(field, value string, allowed ...string) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:          field,
			Message:        "must be one of: " + strings.Join(allowed, ", "),
			TranslationKey: "validation.one_of",
		},
	}
}
