package validator

import (
	"fmt"
	"strings"
	"unicode"
)

// commonPasswords is a short list of frequently compromised passwords.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "123456": {}, "12345678": {},
	"123456789": {}, "1234567890": {}, "qwerty": {}, "qwerty123": {}, "abc123": {},
	"letmein": {}, "welcome": {}, "monkey": {}, "dragon": {}, "sunshine": {},
	"iloveyou": {}, "admin": {}, "admin123": {}, "football": {}, "baseball": {},
	"111111": {}, "000000": {}, "passw0rd": {}, "trustno1": {}, "master": {},
}

// PasswordPolicy describes what a new password must satisfy.
// MaxBytes guards the 72-byte input limit of bcrypt.
type PasswordPolicy struct {
	MinLength        int  `env:"PASSWORD_MIN_LENGTH" envDefault:"1"`
	MaxBytes         int  `env:"PASSWORD_MAX_BYTES" envDefault:"72"`
	RequireUppercase bool `env:"PASSWORD_REQUIRE_UPPER" envDefault:"false"`
	RequireLowercase bool `env:"PASSWORD_REQUIRE_LOWER" envDefault:"false"`
	RequireDigits    bool `env:"PASSWORD_REQUIRE_DIGIT" envDefault:"false"`
	RequireSpecial   bool `env:"PASSWORD_REQUIRE_SPECIAL" envDefault:"false"`
	RejectCommon     bool `env:"PASSWORD_REJECT_COMMON" envDefault:"false"`
}

// DefaultPasswordPolicy only requires a non-empty password that bcrypt can hash.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 1, MaxBytes: 72}
}

// StrictPasswordPolicy is the policy recommended for public deployments.
func StrictPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        8,
		MaxBytes:         72,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigits:    true,
		RejectCommon:     true,
	}
}

// Password returns the rules that enforce policy on value.
func Password(field, value string, policy PasswordPolicy) []Rule {
	rules := []Rule{NotEmpty(field, value)}
	if policy.MaxBytes > 0 {
		rules = append(rules, MaxBytes(field, value, policy.MaxBytes))
	}
	if policy.MinLength > 1 {
		rules = append(rules, Rule{
			Check: func() bool { return len([]rune(value)) >= policy.MinLength },
			Error: ValidationError{
				Field:          field,
				Message:        fmt.Sprintf("must be at least %d characters long", policy.MinLength),
				TranslationKey: "validation.password_min_length",
			},
		})
	}
	if policy.RequireUppercase {
		rules = append(rules, charClass(field, value, unicode.IsUpper, "an uppercase letter", "validation.password_uppercase"))
	}
	if policy.RequireLowercase {
		rules = append(rules, charClass(field, value, unicode.IsLower, "a lowercase letter", "validation.password_lowercase"))
	}
	if policy.RequireDigits {
		rules = append(rules, charClass(field, value, unicode.IsDigit, "a digit", "validation.password_digit"))
	}
	if policy.RequireSpecial {
		isSpecial := func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }
		rules = append(rules, charClass(field, value, isSpecial, "a special character", "validation.password_special"))
	}
	if policy.RejectCommon {
		rules = append(rules, NotCommonPassword(field, value))
	}
	return rules
}

// NotCommonPassword rejects passwords from the well-known compromised list.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, common := commonPasswords[strings.ToLower(value)]
			return !common
		},
		Error: ValidationError{
			Field:          field,
			Message:        "password is too common, please choose a different one",
			TranslationKey: "validation.password_common",
		},
	}
}

func charClass(field, value string, match func(rune) bool, what, key string) Rule {
	return Rule{
		Check: func() bool { return strings.IndexFunc(value, match) >= 0 },
		Error: ValidationError{
			Field:          field,
			Message:        "password must contain " + what,
			TranslationKey: key,
		},
	}
}
