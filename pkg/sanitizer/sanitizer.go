package sanitizer

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex     = regexp.MustCompile(`\s+`)
	unsafeFilenameRegex = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
)

// NormalizeEmail trims an address, composes it to NFC and lower-cases it with
// full Unicode case mapping, so lookups and the uniqueness check treat
// canonically equivalent addresses as one.
func NormalizeEmail(email string) string {
	email = norm.NFC.String(strings.TrimSpace(email))
	return cases.Lower(language.Und).String(email)
}

// NormalizeName composes to NFC, collapses runs of whitespace and drops
// control characters.
func NormalizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	return norm.NFC.String(strings.TrimSpace(whitespaceRegex.ReplaceAllString(name, " ")))
}

// SanitizeFilename reduces a client supplied file reference to a safe base name.
// Path components are dropped, unsafe characters replaced, and the result is
// capped at 255 bytes. An unusable name yields fallback.
func SanitizeFilename(filename, fallback string) string {
	filename = strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/")
	base := path.Base(filename)
	if base == "." || base == "/" || base == ".." {
		return fallback
	}

	safe := unsafeFilenameRegex.ReplaceAllString(base, "_")
	safe = strings.Trim(safe, " .")
	if len(safe) > 255 {
		safe = safe[:255]
	}
	if safe == "" {
		return fallback
	}
	return safe
}
