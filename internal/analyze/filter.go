package analyze

import (
	"regexp"
	"strings"
	"unicode"
)

// Patterns for obviously technical strings: package names, type descriptors,
// array descriptors, bare signature letters, method signatures, constants.
var technicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z]+\.[a-z]+\.`),
	regexp.MustCompile(`^L[A-Z]`),
	regexp.MustCompile(`^\[`),
	regexp.MustCompile(`^[IV]$`),
	regexp.MustCompile(`^\([LIV\[;]*\)[LIV\[;]*$`),
	regexp.MustCompile(`^[A-Z_]+$`),
}

// UserVisible reports whether a class-file string literal plausibly reaches a
// user. Identifiers, paths, descriptors and constant names are filtered so the
// extraction report is not dominated by technical noise. The rewriter does not
// consult this: whatever the translation store matches gets rewritten.
func UserVisible(text string) bool {
	t := strings.TrimSpace(text)

	if len(t) <= 3 {
		return false
	}
	if strings.ContainsAny(t, `/\`) {
		return false
	}
	if isAllDigits(t) {
		return false
	}
	// Upper-case constant names, unless it reads like a sentence.
	if t == strings.ToUpper(t) && t != strings.ToLower(t) && !strings.Contains(t, " ") {
		return false
	}
	if strings.Contains(t, "_") {
		return false
	}
	if isCamelCase(t) {
		return false
	}
	for _, re := range technicalPatterns {
		if re.MatchString(t) {
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

var camelPattern = regexp.MustCompile(`[a-z][A-Z]|[A-Z][a-z][A-Z]`)

// isCamelCase detects PascalCase and camelCase identifiers.
func isCamelCase(s string) bool {
	if strings.Contains(s, " ") || len(s) < 2 {
		return false
	}
	var hasUpper, hasLower bool
	for _, r := range s {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if !hasUpper || !hasLower {
		return false
	}
	return camelPattern.MatchString(s)
}
