package campaign

import (
	"strings"
	"unicode"
)

const (
	// DefaultCountryCode is used when the form leaves the prefix empty
	DefaultCountryCode = "+971"

	maxCountryCodeLen = 4
	maxMobileLen      = 10
)

// NormalizeName trims and upper-cases the display name
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeCountryCode keeps digits and '+', at most four characters
func NormalizeCountryCode(cc string) string {
	cc = keep(cc, func(r rune) bool { return r == '+' || isDigit(r) }, maxCountryCodeLen)
	if cc == "" {
		return DefaultCountryCode
	}
	return cc
}

// NormalizeMobile keeps digits only, at most ten
func NormalizeMobile(mobile string) string {
	return keep(mobile, isDigit, maxMobileLen)
}

func isDigit(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsDigit(r)
}

func keep(s string, allowed func(rune) bool, limit int) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == limit {
			break
		}
		if allowed(r) {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}
