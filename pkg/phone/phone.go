// Package phone normalises Kenyan mobile numbers into E.164 form.
package phone

import (
	"regexp"
	"strings"
)

// CountryCode is prefixed to local numbers.
const CountryCode = "+254"

var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// Format rewrites local ("07…", "01…") and bare country-code ("254…") numbers into
// "+254…" form. Numbers already in "+254…" form and unrecognised input are returned
// unchanged; Format never rejects.
func Format(raw string) string {
	p := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(p, "07"), strings.HasPrefix(p, "01"):
		return CountryCode + p[1:]
	case strings.HasPrefix(p, "254"):
		return "+" + p
	default:
		return p
	}
}

// Validate reports whether the formatted number is a well-formed E.164 number.
func Validate(raw string) bool {
	return e164.MatchString(Format(raw))
}
