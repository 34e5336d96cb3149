package validators

import (
	"regexp"
	"strings"
)

// lkLocal is the nine digits that follow +94.
var lkLocal = regexp.MustCompile(`^(11|70|71|72|75|76|77|78)\d{7}$`)

// NormalizeLKPhone reduces any common spelling of a Sri Lankan number
// (+94XXXXXXXXX, 0XXXXXXXXX, 94XXXXXXXXX, spaced or dashed) to its nine
// local digits. Longer inputs keep their last nine digits.
func NormalizeLKPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "94"):
		return digits[2:]
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	case len(digits) > 9:
		return digits[len(digits)-9:]
	}
	return digits
}

func IsLKPhone(nine string) bool {
	return lkLocal.MatchString(nine)
}

// ToE164 prefixes nine local digits with +94. Empty stays empty.
func ToE164(nine string) string {
	if nine == "" {
		return ""
	}
	return "+94" + nine
}
