package validators

import (
	"net"
	"strings"
)

var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"yopmail.com":       {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"temp-mail.org":     {},
	"tempmail.dev":      {},
	"discard.email":     {},
	"getnada.com":       {},
	"trashmail.com":     {},
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// IsDisposableEmail reports whether email uses a known throwaway domain.
func IsDisposableEmail(email string) bool {
	_, ok := disposableDomains[emailDomain(email)]
	return ok
}

// IsEmailDomainValid looks the domain up in DNS. It is not part of the
// booking rules because it needs the network.
func IsEmailDomainValid(email string) bool {
	domain := emailDomain(email)
	if domain == "" {
		return false
	}

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
