// Package domains decides which hosts the server may fetch from or serve binaries from.
package domains

import (
	"net/url"
	"strings"
)

// Validator checks URLs against a fixed domain allow-list.
// It is immutable after construction and safe for concurrent use.
type Validator struct {
	domains []string
}

// NewValidator builds a Validator. Domains are matched case-insensitively;
// empty entries are dropped.
func NewValidator(allowed []string) *Validator {
	normalized := make([]string, 0, len(allowed))
	for _, d := range allowed {
		d = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &Validator{domains: normalized}
}

// Domains returns a copy of the normalized allow-list
func (v *Validator) Domains() []string {
	return append([]string(nil), v.domains...)
}

// IsAllowed reports whether rawURL is an https URL whose host equals an
// allowed domain or is a subdomain of one. Unparseable input is rejected.
func (v *Validator) IsAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, d := range v.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
