package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a submitter's address belongs to a trusted domain.
// Trusted submitters are not sent to the screening model.
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	set := make(map[string]struct{}, len(domains))
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.ToLower(strings.TrimSpace(domain))
		if d == "" {
			continue
		}
		if _, dup := set[d]; !dup {
			set[d] = struct{}{}
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized whitelist checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: set,
		logger:  logger,
	}
}

// IsWhitelisted checks if the address's domain is in the whitelist
func (c *Checker) IsWhitelisted(address string) bool {
	if len(c.domains) == 0 {
		return false
	}

	at := strings.LastIndex(address, "@")
	if at <= 0 || at == len(address)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(address[at+1:]))

	if _, ok := c.domains[domain]; !ok {
		return false
	}
	if c.logger != nil {
		c.logger.Debug("Domain is whitelisted",
			zap.String("domain", domain),
			zap.String("email", address))
	}
	return true
}

// Len returns the number of distinct whitelisted domains
func (c *Checker) Len() int {
	return len(c.domains)
}
