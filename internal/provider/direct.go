package provider

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

var disallowedDomainChars = regexp.MustCompile(`[^\p{L}\p{N}_.-]`)

// DirectDomain guesses the company's own domain and probes it.
type DirectDomain struct {
	scheme  string
	timeout time.Duration
	fetcher contact.Fetcher
	logger  *zap.Logger
}

// NewDirectDomain builds the direct website prober.
func NewDirectDomain(fetcher contact.Fetcher, timeout time.Duration, logger *zap.Logger) *DirectDomain {
	if timeout <= 0 {
		timeout = DefaultDirectTimeout
	}
	return &DirectDomain{
		scheme:  "https",
		timeout: timeout,
		fetcher: fetcher,
		logger:  nopIfNil(logger),
	}
}

// Name implements contact.Provider.
func (p *DirectDomain) Name() string {
	return NameDirect
}

// Search implements contact.Provider. A candidate is accepted only when its
// page yields an email or a phone; the probed URL becomes the website.
func (p *DirectDomain) Search(ctx context.Context, company string) contact.Outcome {
	var (
		lastErr error
		fetched bool
	)
	for _, domain := range DomainCandidates(company) {
		if ctx.Err() != nil {
			return contact.Failed(ctx.Err())
		}
		target := p.scheme + "://" + domain
		resp, err := fetchPage(ctx, p.fetcher, target, p.timeout)
		if err != nil {
			p.logger.Debug("domain probe failed",
				zap.String("company", company),
				zap.String("url", target),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		fetched = true
		fields := extractBody(resp)
		if fields.Email != "" || fields.Phone != "" {
			fields.Website = target
			return contact.Found(fields)
		}
	}
	if fetched || lastErr == nil {
		return contact.Empty()
	}
	return contact.Failed(lastErr)
}

// DomainCandidates derives likely domains from a company name: the
// lower-cased name without spaces under .com, .co.th and .net, plus www
// variants. Characters that cannot appear in a host label are dropped.
func DomainCandidates(company string) []string {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(company), " ", ""))
	raw := []string{
		base + ".com",
		base + ".co.th",
		base + ".net",
		"www." + base + ".com",
		"www." + base + ".co.th",
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		cleaned := disallowedDomainChars.ReplaceAllString(candidate, "")
		if strings.HasPrefix(cleaned, ".") || strings.HasPrefix(cleaned, "www..") {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
