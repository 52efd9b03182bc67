// Package provider implements the information sources queried for a company:
// a rendered Google search, plain DuckDuckGo and Bing result pages, direct
// probing of guessed company domains, and Thai business directories.
//
// Every provider fetches through a contact.Fetcher, hands the body to the
// extract package and reports a typed contact.Outcome. Remote failures are
// logged and absorbed here; they never reach the orchestrator as errors.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
	"github.com/JakeFAU/contact-finder/internal/extract"
)

// Labels recorded as the Source of a record.
const (
	NameBrowser    = "Google Browser"
	NameDuckDuckGo = "DuckDuckGo"
	NameBing       = "Bing"
	NameDirect     = "Direct Website"
	NameDirectory  = "Business Directories"
)

// Default per-request timeouts.
const (
	DefaultSearchTimeout = 15 * time.Second
	DefaultDirectTimeout = 10 * time.Second
)

// fetchPage fetches target and rejects transport errors, challenge pages and
// non-2xx responses.
func fetchPage(
	ctx context.Context,
	fetcher contact.Fetcher,
	target string,
	timeout time.Duration,
) (contact.FetchResponse, error) {
	resp, err := fetcher.Fetch(ctx, contact.FetchRequest{URL: target, Timeout: timeout})
	if err != nil {
		return contact.FetchResponse{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	if isBlocked(resp) {
		return contact.FetchResponse{}, fmt.Errorf("fetch %s: %w", target, contact.ErrBlocked)
	}
	if !resp.OK() {
		return contact.FetchResponse{}, fmt.Errorf("fetch %s: %w: %d", target, contact.ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp, nil
}

func extractBody(resp contact.FetchResponse) contact.Fields {
	return extract.ExtractHTML(string(resp.Body))
}

var challengeMarkers = []string{
	"our systems have detected unusual traffic",
	"cf-browser-verification",
	"checking your browser before accessing",
	"please solve this challenge",
}

// isBlocked recognizes anti-bot interstitials so they are not mined for
// contacts. Generic captcha mentions only count on tiny pages; full result
// pages often reference captcha scripts.
func isBlocked(resp contact.FetchResponse) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if strings.Contains(resp.URL, "/sorry/") {
		return true
	}
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Headers.Get("cf-ray") != "" || strings.EqualFold(resp.Headers.Get("server"), "cloudflare") {
			return true
		}
	}

	lower := strings.ToLower(string(resp.Body))
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return len(resp.Body) < 4096 && strings.Contains(lower, "captcha")
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
