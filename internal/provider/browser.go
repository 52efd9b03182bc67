package provider

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

// GoogleSearchURL is the query endpoint rendered by BrowserSearch.
const GoogleSearchURL = "https://www.google.com/search?q="

// BrowserSearch renders Google result pages in a headless browser, trying a
// Thai query, an English query and an exact-name query in turn.
type BrowserSearch struct {
	fetcher   contact.Fetcher
	searchURL string
	logger    *zap.Logger
}

// NewBrowserSearch wires a BrowserSearch over a rendering fetcher.
func NewBrowserSearch(fetcher contact.Fetcher, logger *zap.Logger) *BrowserSearch {
	return &BrowserSearch{
		fetcher:   fetcher,
		searchURL: GoogleSearchURL,
		logger:    nopIfNil(logger),
	}
}

// Name implements contact.Provider.
func (p *BrowserSearch) Name() string {
	return NameBrowser
}

// Queries returns the query variants tried for company, in order.
func (p *BrowserSearch) Queries(company string) []string {
	return []string{
		company + " ติดต่อ เบอร์โทร อีเมล",
		company + " contact phone email thailand",
		`"` + company + `" email phone website`,
	}
}

// Search implements contact.Provider. A variant that times out or is
// challenged moves on to the next one.
func (p *BrowserSearch) Search(ctx context.Context, company string) contact.Outcome {
	var (
		lastErr error
		fetched bool
	)
	for _, query := range p.Queries(company) {
		if ctx.Err() != nil {
			return contact.Failed(fmt.Errorf("browser search canceled: %w", ctx.Err()))
		}
		target := p.searchURL + url.QueryEscape(query)
		resp, err := fetchPage(ctx, p.fetcher, target, 0)
		if err != nil {
			p.logger.Debug("browser query failed",
				zap.String("company", company),
				zap.String("query", query),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		fetched = true
		if fields := extractBody(resp); fields.Any() {
			return contact.Found(fields)
		}
	}
	if fetched {
		return contact.Empty()
	}
	return contact.Failed(lastErr)
}

// Close releases the underlying browser session, if any.
func (p *BrowserSearch) Close() error {
	if closer, ok := p.fetcher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
	}
	return nil
}
