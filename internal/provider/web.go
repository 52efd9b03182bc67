package provider

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

// Search endpoints queried over plain HTTP.
const (
	DuckDuckGoSearchURL = "https://duckduckgo.com/html/?q="
	BingSearchURL       = "https://www.bing.com/search?q="
)

// WebSearch runs one query against a search engine's HTML results page.
type WebSearch struct {
	name      string
	searchURL string
	timeout   time.Duration
	fetcher   contact.Fetcher
	logger    *zap.Logger
}

// NewDuckDuckGo builds the DuckDuckGo HTML provider.
func NewDuckDuckGo(fetcher contact.Fetcher, timeout time.Duration, logger *zap.Logger) *WebSearch {
	return newWebSearch(NameDuckDuckGo, DuckDuckGoSearchURL, fetcher, timeout, logger)
}

// NewBing builds the Bing provider.
func NewBing(fetcher contact.Fetcher, timeout time.Duration, logger *zap.Logger) *WebSearch {
	return newWebSearch(NameBing, BingSearchURL, fetcher, timeout, logger)
}

func newWebSearch(
	name, searchURL string,
	fetcher contact.Fetcher,
	timeout time.Duration,
	logger *zap.Logger,
) *WebSearch {
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return &WebSearch{
		name:      name,
		searchURL: searchURL,
		timeout:   timeout,
		fetcher:   fetcher,
		logger:    nopIfNil(logger),
	}
}

// Name implements contact.Provider.
func (p *WebSearch) Name() string {
	return p.name
}

// Query returns the search phrase sent for company.
func (p *WebSearch) Query(company string) string {
	return company + " contact email phone thailand"
}

// Search implements contact.Provider.
func (p *WebSearch) Search(ctx context.Context, company string) contact.Outcome {
	target := p.searchURL + url.QueryEscape(p.Query(company))
	resp, err := fetchPage(ctx, p.fetcher, target, p.timeout)
	if err != nil {
		p.logger.Debug("web search failed",
			zap.String("provider", p.name),
			zap.String("company", company),
			zap.Error(err),
		)
		return contact.Failed(err)
	}
	return contact.Found(extractBody(resp))
}
