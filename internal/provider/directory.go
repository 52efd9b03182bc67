package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

// DefaultDirectoryURLs are the Thai business directories searched, in order.
// Each is a format string taking the escaped company name.
var DefaultDirectoryURLs = []string{
	"https://www.yellowpages.co.th/search?q=%s",
	"https://www.thailandyp.com/search.php?keyword=%s",
}

// Directory searches business listing sites.
type Directory struct {
	urls    []string
	timeout time.Duration
	fetcher contact.Fetcher
	logger  *zap.Logger
}

// NewDirectory builds the directory provider. Empty urls selects DefaultDirectoryURLs.
func NewDirectory(fetcher contact.Fetcher, urls []string, timeout time.Duration, logger *zap.Logger) *Directory {
	if len(urls) == 0 {
		urls = DefaultDirectoryURLs
	}
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return &Directory{
		urls:    append([]string(nil), urls...),
		timeout: timeout,
		fetcher: fetcher,
		logger:  nopIfNil(logger),
	}
}

// Name implements contact.Provider.
func (p *Directory) Name() string {
	return NameDirectory
}

// Search implements contact.Provider.
func (p *Directory) Search(ctx context.Context, company string) contact.Outcome {
	var (
		lastErr error
		fetched bool
	)
	for _, pattern := range p.urls {
		if ctx.Err() != nil {
			return contact.Failed(ctx.Err())
		}
		target := fmt.Sprintf(pattern, url.QueryEscape(company))
		resp, err := fetchPage(ctx, p.fetcher, target, p.timeout)
		if err != nil {
			p.logger.Debug("directory lookup failed",
				zap.String("company", company),
				zap.String("url", target),
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
	if fetched || lastErr == nil {
		return contact.Empty()
	}
	return contact.Failed(lastErr)
}
