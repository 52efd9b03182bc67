package cmd

import (
	"context"
	"fmt"

	gpubsub "cloud.google.com/go/pubsub"
	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/config"
	"github.com/JakeFAU/contact-finder/internal/contact"
	collyfetcher "github.com/JakeFAU/contact-finder/internal/fetcher/colly"
	"github.com/JakeFAU/contact-finder/internal/fetcher/headless"
	"github.com/JakeFAU/contact-finder/internal/policy/ratelimit"
	"github.com/JakeFAU/contact-finder/internal/provider"
	pubsubpublisher "github.com/JakeFAU/contact-finder/internal/publisher/pubsub"
	"github.com/JakeFAU/contact-finder/internal/search"
	"github.com/JakeFAU/contact-finder/internal/storage/gcs"
	"github.com/JakeFAU/contact-finder/internal/storage/local"
	memorystorage "github.com/JakeFAU/contact-finder/internal/storage/memory"
)

// buildSearcher assembles the provider chain in priority order: browser
// search, DuckDuckGo, Bing, direct domains, directories.
func buildSearcher(cfg config.Config, logger *zap.Logger) (*search.Orchestrator, error) {
	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.HTTP.PerHostRPS,
		DefaultBurst: cfg.HTTP.PerHostBurst,
	})
	httpFetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
		Timeout:        cfg.SearchTimeout(),
		Limiter:        limiter,
	})

	var providers []contact.Provider
	if cfg.Headless.Enabled {
		settleMin, settleMax := cfg.SettleRange()
		browser, err := headless.NewChromedp(headless.Config{
			UserAgent:         cfg.HTTP.UserAgent,
			AcceptLanguage:    cfg.HTTP.AcceptLanguage,
			ExecPath:          cfg.Headless.ExecPath,
			NavigationTimeout: cfg.NavTimeout(),
			SettleMin:         settleMin,
			SettleMax:         settleMax,
		})
		if err != nil {
			return nil, fmt.Errorf("init headless browser: %w", err)
		}
		providers = append(providers, provider.NewBrowserSearch(browser, logger.Named("browser")))
	} else {
		logger.Info("headless browser disabled; browser search skipped")
	}
	providers = append(providers,
		provider.NewDuckDuckGo(httpFetcher, cfg.SearchTimeout(), logger.Named("duckduckgo")),
		provider.NewBing(httpFetcher, cfg.SearchTimeout(), logger.Named("bing")),
		provider.NewDirectDomain(httpFetcher, cfg.DirectTimeout(), logger.Named("direct")),
		provider.NewDirectory(httpFetcher, nil, cfg.SearchTimeout(), logger.Named("directory")),
	)

	minDelay, maxDelay := cfg.SearchDelays()
	return search.New(providers, search.Config{MinDelay: minDelay, MaxDelay: maxDelay}, logger.Named("search")), nil
}

// buildBlobStore returns the configured blob store and a close func.
func buildBlobStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (contact.BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory blob store; files are lost on restart")
		return memorystorage.NewBlobStore(), noop, nil
	case config.BackendLocal:
		store, err := local.New(local.Config{BaseDir: cfg.Storage.LocalDir})
		if err != nil {
			return nil, nil, fmt.Errorf("init local blob store: %w", err)
		}
		logger.Info("using local blob store", zap.String("dir", cfg.Storage.LocalDir))
		return store, noop, nil
	case config.BackendGCS:
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("init gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket, Prefix: cfg.Storage.Prefix})
		if err != nil {
			_ = client.Close() //nolint:errcheck // already failing
			return nil, nil, fmt.Errorf("init gcs blob store: %w", err)
		}
		logger.Info("using gcs blob store", zap.String("bucket", cfg.Storage.GCSBucket))
		return store, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// buildPublisher connects to Pub/Sub when a topic is configured. A nil
// publisher disables completion events.
func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (contact.Publisher, func() error, error) {
	noop := func() error { return nil }
	if cfg.PubSub.TopicName == "" {
		return nil, noop, nil
	}
	client, err := gpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("init pubsub client: %w", err)
	}
	pub := pubsubpublisher.New(client)
	logger.Info("publishing completion events", zap.String("topic", cfg.PubSub.TopicName))
	return pub, func() error {
		if err := pub.Close(); err != nil {
			return err
		}
		return client.Close()
	}, nil
}
