// Package search runs the ordered provider chain for a company.
package search

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
	"github.com/JakeFAU/contact-finder/internal/metrics"
)

// Config controls the pause between provider misses.
type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Orchestrator tries providers in a fixed priority order; the first provider
// returning any field wins.
type Orchestrator struct {
	providers []contact.Provider
	cfg       Config
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *zap.Logger
}

// New builds an Orchestrator over providers, tried in slice order.
func New(providers []contact.Provider, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		providers: append([]contact.Provider(nil), providers...),
		cfg:       cfg,
		sleep:     sleepContext,
		logger:    logger,
	}
}

// Providers returns the provider labels in chain order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, 0, len(o.providers))
	for _, p := range o.providers {
		names = append(names, p.Name())
	}
	return names
}

// ComprehensiveSearch walks the chain for company. When every provider
// misses the record is empty with the not-found source.
func (o *Orchestrator) ComprehensiveSearch(ctx context.Context, company string) contact.Record {
	for i, p := range o.providers {
		outcome := o.attempt(ctx, p, company)
		if outcome.Status == contact.OutcomeFound {
			o.logger.Info("contact found",
				zap.String("company", company),
				zap.String("provider", p.Name()),
			)
			return contact.Record{Fields: outcome.Fields, Source: p.Name()}
		}
		if i == len(o.providers)-1 {
			break
		}
		if err := o.sleep(ctx, o.delay()); err != nil {
			o.logger.Debug("search interrupted", zap.String("company", company), zap.Error(err))
			break
		}
	}
	return contact.NotFound()
}

// Release closes providers holding resources, such as the browser session.
func (o *Orchestrator) Release() {
	for _, p := range o.providers {
		closer, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			o.logger.Warn("provider release failed", zap.String("provider", p.Name()), zap.Error(err))
		}
	}
}

func (o *Orchestrator) attempt(ctx context.Context, p contact.Provider, company string) (outcome contact.Outcome) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			outcome = contact.Failed(fmt.Errorf("provider %s panicked: %v", p.Name(), rec))
		}
		metrics.ObserveProvider(p.Name(), string(outcome.Status), time.Since(start))
		if outcome.Status == contact.OutcomeFailed {
			o.logger.Warn("provider failed",
				zap.String("company", company),
				zap.String("provider", p.Name()),
				zap.Error(outcome.Err),
			)
		}
	}()
	return p.Search(ctx, company)
}

func (o *Orchestrator) delay() time.Duration {
	spread := o.cfg.MaxDelay - o.cfg.MinDelay
	if spread <= 0 {
		return o.cfg.MinDelay
	}
	return o.cfg.MinDelay + rand.N(spread+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
