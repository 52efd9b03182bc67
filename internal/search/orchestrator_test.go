package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

func TestThirdProviderHitStopsChain(t *testing.T) {
	t.Parallel()

	p1 := &fakeProvider{name: "one", outcome: contact.Empty()}
	p2 := &fakeProvider{name: "two", outcome: contact.Empty()}
	p3 := &fakeProvider{name: "three", outcome: contact.Found(contact.Fields{Phone: "021234567"})}
	p4 := &fakeProvider{name: "four", outcome: contact.Found(contact.Fields{Email: "x@y.com"})}
	p5 := &fakeProvider{name: "five", outcome: contact.Found(contact.Fields{Email: "z@y.com"})}
	o, sleeps := newTestOrchestrator(p1, p2, p3, p4, p5)

	rec := o.ComprehensiveSearch(context.Background(), "Acme")
	require.Equal(t, contact.Record{Fields: contact.Fields{Phone: "021234567"}, Source: "three"}, rec)
	require.Equal(t, []int{1, 1, 1, 0, 0}, callCounts(p1, p2, p3, p4, p5))
	require.Len(t, *sleeps, 2)
}

func TestAllProvidersMissReturnsNotFound(t *testing.T) {
	t.Parallel()

	providers := []*fakeProvider{
		{name: "one", outcome: contact.Empty()},
		{name: "two", outcome: contact.Failed(errors.New("503"))},
		{name: "three", outcome: contact.Empty()},
	}
	o, sleeps := newTestOrchestrator(providers...)

	rec := o.ComprehensiveSearch(context.Background(), "Ghost Co")
	require.Equal(t, contact.SourceNotFound, rec.Source)
	require.False(t, rec.Any())
	require.Equal(t, []int{1, 1, 1}, callCounts(providers...))
	// No pause after the last provider.
	require.Len(t, *sleeps, 2)
}

func TestProviderPanicIsTreatedAsMiss(t *testing.T) {
	t.Parallel()

	boom := &fakeProvider{name: "boom", panicWith: "nil map"}
	next := &fakeProvider{name: "next", outcome: contact.Found(contact.Fields{Website: "https://acme.com"})}
	o, _ := newTestOrchestrator(boom, next)

	rec := o.ComprehensiveSearch(context.Background(), "Acme")
	require.Equal(t, "next", rec.Source)
	require.Equal(t, "https://acme.com", rec.Website)
}

func TestFirstCompanyFailureDoesNotAffectNext(t *testing.T) {
	t.Parallel()

	flaky := &fakeProvider{name: "flaky", byCompany: map[string]contact.Outcome{
		"A": contact.Failed(errors.New("reset")),
		"B": contact.Found(contact.Fields{Email: "b@b.com"}),
	}}
	o, _ := newTestOrchestrator(flaky)

	require.Equal(t, contact.SourceNotFound, o.ComprehensiveSearch(context.Background(), "A").Source)
	rec := o.ComprehensiveSearch(context.Background(), "B")
	require.Equal(t, "flaky", rec.Source)
	require.Equal(t, "b@b.com", rec.Email)
}

func TestCanceledContextStopsBetweenProviders(t *testing.T) {
	t.Parallel()

	p1 := &fakeProvider{name: "one", outcome: contact.Empty()}
	p2 := &fakeProvider{name: "two", outcome: contact.Found(contact.Fields{Email: "a@b.com"})}
	o := New([]contact.Provider{p1, p2}, Config{MinDelay: time.Hour, MaxDelay: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := o.ComprehensiveSearch(ctx, "Acme")
	require.Equal(t, contact.SourceNotFound, rec.Source)
	require.Equal(t, []int{1, 0}, callCounts(p1, p2))
}

func TestDelayWithinConfiguredRange(t *testing.T) {
	t.Parallel()

	o := New(nil, Config{MinDelay: time.Second, MaxDelay: 3 * time.Second}, nil)
	for i := 0; i < 100; i++ {
		d := o.delay()
		require.GreaterOrEqual(t, d, time.Second)
		require.LessOrEqual(t, d, 3*time.Second)
	}
	require.Equal(t, time.Second, New(nil, Config{MinDelay: time.Second}, nil).delay())
}

func TestReleaseClosesOnlyClosers(t *testing.T) {
	t.Parallel()

	browser := &closableProvider{fakeProvider: fakeProvider{name: "browser"}}
	plain := &fakeProvider{name: "plain"}
	o := New([]contact.Provider{browser, plain}, Config{}, nil)

	o.Release()
	o.Release()
	require.Equal(t, 2, browser.closed)
	require.Equal(t, []string{"browser", "plain"}, o.Providers())
}

func newTestOrchestrator(providers ...*fakeProvider) (*Orchestrator, *[]time.Duration) {
	list := make([]contact.Provider, 0, len(providers))
	for _, p := range providers {
		list = append(list, p)
	}
	o := New(list, Config{MinDelay: time.Second, MaxDelay: 3 * time.Second}, zap.NewNop())
	var (
		mu     sync.Mutex
		sleeps []time.Duration
	)
	o.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		sleeps = append(sleeps, d)
		return nil
	}
	return o, &sleeps
}

func callCounts(providers ...*fakeProvider) []int {
	out := make([]int, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.calls)
	}
	return out
}

type fakeProvider struct {
	name      string
	outcome   contact.Outcome
	byCompany map[string]contact.Outcome
	panicWith string
	calls     int
}

func (p *fakeProvider) Name() string {
	return p.name
}

func (p *fakeProvider) Search(_ context.Context, company string) contact.Outcome {
	p.calls++
	if p.panicWith != "" {
		panic(p.panicWith)
	}
	if outcome, ok := p.byCompany[company]; ok {
		return outcome
	}
	return p.outcome
}

type closableProvider struct {
	fakeProvider
	closed int
}

func (p *closableProvider) Close() error {
	p.closed++
	return nil
}
