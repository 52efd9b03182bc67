package contact

import (
	"context"
	"io"
	"time"
)

// Provider queries one information source for a company and extracts
// contact fields from whatever it finds. Implementations never panic on
// remote failures; they report them as a Failed outcome.
type Provider interface {
	Name() string
	Search(ctx context.Context, company string) Outcome
}

// Searcher resolves a company through the ordered provider chain.
type Searcher interface {
	ComprehensiveSearch(ctx context.Context, company string) Record
	Release()
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// JobStore keeps pollable job state keyed by job id.
type JobStore interface {
	CreateJob(ctx context.Context, job JobState) error
	UpdateJob(ctx context.Context, jobID string, mutate func(*JobState)) error
	GetJob(ctx context.Context, jobID string) (JobState, error)
	LatestJob(ctx context.Context) (JobState, error)
}

// BlobStore persists uploads and result files and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
	GetObject(ctx context.Context, path string) (io.ReadCloser, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Queue provides enqueue/dequeue semantics for batch jobs.
type Queue interface {
	Enqueue(ctx context.Context, job QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
