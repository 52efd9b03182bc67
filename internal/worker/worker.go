// Package worker runs queued contact lookup jobs.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
	"github.com/JakeFAU/contact-finder/internal/metrics"
	"github.com/JakeFAU/contact-finder/internal/tabular"
	"github.com/JakeFAU/contact-finder/internal/telemetry"
)

// Config controls Worker behavior.
type Config struct {
	// ResultPrefix is the blob path prefix for result workbooks.
	ResultPrefix string
	// Topic receives a CompletionEvent per finished job. Empty disables publishing.
	Topic string
}

// Worker consumes queue items and runs the batch lookup for each one.
type Worker struct {
	queue     contact.Queue
	jobStore  contact.JobStore
	blobStore contact.BlobStore
	publisher contact.Publisher
	searcher  contact.Searcher
	clock     contact.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	queue contact.Queue,
	jobStore contact.JobStore,
	blobStore contact.BlobStore,
	publisher contact.Publisher,
	searcher contact.Searcher,
	clock contact.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:     queue,
		jobStore:  jobStore,
		blobStore: blobStore,
		publisher: publisher,
		searcher:  searcher,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// ResultFilename names the result workbook for a job finished at t.
func ResultFilename(t time.Time) string {
	return fmt.Sprintf("contact_results_%d.xlsx", t.UnixNano())
}

// BlobPath joins a configured prefix and an object name.
func BlobPath(prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return filename
	}
	return prefix + "/" + filename
}

// Run blocks, consuming queue items until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, contact.ErrQueueClosed) {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", item.JobID))
		w.processJob(ctx, item)
	}
}

// ProcessJob runs one queued job to a terminal state.
func (w *Worker) ProcessJob(ctx context.Context, item contact.QueueItem) {
	w.processJob(ctx, item)
}

func (w *Worker) processJob(ctx context.Context, item contact.QueueItem) {
	ctx, span := telemetry.Tracer().Start(ctx, "contact.job",
		trace.WithAttributes(attribute.String("job.id", item.JobID)),
	)
	defer span.End()
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()
	defer w.searcher.Release()

	w.update(ctx, item.JobID, func(s *contact.JobState) {
		s.Status = contact.JobStatusRunning
		s.Message = "Starting processing"
	})

	summary, uri, err := w.execute(ctx, item)
	// Terminal bookkeeping still happens when shutdown canceled the job.
	finalCtx := context.WithoutCancel(ctx)
	if err != nil {
		w.failJob(finalCtx, item, err)
		return
	}

	w.update(finalCtx, item.JobID, func(s *contact.JobState) {
		s.Status = contact.JobStatusSucceeded
		s.Completed = true
		s.Results = &summary
		s.Message = "Done!"
	})
	metrics.ObserveJob(string(contact.JobStatusSucceeded))
	w.logger.Info("job finished",
		zap.String("job_id", item.JobID),
		zap.String("result_uri", uri),
		zap.Int("companies", summary.TotalCompanies),
		zap.Int("emails", summary.FoundEmails),
		zap.Int("phones", summary.FoundPhones),
		zap.Int("websites", summary.FoundWebsites),
	)
	w.publishCompletion(finalCtx, contact.CompletionEvent{
		JobID:     item.JobID,
		Status:    contact.JobStatusSucceeded,
		ResultURI: uri,
		Summary:   &summary,
		Message:   "Done!",
	})
}

// execute reads the input, runs the batch and stores the workbook. A panic
// anywhere below is converted into an error so the job still terminates.
func (w *Worker) execute(ctx context.Context, item contact.QueueItem) (summary contact.Summary, uri string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()

	names, err := w.loadCompanies(ctx, item)
	if err != nil {
		return contact.Summary{}, "", err
	}
	rows, summary, err := w.RunBatch(ctx, item.JobID, names)
	if err != nil {
		return contact.Summary{}, "", err
	}

	filename := ResultFilename(w.clock.Now())
	var buf bytes.Buffer
	if err := tabular.WriteResults(&buf, rows); err != nil {
		return contact.Summary{}, "", fmt.Errorf("render results: %w", err)
	}
	uri, err = w.blobStore.PutObject(ctx, BlobPath(w.cfg.ResultPrefix, filename), tabular.ContentType, &buf)
	if err != nil {
		return contact.Summary{}, "", fmt.Errorf("store results: %w", err)
	}
	summary.Filename = filename
	return summary, uri, nil
}

func (w *Worker) loadCompanies(ctx context.Context, item contact.QueueItem) ([]string, error) {
	format, err := tabular.DetectFormat(item.InputFilename)
	if err != nil {
		return nil, err
	}
	rc, err := w.blobStore.GetObject(ctx, item.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			w.logger.Warn("close upload failed", zap.String("job_id", item.JobID), zap.Error(cerr))
		}
	}()
	return tabular.ReadCompanies(rc, format)
}

// RunBatch resolves every name in order and returns one row per input name.
// Invalid names produce a "no data" row without touching the search chain.
// The returned summary has no filename yet. The only error is cancellation.
func (w *Worker) RunBatch(ctx context.Context, jobID string, names []string) (contact.ResultSet, contact.Summary, error) {
	total := len(names)
	w.update(ctx, jobID, func(s *contact.JobState) {
		s.Total = total
		s.Current = 0
		s.Message = fmt.Sprintf("Starting search for %d companies", total)
	})

	rows := make(contact.ResultSet, 0, total)
	for i, raw := range names {
		if err := ctx.Err(); err != nil {
			return nil, contact.Summary{}, fmt.Errorf("batch canceled after %d of %d: %w", i, total, err)
		}
		name, ok := contact.NormalizeCompany(raw)
		display := strings.TrimSpace(raw)
		if !ok {
			rows = append(rows, contact.ResultRow{Company: display, Record: contact.NoData()})
			metrics.ObserveCompany("invalid")
			w.update(ctx, jobID, func(s *contact.JobState) {
				s.Current = i + 1
				s.CurrentCompany = display
				s.FoundData = false
				s.Message = fmt.Sprintf("Skipped: %s (invalid name)", display)
			})
			continue
		}

		w.update(ctx, jobID, func(s *contact.JobState) {
			s.Current = i + 1
			s.CurrentCompany = name
			s.FoundData = false
			s.Message = "Searching: " + name
		})

		record := w.searcher.ComprehensiveSearch(ctx, name)
		rows = append(rows, contact.ResultRow{Company: name, Record: record})

		found := record.Any()
		message := "No data found: " + name
		if found {
			message = fmt.Sprintf("Found data: %s (%s)", name, record.Source)
			metrics.ObserveCompany("found")
		} else {
			metrics.ObserveCompany("not_found")
		}
		w.update(ctx, jobID, func(s *contact.JobState) {
			s.FoundData = found
			s.Message = message
		})
		w.logger.Debug("company resolved",
			zap.String("job_id", jobID),
			zap.String("company", name),
			zap.String("provider", record.Source),
			zap.Bool("found", found),
		)
	}
	return rows, rows.Summarize(""), nil
}

func (w *Worker) failJob(ctx context.Context, item contact.QueueItem, err error) {
	message := "Error: " + err.Error()
	if errors.Is(err, tabular.ErrMissingCompanyColumn) {
		message = `Error: file must contain a "Company" column`
	}
	w.logger.Error("job failed", zap.String("job_id", item.JobID), zap.Error(err))
	w.update(ctx, item.JobID, func(s *contact.JobState) {
		s.Status = contact.JobStatusFailed
		s.Completed = true
		s.Results = nil
		s.Message = message
	})
	metrics.ObserveJob(string(contact.JobStatusFailed))
	w.publishCompletion(ctx, contact.CompletionEvent{
		JobID:   item.JobID,
		Status:  contact.JobStatusFailed,
		Message: message,
	})
}

func (w *Worker) update(ctx context.Context, jobID string, mutate func(*contact.JobState)) {
	if w.jobStore == nil {
		return
	}
	if err := w.jobStore.UpdateJob(ctx, jobID, mutate); err != nil {
		w.logger.Error("update job state failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (w *Worker) publishCompletion(ctx context.Context, event contact.CompletionEvent) {
	if w.cfg.Topic == "" || w.publisher == nil {
		return
	}
	event.FinishedAt = w.clock.Now()
	id, err := w.publisher.Publish(ctx, w.cfg.Topic, event)
	if err != nil {
		w.logger.Warn("publish completion failed", zap.String("job_id", event.JobID), zap.Error(err))
		return
	}
	w.logger.Debug("completion published", zap.String("job_id", event.JobID), zap.String("message_id", id))
}
