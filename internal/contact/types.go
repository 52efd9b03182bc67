// Package contact defines core types shared across the contact discovery subsystems.
package contact

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Source labels recorded when no provider produced the row.
const (
	SourceNotFound = "not found"
	SourceNoData   = "no data"
)

// Sentinel errors shared by fetchers, providers and stores.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrBlocked          = errors.New("blocked by anti-bot challenge")
	ErrQueueClosed      = errors.New("queue closed")
)

// Fields holds the extracted contact values. An empty string means absent.
type Fields struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// Any reports whether at least one field is present.
func (f Fields) Any() bool {
	return f.Email != "" || f.Phone != "" || f.Website != ""
}

// Record is the contact data resolved for one company plus the label of the
// provider that produced it.
type Record struct {
	Fields
	Source string `json:"source"`
}

// NotFound returns the record used when every provider missed.
func NotFound() Record {
	return Record{Source: SourceNotFound}
}

// NoData returns the record used for rows whose company name is unusable.
func NoData() Record {
	return Record{Source: SourceNoData}
}

// NormalizeCompany trims the raw cell value and reports whether it names a
// company. Blank cells and the literal "nan" produced by spreadsheet exports
// are rejected.
func NormalizeCompany(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" || name == "nan" {
		return "", false
	}
	return name, true
}

// OutcomeStatus classifies a single provider attempt.
type OutcomeStatus string

// Provider outcome values.
const (
	OutcomeFound  OutcomeStatus = "found"
	OutcomeEmpty  OutcomeStatus = "empty"
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the typed result of one provider attempt.
type Outcome struct {
	Status OutcomeStatus
	Fields Fields
	Err    error
}

// Found wraps extracted fields, degrading to Empty when nothing was extracted.
func Found(fields Fields) Outcome {
	if !fields.Any() {
		return Empty()
	}
	return Outcome{Status: OutcomeFound, Fields: fields}
}

// Empty reports a fetch that succeeded but yielded no contact fields.
func Empty() Outcome {
	return Outcome{Status: OutcomeEmpty}
}

// Failed reports a provider error.
func Failed(err error) Outcome {
	return Outcome{Status: OutcomeFailed, Err: err}
}

// JobStatus represents the lifecycle state of a batch job.
type JobStatus string

// Job status values.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Summary is attached to a job once its result file has been written.
type Summary struct {
	Filename       string `json:"filename"`
	TotalCompanies int    `json:"total_companies"`
	FoundEmails    int    `json:"found_emails"`
	FoundPhones    int    `json:"found_phones"`
	FoundWebsites  int    `json:"found_websites"`
}

// JobState is the pollable progress of one batch job.
type JobState struct {
	ID             string     `json:"job_id"`
	Status         JobStatus  `json:"status"`
	InputFilename  string     `json:"input_filename,omitempty"`
	Current        int        `json:"current"`
	Total          int        `json:"total"`
	CurrentCompany string     `json:"current_company"`
	FoundData      bool       `json:"found_data"`
	Completed      bool       `json:"completed"`
	Message        string     `json:"message"`
	Results        *Summary   `json:"results"`
	Submitted      time.Time  `json:"submitted_at"`
	Started        *time.Time `json:"started_at,omitempty"`
	Finished       *time.Time `json:"finished_at,omitempty"`
}

// Clone returns a deep copy so callers never share pointers with the store.
func (s JobState) Clone() JobState {
	cp := s
	if s.Results != nil {
		summary := *s.Results
		cp.Results = &summary
	}
	if s.Started != nil {
		started := *s.Started
		cp.Started = &started
	}
	if s.Finished != nil {
		finished := *s.Finished
		cp.Finished = &finished
	}
	return cp
}

// ResultRow is one output line: the input company and what was found for it.
type ResultRow struct {
	Company string `json:"company"`
	Record
}

// ResultSet holds one row per input row, in input order.
type ResultSet []ResultRow

// Summarize counts the rows carrying each field independently.
func (rs ResultSet) Summarize(filename string) Summary {
	summary := Summary{Filename: filename, TotalCompanies: len(rs)}
	for _, row := range rs {
		if row.Email != "" {
			summary.FoundEmails++
		}
		if row.Phone != "" {
			summary.FoundPhones++
		}
		if row.Website != "" {
			summary.FoundWebsites++
		}
	}
	return summary
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
	Timeout time.Duration
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// OK reports whether the response carries a 2xx status.
func (r FetchResponse) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// QueueItem wraps a submitted job ready to run.
type QueueItem struct {
	JobID         string
	InputPath     string
	InputFilename string
	Submitted     int64
}

// CompletionEvent is published when a job reaches a terminal state.
type CompletionEvent struct {
	JobID      string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	ResultURI  string    `json:"result_uri,omitempty"`
	Summary    *Summary  `json:"summary,omitempty"`
	Message    string    `json:"message"`
	FinishedAt time.Time `json:"finished_at"`
}
