package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
	"github.com/JakeFAU/contact-finder/internal/tabular"
	"github.com/JakeFAU/contact-finder/internal/worker"
)

const uploadField = "file"

var (
	resultFilenamePattern = regexp.MustCompile(`^contact_results_\d+\.xlsx$`)
	unsafeFilenameChars   = regexp.MustCompile(`[^\p{L}\p{M}\p{N}._-]+`)
)

type submitResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, "no file uploaded")
		default:
			writeError(w, http.StatusBadRequest, "invalid multipart upload")
		}
		return
	}
	defer func() { _ = file.Close() }()

	if strings.TrimSpace(header.Filename) == "" {
		writeError(w, http.StatusBadRequest, "no file selected")
		return
	}
	filename := sanitizeFilename(header.Filename)
	if _, err := tabular.DetectFormat(filename); err != nil {
		writeError(w, http.StatusBadRequest, "file must be .xlsx, .xlsm or .csv")
		return
	}

	jobID, err := s.submit(r.Context(), filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.logger.Error("submit job failed", zap.String("filename", filename), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{Message: "Processing started", JobID: jobID})
}

// submit stores the upload, registers a fresh job state and queues the job.
func (s *Server) submit(ctx context.Context, filename, contentType string, data io.Reader) (string, error) {
	jobID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate job id: %w", err)
	}
	path := worker.BlobPath(s.cfg.Storage.UploadPrefix, jobID+"/"+filename)
	if _, err := s.blobStore.PutObject(ctx, path, contentType, data); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	now := s.clock.Now()
	job := contact.JobState{
		ID:            jobID,
		Status:        contact.JobStatusQueued,
		InputFilename: filename,
		Message:       "Queued",
		Submitted:     now,
	}
	if err := s.jobStore.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	queueCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	item := contact.QueueItem{
		JobID:         jobID,
		InputPath:     path,
		InputFilename: filename,
		Submitted:     now.Unix(),
	}
	if err := s.dispatcher.Enqueue(queueCtx, item); err != nil {
		err = fmt.Errorf("enqueue job: %w", err)
		s.abandon(context.WithoutCancel(ctx), jobID, err)
		return "", err
	}
	s.logger.Info("job submitted", zap.String("job_id", jobID), zap.String("filename", filename))
	return jobID, nil
}

// abandon closes out a job that never reached the queue so pollers see a
// terminal state instead of a job stuck in "queued".
func (s *Server) abandon(ctx context.Context, jobID string, cause error) {
	err := s.jobStore.UpdateJob(ctx, jobID, func(st *contact.JobState) {
		st.Status = contact.JobStatusFailed
		st.Completed = true
		st.Message = "Error: " + cause.Error()
	})
	if err != nil {
		s.logger.Warn("mark unqueued job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobStore.LatestJob(r.Context())
	if err != nil {
		writeError(w, http.StatusNotFound, "no job submitted yet")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) getJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !resultFilenamePattern.MatchString(filename) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	rc, err := s.blobStore.GetObject(r.Context(), worker.BlobPath(s.cfg.Storage.ResultPrefix, filename))
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		s.logger.Error("open result failed", zap.String("filename", filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to open result")
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", tabular.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("stream result failed", zap.String("filename", filename), zap.Error(err))
	}
}

// sanitizeFilename keeps the base name with only letters, marks, digits, dot,
// underscore and hyphen.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}
