package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/clock/system"
	"github.com/JakeFAU/contact-finder/internal/contact"
	"github.com/JakeFAU/contact-finder/internal/id/uuid"
	memorystorage "github.com/JakeFAU/contact-finder/internal/storage/memory"
	"github.com/JakeFAU/contact-finder/internal/tabular"
	"github.com/JakeFAU/contact-finder/internal/worker"
)

type runOptions struct {
	input  string
	output string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Processes one spreadsheet without starting the HTTP service",
		Long: `Reads the Company column of a .xlsx, .xlsm or .csv file, runs every
company through the provider chain and writes the result workbook into the
output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatchFile(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "spreadsheet to process")
	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "directory for the result workbook")
	_ = cmd.MarkFlagRequired("input") //nolint:errcheck // flag is defined above
	return cmd
}

func runBatchFile(cmd *cobra.Command, opts *runOptions) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := a.logger

	filename := filepath.Base(opts.input)
	if _, err := tabular.DetectFormat(filename); err != nil {
		return err
	}
	in, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }() //nolint:errcheck // read-only

	jobID, err := uuid.New().NewID()
	if err != nil {
		return fmt.Errorf("generate job id: %w", err)
	}
	blobs := memorystorage.NewBlobStore()
	jobs := memorystorage.NewJobStore()
	clock := system.New()

	inputPath := worker.BlobPath(a.cfg.Storage.UploadPrefix, jobID+"/"+filename)
	if _, err := blobs.PutObject(ctx, inputPath, "", in); err != nil {
		return fmt.Errorf("stage input: %w", err)
	}
	if err := jobs.CreateJob(ctx, contact.JobState{
		ID:            jobID,
		Status:        contact.JobStatusQueued,
		InputFilename: filename,
		Message:       "Queued",
		Submitted:     clock.Now(),
	}); err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	searcher, err := buildSearcher(a.cfg, logger)
	if err != nil {
		return err
	}
	w := worker.New(nil, jobs, blobs, nil, searcher, clock,
		worker.Config{ResultPrefix: a.cfg.Storage.ResultPrefix},
		logger.Named("worker"),
	)
	w.ProcessJob(ctx, contact.QueueItem{
		JobID:         jobID,
		InputPath:     inputPath,
		InputFilename: filename,
		Submitted:     clock.Now().Unix(),
	})

	state, err := jobs.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("read job state: %w", err)
	}
	if state.Status != contact.JobStatusSucceeded || state.Results == nil {
		return fmt.Errorf("job %s failed: %s", jobID, state.Message)
	}

	target, err := copyResult(cmd, blobs, worker.BlobPath(a.cfg.Storage.ResultPrefix, state.Results.Filename), opts.output, state.Results.Filename)
	if err != nil {
		return err
	}
	logger.Info("results written",
		zap.String("path", target),
		zap.Int("companies", state.Results.TotalCompanies),
		zap.Int("emails", state.Results.FoundEmails),
		zap.Int("phones", state.Results.FoundPhones),
		zap.Int("websites", state.Results.FoundWebsites),
	)
	fmt.Fprintln(cmd.OutOrStdout(), target)
	return nil
}

func copyResult(cmd *cobra.Command, blobs contact.BlobStore, path, dir, filename string) (string, error) {
	rc, err := blobs.GetObject(cmd.Context(), path)
	if err != nil {
		return "", fmt.Errorf("read result: %w", err)
	}
	defer func() { _ = rc.Close() }() //nolint:errcheck // in-memory reader

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	target := filepath.Join(dir, filename)
	out, err := os.Create(target) //nolint:gosec // operator supplied path
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close() //nolint:errcheck // already failing
		return "", fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}
	return target, nil
}
