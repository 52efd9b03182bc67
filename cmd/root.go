// Package cmd defines the CLI commands for the contact-finder executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/config"
	"github.com/JakeFAU/contact-finder/internal/logging"
	"github.com/JakeFAU/contact-finder/internal/telemetry"
)

var cfgFile string

// appKeyType is the key for storing the app in the command context.
type appKeyType string

const appKey appKeyType = "app"

// app carries the loaded configuration and process logger to subcommands.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	restore func()
}

func (a *app) Close() {
	if a.restore != nil {
		a.restore()
	}
}

// newApp is a variable so tests can swap in a prepared app.
var newApp = func(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, restore, err := logging.Setup(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	telemetry.InstallPropagator()
	return &app{cfg: cfg, logger: logger, restore: restore}, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact-finder",
		Short: "Finds email, phone and website details for Thai companies.",
		Long: `contact-finder takes a spreadsheet of company names and searches a chain
of providers (a rendered Google search, DuckDuckGo, Bing, guessed company
domains and business directories) until one of them yields contact details.
Results are written to a new spreadsheet.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfgFile)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app, error) {
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, errors.New("application not initialized")
	}
	return a, nil
}

// Execute runs the root command until it returns or the process is signaled.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "contact-finder: %v\n", err)
		os.Exit(1)
	}
}
