package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/config"
	"github.com/JakeFAU/contact-finder/internal/tabular"
)

// stubApp replaces the app factory for the duration of a test.
func stubApp(t *testing.T) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Backend = config.BackendMemory

	orig := newApp
	newApp = func(string) (*app, error) {
		return &app{cfg: cfg, logger: zap.NewNop()}, nil
	}
	t.Cleanup(func() { newApp = orig })
}

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"serve", "lookup", "run"})
	require.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRunRejectsUnsupportedInput(t *testing.T) {
	stubApp(t)

	_, err := execute("run", "--input", "companies.xls")
	require.ErrorIs(t, err, tabular.ErrUnsupportedFormat)
}

func TestRunRequiresInputFlag(t *testing.T) {
	stubApp(t)

	_, err := execute("run")
	require.ErrorContains(t, err, `required flag(s) "input" not set`)
}

func TestLookupRequiresCompany(t *testing.T) {
	stubApp(t)

	_, err := execute("lookup")
	require.Error(t, err)
}

func TestResolveAppWithoutApp(t *testing.T) {
	_, err := resolveApp(context.Background())
	require.ErrorContains(t, err, "application not initialized")
}
