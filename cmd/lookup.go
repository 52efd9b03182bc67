package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup COMPANY [COMPANY...]",
		Short: "Searches the provider chain for the given companies",
		Long: `Runs the full provider chain for each company name and prints one JSON
record per line with the email, phone, website and the provider that found
them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLookup,
	}
}

type lookupResult struct {
	Company string `json:"company"`
	contact.Record
}

func runLookup(cmd *cobra.Command, args []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	searcher, err := buildSearcher(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer searcher.Release()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	for _, raw := range args {
		if err := cmd.Context().Err(); err != nil {
			return fmt.Errorf("lookup interrupted: %w", err)
		}
		name, ok := contact.NormalizeCompany(raw)
		result := lookupResult{Company: name, Record: contact.NoData()}
		if ok {
			result.Record = searcher.ComprehensiveSearch(cmd.Context(), name)
		} else {
			a.logger.Warn("skipping invalid company name", zap.String("company", raw))
		}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}
