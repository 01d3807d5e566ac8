package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Load the detail content of stored postings",
	Long: "Walks the stored postings in order and fetches every missing detail. " +
		"ctrl+c stops after the posting in flight has been saved.",
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, _, err := openApp(os.Stdout, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	sum, err := a.Enrich(ctx)
	if err != nil {
		logger.Error("detail enrichment failed", "error", err)
		return err
	}
	fmt.Printf("총 %d건: 수집 %d, 건너뜀 %d, 실패 %d\n", sum.Total, sum.Loaded, sum.Skipped, sum.Failed)
	return nil
}
