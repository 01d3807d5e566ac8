package main

import (
	"os"

	"github.com/spf13/cobra"
)

var startOnce bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the crawl daemon",
	Long:  "Crawls every configured source each schedule interval; blocks until SIGINT/SIGTERM.",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startOnce, "once", false, "run a single cycle and exit")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, cfg, err := openApp(os.Stdout, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("config loaded",
		"interval", cfg.Schedule.Interval.String(),
		"sources", cfg.Crawl.Sources,
		"keywords", len(cfg.Crawl.Keywords),
		"locations", len(cfg.Crawl.Locations),
		"enrich_after_crawl", cfg.Schedule.EnrichAfterCrawl,
	)

	ctx, stop := signalContext()
	defer stop()

	if startOnce {
		if err := a.RunCycle(ctx, cfg.Crawl.Options(), cfg.Schedule.EnrichAfterCrawl); err != nil {
			logger.Error("crawl cycle failed", "error", err)
			return err
		}
		return nil
	}

	if err := a.Scheduler(cfg).Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}
	logger.Info("goodbye")
	return nil
}
