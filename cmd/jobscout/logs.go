package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var logsLimit int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the crawl history",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 20, "number of runs to show (0 = all)")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, _, err := openApp(os.Stdout, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logs, err := a.CrawlLogs()
	if err != nil {
		return err
	}
	if logsLimit > 0 && len(logs) > logsLimit {
		logs = logs[:logsLimit]
	}
	if len(logs) == 0 {
		fmt.Println("No crawl runs recorded.")
		return nil
	}

	fmt.Printf("%-17s %-8s %-8s %6s %6s %8s  %s\n", "Started", "Source", "Status", "Items", "Pages", "Time", "Error")
	fmt.Println(strings.Repeat("─", 72))
	for _, l := range logs {
		fmt.Printf("%-17s %-8s %-8s %6d %6d %7dms  %s\n",
			l.StartedAt.Local().Format("2006-01-02 15:04"), l.Source, l.Status,
			l.TotalItems, l.PagesScraped, l.Duration, l.Error)
	}
	return nil
}
