package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/filter"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/tui"
)

var (
	jobsKeywords  []string
	jobsLocations []string
	jobsSources   []string
	jobsJSON      bool
	jobsBrowse    bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List stored postings",
	Long:  "Lists the stored postings, optionally filtered. --browse opens the split-pane browser.",
	Args:  cobra.NoArgs,
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().StringSliceVarP(&jobsKeywords, "keyword", "k", nil, "match title or company (repeatable)")
	jobsCmd.Flags().StringSliceVarP(&jobsLocations, "location", "l", nil, "match location (repeatable)")
	jobsCmd.Flags().StringSliceVarP(&jobsSources, "source", "s", nil, "only these sources (repeatable)")
	jobsCmd.Flags().BoolVar(&jobsJSON, "json", false, "print postings as JSON")
	jobsCmd.Flags().BoolVar(&jobsBrowse, "browse", false, "open the interactive browser")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	if jobsBrowse {
		logger = silentLogger()
	}

	a, _, err := openApp(os.Stdout, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sources := make([]model.Source, 0, len(jobsSources))
	for _, name := range jobsSources {
		s, err := model.ParseSource(name)
		if err != nil {
			return err
		}
		sources = append(sources, s)
	}
	var jobFilter model.JobFilter
	if len(jobsKeywords)+len(jobsLocations)+len(sources) > 0 {
		jobFilter = filter.NewKeywordFilter(jobsKeywords, jobsLocations).WithSources(sources...)
	}

	if jobsBrowse {
		all, err := a.ListJobs(nil)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No postings stored. Run `jobscout crawl` first.")
			return nil
		}
		return tui.RunBrowser(all, tui.BrowserOptions{
			Filter: jobFilter,
			LoadDetail: func(ctx context.Context, job model.JobPosting) (model.JobPosting, error) {
				return a.LoadDetail(ctx, job.ID)
			},
			MarkRead: a.MarkChatRead,
			Unread:   ai.Unread,
		})
	}

	jobs, err := a.ListJobs(jobFilter)
	if err != nil {
		return err
	}
	if jobsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	}
	printJobs(os.Stdout, jobs)
	return nil
}
