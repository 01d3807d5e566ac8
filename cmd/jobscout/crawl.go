package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/tui"
)

var (
	crawlKeywords   []string
	crawlLocations  []string
	crawlExperience string
	crawlLimit      int
	crawlSave       bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [wanted|saramin|jumpit|all]",
	Short: "Crawl job postings",
	Long: "Crawls one source or all of them. Crawling all sources overwrites the stored collection; " +
		"a single source is only stored with --save. Without an argument an interactive picker is shown.",
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringSliceVarP(&crawlKeywords, "keyword", "k", nil, "search keyword (repeatable)")
	crawlCmd.Flags().StringSliceVarP(&crawlLocations, "location", "l", nil, "location name, e.g. 서울 (repeatable)")
	crawlCmd.Flags().StringVar(&crawlExperience, "experience", "", "experience level filter")
	crawlCmd.Flags().IntVar(&crawlLimit, "limit", 0, "max postings per source (0 = unlimited)")
	crawlCmd.Flags().BoolVar(&crawlSave, "save", false, "store the postings of a single-source crawl")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	interactive := tui.IsTerminal(os.Stdout) && !debug

	logger := setupLogger(debug)
	var out io.Writer = os.Stdout
	if interactive {
		logger = silentLogger()
		out = io.Discard
	}

	a, cfg, err := openApp(out, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	target := tui.AllSources
	switch {
	case len(args) == 1:
		target = args[0]
	case interactive:
		target, err = tui.RunSourcePicker(cfg.Crawl.Sources)
		if err != nil {
			return err
		}
		if target == "" {
			return nil
		}
	}

	var source model.Source
	if target != tui.AllSources {
		if source, err = model.ParseSource(target); err != nil {
			return err
		}
	}
	opts := crawlOptions(cmd, cfg)

	ctx, stop := signalContext()
	defer stop()

	var jobs []model.JobPosting
	run := func(ctx context.Context) error {
		var err error
		if source == "" {
			jobs, err = a.CrawlAll(ctx, opts)
		} else {
			jobs, err = a.CrawlSource(ctx, source, opts, crawlSave)
		}
		return err
	}

	if interactive {
		err = tui.RunLoader(ctx, fmt.Sprintf("%s 크롤링 중...", target), run)
	} else {
		err = run(ctx)
	}
	if errors.Is(err, tui.ErrCancelled) {
		fmt.Println("크롤링을 취소했습니다.")
		return nil
	}

	printJobs(os.Stdout, jobs)
	if err != nil {
		return err
	}
	if source != "" && !crawlSave {
		fmt.Println("(저장하려면 --save 를 사용하세요)")
	}
	return nil
}

// crawlOptions starts from the configured options and applies the flags the user set.
func crawlOptions(cmd *cobra.Command, cfg *config.Config) model.CrawlOptions {
	opts := cfg.Crawl.Options()
	flags := cmd.Flags()
	if flags.Changed("keyword") {
		opts.Keywords = crawlKeywords
	}
	if flags.Changed("location") {
		opts.Locations = crawlLocations
	}
	if flags.Changed("experience") {
		opts.Experience = crawlExperience
	}
	if flags.Changed("limit") {
		opts.Limit = crawlLimit
	}
	return opts
}

func printJobs(w io.Writer, jobs []model.JobPosting) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No postings.")
		return
	}
	for _, j := range jobs {
		detail := " "
		if j.HasDetail() {
			detail = "+"
		}
		fmt.Fprintf(w, "%s %-18s %-20s %s\n", detail, j.ID, truncateRunes(j.Company, 20), j.Title)
		if j.Location != "" {
			fmt.Fprintf(w, "  %-18s %s\n", "", j.Location)
		}
	}
	fmt.Fprintf(w, "\n%d postings\n", len(jobs))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
