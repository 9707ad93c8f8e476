package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harukimoto/driftwatch/internal/banner"
	"github.com/harukimoto/driftwatch/internal/config"
	"github.com/harukimoto/driftwatch/internal/evidence"
	"github.com/harukimoto/driftwatch/internal/fetch"
	"github.com/harukimoto/driftwatch/internal/logging"
	"github.com/harukimoto/driftwatch/internal/model"
	"github.com/harukimoto/driftwatch/internal/pipeline"
	"github.com/harukimoto/driftwatch/internal/report"
	"github.com/harukimoto/driftwatch/internal/summarize"
)

var (
	cfgPath  string
	stateDir string
	logLevel string
	quiet    bool
)

var rootCmd = &cobra.Command{
	Use:          "driftwatch",
	Short:        "Detect and triage changes in external text sources",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the detection pipeline once over all configured targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !quiet {
			banner.Print()
		}

		store, err := evidence.Open(cfg.StateDir)
		if err != nil {
			// Store corruption is fatal by design: abort before any write.
			return err
		}

		fetcher := fetch.New(fetch.WithTimeout(cfg.Fetch.Timeout))

		var summarizer summarize.Summarizer = summarize.Noop{}
		if cfg.Summarizer.APIKey != "" {
			summarizer = summarize.NewClient(
				cfg.Summarizer.Endpoint,
				cfg.Summarizer.APIKey,
				cfg.Summarizer.Model,
				cfg.Summarizer.Timeout,
			)
		}

		p := pipeline.New(cfg.Targets, fetcher, store, summarizer)
		rep, err := p.Run(context.Background())
		if err != nil {
			return err
		}

		printSummary(rep)
		return writeArtifacts(cfg, store)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the Markdown change report from the committed store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := evidence.Open(cfg.StateDir)
		if err != nil {
			return err
		}
		return report.WriteMarkdown(os.Stdout, store, time.Now())
	},
}

var feedAll bool

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Render the RSS feed from the committed store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := evidence.Open(cfg.StateDir)
		if err != nil {
			return err
		}
		records := report.Important(store.Records())
		title := "driftwatch (Important)"
		if feedAll {
			records = report.Visible(store.Records())
			title = "driftwatch (All)"
		}
		return report.WriteRSS(os.Stdout, records, title, "http://localhost/",
			"Detected changes in monitored sources")
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(cfg.Logging.JSON, logging.ParseLevel(level))
	return cfg, nil
}

// printSummary writes the colored console recap of a run: adopted counts
// with impact breakdown, suppressed count, and the health tally.
func printSummary(rep *pipeline.RunReport) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)

	_, _ = bold.Printf("\nrun %s\n", rep.RunID)
	if rep.Added == 0 {
		fmt.Println("Adopted changes: 0 (none detected)")
	} else {
		fmt.Printf("Adopted changes: %d (", rep.Added)
		for i, impact := range model.Impacts {
			if i > 0 {
				fmt.Print(" / ")
			}
			line := fmt.Sprintf("%s: %d", impact, rep.Breakdown[impact])
			switch impact {
			case model.ImpactBreaking:
				_, _ = red.Print(line)
			case model.ImpactHigh:
				_, _ = yellow.Print(line)
			default:
				fmt.Print(line)
			}
		}
		fmt.Println(")")
	}
	if rep.Suppressed > 0 {
		fmt.Printf("Suppressed as noise: %d\n", rep.Suppressed)
	}

	var ok, failed, skipped int
	for _, r := range rep.Results {
		switch r.Status {
		case pipeline.StatusOK:
			ok++
		case pipeline.StatusFailed:
			failed++
		case pipeline.StatusSkipped:
			skipped++
		}
	}
	_, _ = green.Printf("Health: ok=%d", ok)
	if failed > 0 {
		fmt.Print(" ")
		_, _ = red.Printf("failed=%d", failed)
	}
	if skipped > 0 {
		fmt.Print(" ")
		_, _ = yellow.Printf("skipped=%d", skipped)
	}
	fmt.Println()
}

// writeArtifacts regenerates the derived report and feeds after a run.
func writeArtifacts(cfg *config.Config, store *evidence.Store) error {
	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return err
	}

	md, err := os.Create(filepath.Join(cfg.ReportDir, "latest.md"))
	if err != nil {
		return err
	}
	if err := report.WriteMarkdown(md, store, time.Now()); err != nil {
		md.Close()
		return err
	}
	if err := md.Close(); err != nil {
		return err
	}

	feeds := []struct {
		name      string
		important bool
	}{
		{"feed.xml", true},
		{"feed_all.xml", false},
	}
	for _, f := range feeds {
		records := report.Visible(store.Records())
		title := "driftwatch (All)"
		if f.important {
			records = report.Important(store.Records())
			title = "driftwatch (Important)"
		}
		out, err := os.Create(filepath.Join(cfg.ReportDir, f.name))
		if err != nil {
			return err
		}
		if err := report.WriteRSS(out, records, title, "http://localhost/",
			"Detected changes in monitored sources"); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "targets.yaml", "targets configuration file")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "override state directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the banner")
	feedCmd.Flags().BoolVar(&feedAll, "all", false, "include Medium/Low records")

	rootCmd.AddCommand(runCmd, reportCmd, feedCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
