package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"grape-monitor/internal/formatter"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "analyze IMAGE",
		Short: "Diagnose a grape leaf photo and store the result",
		Long: `Diagnose a grape leaf photo with the configured model, ask for treatment
recommendations and save both to the journal.

Examples:
  # Analyze a photo
  grapectl analyze leaf.jpg

  # Machine-readable output
  grapectl analyze leaf.png -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0], timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "Overall deadline for both model calls")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *options, path string, timeout time.Duration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	logger := opts.logger()
	defer logger.Sync()

	application, err := opts.open(logger)
	if err != nil {
		return err
	}
	defer application.Close()

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Analyzing with AI..."
	if opts.human() && !opts.verbose {
		s.Start()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	// CLI submissions are not tied to a user
	report, err := application.Journal.Submit(ctx, nil, filepath.Base(path), data)
	s.Stop()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if opts.human() {
		printSuccess(fmt.Sprintf("Saved analysis #%d", report.Analysis.ID))
	}

	return formatter.Display(cmd.OutOrStdout(), opts.outputFormat, report, func(w io.Writer) {
		formatter.Report(w, report)
	})
}
