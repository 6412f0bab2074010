package main

import (
	"fmt"
	"os"

	"grape-monitor/internal/app"
	"grape-monitor/internal/config"
	"grape-monitor/internal/formatter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

type options struct {
	configPath   string
	outputFormat string
	verbose      bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "grapectl",
		Short: "Grape leaf disease analysis from the command line",
		Long: `grapectl sends grape leaf photos to the configured vision models, stores the
diagnosis and recommendations in the local journal, and replays saved model
responses through the parser offline.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !formatter.ValidFormat(opts.outputFormat) {
				return fmt.Errorf("unknown output format %q (use human, json or yaml)", opts.outputFormat)
			}
			return nil
		},
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVarP(&opts.outputFormat, "output", "o", formatter.Human, "Output format (human, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newParseCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grapectl version %s\n", version)
		},
	}
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *options) open(logger *zap.Logger) (*app.App, error) {
	cfg, err := config.LoadConfig(config.ResolvePath(o.configPath))
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logger)
}

func (o *options) human() bool {
	return o.outputFormat == formatter.Human
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}
