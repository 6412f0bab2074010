package main

import (
	"io"

	"grape-monitor/internal/formatter"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent analyses in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			defer logger.Sync()

			application, err := opts.open(logger)
			if err != nil {
				return err
			}
			defer application.Close()

			analyses, err := application.Journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return formatter.Display(cmd.OutOrStdout(), opts.outputFormat, analyses, func(w io.Writer) {
				formatter.History(w, analyses)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of analyses to show")

	return cmd
}
