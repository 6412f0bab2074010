package main

import (
	"fmt"
	"io"
	"os"

	"grape-monitor/internal/extract"
	"grape-monitor/internal/formatter"
	"grape-monitor/internal/models"
	"grape-monitor/internal/parser"

	"github.com/spf13/cobra"
)

func newParseCmd(opts *options) *cobra.Command {
	var disease string

	cmd := &cobra.Command{
		Use:   "parse FILE|-",
		Short: "Run a saved model response through the parser",
		Long: `Run a saved model response through the normalizer and extractor without
calling any model. With --disease the text is read as a recommendation
response for that disease; without it, as a diagnosis response.

Examples:
  # Replay a diagnosis response
  grapectl parse diagnosis.txt

  # Replay a recommendation response from stdin
  cat answer.md | grapectl parse - --disease "Downy Mildew" -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			logger := opts.logger()
			defer logger.Sync()
			extractor := extract.NewExtractor(logger)
			out := cmd.OutOrStdout()

			if disease == "" {
				diag := extractor.Diagnosis(parser.Normalize(raw, parser.Object), raw)
				return formatter.Display(out, opts.outputFormat, &diag, func(w io.Writer) {
					formatter.Diagnosis(w, &diag)
				})
			}

			diag := &models.Diagnosis{DiseaseLabel: disease}
			recs := extractor.Recommendations(parser.NormalizeItems(raw), diag)
			return formatter.Display(out, opts.outputFormat, recs, func(w io.Writer) {
				formatter.Recommendations(w, recs)
			})
		},
	}

	cmd.Flags().StringVar(&disease, "disease", "", "Disease label the recommendation response was produced for")

	return cmd
}

func readInput(stdin io.Reader, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}
