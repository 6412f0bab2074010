// Package formatter renders pipeline results for the terminal.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"grape-monitor/internal/models"
	"grape-monitor/internal/service"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	Human = "human"
	JSON  = "json"
	YAML  = "yaml"
)

// ValidFormat reports whether format is one of the supported outputs.
func ValidFormat(format string) bool {
	switch format {
	case Human, JSON, YAML:
		return true
	}
	return false
}

// Display writes v as JSON or YAML, or calls human for the default format.
func Display(w io.Writer, format string, v any, human func(io.Writer)) error {
	switch format {
	case JSON:
		return displayJSON(w, v)
	case YAML:
		return displayYAML(w, v)
	default:
		human(w)
	}
	return nil
}

func displayJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

// Report prints a diagnosis followed by its recommendations.
func Report(w io.Writer, report *service.Report) {
	Diagnosis(w, report.Analysis)
	fmt.Fprintln(w)
	Recommendations(w, report.Recommendations)
}

// Diagnosis prints one diagnosis.
func Diagnosis(w io.Writer, d *models.Diagnosis) {
	cyan := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgRed, color.Bold)
	if d.Healthy() {
		label = color.New(color.FgGreen, color.Bold)
	}

	cyan.Fprintln(w, "🍇 Diagnosis")
	fmt.Fprintf(w, "   Disease:    %s\n", label.Sprint(d.DiseaseLabel))
	fmt.Fprintf(w, "   Confidence: %.0f%%\n", d.Confidence*100)
	printField(w, "Explanation", d.Explanation)
	printField(w, "Details", d.DetailedDescription)
	printField(w, "Causes", d.PossibleCauses)
	printField(w, "Act now", d.ImmediateActions)
}

// Recommendations prints recommendations in the order given.
func Recommendations(w io.Writer, recs []models.Recommendation) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "📋 Recommendations (%d)\n", len(recs))

	for i, rec := range recs {
		priority := priorityColor(rec.Priority).Sprintf("P%d", rec.Priority)
		fmt.Fprintf(w, "   %d. [%s] %s\n", i+1, priority, color.New(color.Bold).Sprint(rec.Category))
		fmt.Fprintf(w, "      %s\n", rec.Description)
		meta := []string{"due " + rec.ImplementationDate.String()}
		if rec.EstimatedCost != nil {
			meta = append(meta, fmt.Sprintf("~%.2f TL", *rec.EstimatedCost))
		}
		fmt.Fprintf(w, "      %s\n", color.HiBlackString(strings.Join(meta, ", ")))
	}
}

// History prints one line per stored analysis.
func History(w io.Writer, analyses []*models.Diagnosis) {
	if len(analyses) == 0 {
		fmt.Fprintln(w, color.HiBlackString("No analyses yet"))
		return
	}
	for _, d := range analyses {
		label := color.RedString(d.DiseaseLabel)
		if d.Healthy() {
			label = color.GreenString(d.DiseaseLabel)
		}
		fmt.Fprintf(w, "#%-5d %s  %-30s %3.0f%%\n",
			d.ID, d.AnalyzedAt.Local().Format("2006-01-02 15:04"), label, d.Confidence*100)
	}
}

func printField(w io.Writer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "   %-11s %s\n", name+":", value)
}

func priorityColor(priority int) *color.Color {
	switch {
	case priority >= 5:
		return color.New(color.FgRed, color.Bold)
	case priority == 4:
		return color.New(color.FgRed)
	case priority == 3:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}
