package extract

import (
	"math"
	"strings"

	"grape-monitor/internal/models"
	"grape-monitor/internal/parser"

	"go.uber.org/zap"
)

const (
	noDiagnosisExplanation = "Failed to get response from AI."
	unparsedExplanation    = "AI yanıtı ayrıştırılamadı. Ham yanıt: "
)

// Diagnosis converts a normalized diagnosis response into a record. raw is
// kept on the record verbatim. Unusable responses yield an "Unknown" label
// with zero confidence.
func (e *Extractor) Diagnosis(out parser.Outcome, raw string) models.Diagnosis {
	d := models.Diagnosis{
		DiseaseLabel: models.LabelUnknown,
		RawResponse:  raw,
		AnalyzedAt:   e.now(),
	}

	if strings.TrimSpace(raw) == "" {
		d.Explanation = noDiagnosisExplanation
		return d
	}

	fields, ok := out.Value.(map[string]any)
	if !out.IsStructured() || !ok {
		e.logger.Warn("Could not parse diagnosis response", zap.Int("length", len(raw)))
		d.Explanation = unparsedExplanation + truncate(raw, maxEchoLen)
		return d
	}

	if label := coerceString(fields["disease_detected"]); label != "" {
		d.DiseaseLabel = label
	}
	if c, ok := coerceFloat(fields["confidence_score"]); ok {
		d.Confidence = normalizeConfidence(c)
	}
	d.Explanation = coerceText(fields["explanation"])
	d.DetailedDescription = coerceText(fields["detailed_description"])
	d.PossibleCauses = coerceText(fields["possible_causes"])
	d.ImmediateActions = coerceText(fields["immediate_actions"])

	return d
}

// normalizeConfidence maps percentages onto [0,1] and clamps the rest.
func normalizeConfidence(c float64) float64 {
	if c > 1 && c <= 100 {
		c /= 100
	}
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
