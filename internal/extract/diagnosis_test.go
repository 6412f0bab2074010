package extract

import (
	"encoding/json"
	"math"
	"testing"

	"grape-monitor/internal/models"
	"grape-monitor/internal/parser"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosis_Structured(t *testing.T) {
	raw := "```json\n" + `{
		"disease_detected": "Powdery Mildew",
		"confidence_score": 0.95,
		"explanation": "Beyaz lekeler",
		"detailed_description": "Külleme",
		"possible_causes": "Yüksek nem",
		"immediate_actions": ["Yaprakları toplayın", "Kükürt uygulayın"]
	}` + "\n```"

	d := newTestExtractor().Diagnosis(parser.Normalize(raw, parser.Object), raw)

	assert.Equal(t, "Powdery Mildew", d.DiseaseLabel)
	assert.InDelta(t, 0.95, d.Confidence, 1e-9)
	assert.Equal(t, "Beyaz lekeler", d.Explanation)
	assert.Equal(t, "Külleme", d.DetailedDescription)
	assert.Equal(t, "Yüksek nem", d.PossibleCauses)
	assert.Equal(t, "Yaprakları toplayın\nKükürt uygulayın", d.ImmediateActions)
	assert.Equal(t, raw, d.RawResponse)
	assert.Equal(t, fixedNow, d.AnalyzedAt)
}

func TestDiagnosis_ConfidenceNormalized(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`{"disease_detected":"Rust","confidence_score":"0.5"}`, 0.5},
		{`{"disease_detected":"Rust","confidence_score":87}`, 0.87},
		{`{"disease_detected":"Rust","confidence_score":"90%"}`, 0.9},
		{`{"disease_detected":"Rust","confidence_score":-2}`, 0},
		{`{"disease_detected":"Rust","confidence_score":250}`, 1},
		{`{"disease_detected":"Rust"}`, 0},
	}

	for _, tt := range tests {
		d := newTestExtractor().Diagnosis(parser.Normalize(tt.raw, parser.Object), tt.raw)
		assert.InDelta(t, tt.want, d.Confidence, 1e-9, tt.raw)
	}
}

func TestDiagnosis_NonFiniteConfidenceIsZero(t *testing.T) {
	for _, score := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Infinity"`} {
		raw := `{"disease_detected":"Rust","confidence_score":` + score + `}`

		d := newTestExtractor().Diagnosis(parser.Normalize(raw, parser.Object), raw)

		assert.Equal(t, "Rust", d.DiseaseLabel, raw)
		assert.Zero(t, d.Confidence, raw)
		_, err := json.Marshal(d)
		assert.NoError(t, err, raw)
	}
}

func TestNormalizeConfidence_NaN(t *testing.T) {
	assert.Zero(t, normalizeConfidence(math.NaN()))
	assert.Equal(t, 1.0, normalizeConfidence(math.Inf(1)))
}

func TestDiagnosis_Unparseable(t *testing.T) {
	raw := "The leaf looks like it has mildew but I am not sure."

	d := newTestExtractor().Diagnosis(parser.Normalize(raw, parser.Object), raw)

	assert.Equal(t, models.LabelUnknown, d.DiseaseLabel)
	assert.Zero(t, d.Confidence)
	assert.Equal(t, unparsedExplanation+raw, d.Explanation)
	assert.Equal(t, raw, d.RawResponse)
}

func TestDiagnosis_EmptyResponse(t *testing.T) {
	d := newTestExtractor().Diagnosis(parser.Normalize("", parser.Object), "")

	assert.Equal(t, models.LabelUnknown, d.DiseaseLabel)
	assert.Equal(t, noDiagnosisExplanation, d.Explanation)
}

func TestDiagnosis_MissingLabelIsUnknown(t *testing.T) {
	raw := `{"confidence_score": 0.4, "explanation": "?"}`

	d := newTestExtractor().Diagnosis(parser.Normalize(raw, parser.Object), raw)

	assert.Equal(t, models.LabelUnknown, d.DiseaseLabel)
	assert.InDelta(t, 0.4, d.Confidence, 1e-9)
}
