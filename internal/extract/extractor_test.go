package extract

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"grape-monitor/internal/models"
	"grape-monitor/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestExtractor() *Extractor {
	return NewExtractor(zap.NewNop()).WithClock(func() time.Time { return fixedNow })
}

func today() models.Date {
	return models.NewDate(fixedNow)
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func diagnosis(label string) *models.Diagnosis {
	return &models.Diagnosis{ID: 7, DiseaseLabel: label, Confidence: 0.9}
}

func TestRecommendations_StructuredSingleRecord(t *testing.T) {
	out := parser.Normalize(`[{"type":"budama","description":"Prune","priority":5,"implementation_date":"2024-06-01"}]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, "budama", recs[0].Category)
	assert.Equal(t, "Prune", recs[0].Description)
	assert.Equal(t, 5, recs[0].Priority)
	assert.Equal(t, mustDate(t, "2024-06-01"), recs[0].ImplementationDate)
	assert.Equal(t, int64(7), recs[0].AnalysisID)
	assert.Nil(t, recs[0].EstimatedCost)
}

func TestRecommendations_ChemicalEntriesAppendedAfterModelOutput(t *testing.T) {
	out := parser.Normalize(`[
		{"type":"tedavi","description":"Bakır uygulayın","priority":4,"implementation_date":"2024-06-01"},
		{"type":"önleme","description":"Havalandırın","priority":3,"implementation_date":"2024-06-02"}
	]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Mildew"))

	require.Len(t, recs, 5)
	assert.Equal(t, "tedavi", recs[0].Category)
	assert.Equal(t, "önleme", recs[1].Category)
	for _, rec := range recs[2:] {
		assert.Equal(t, models.CategoryChemical, rec.Category)
		assert.Equal(t, 5, rec.Priority)
		assert.Equal(t, today(), rec.ImplementationDate)
	}
	assert.Equal(t, "Kükürt Bazlı Fungisitler: Kükürt içeren fungisitler, özellikle erken evrelerde ve düşük hastalık basıncında etkili olabilir.", recs[2].Description)
}

func TestRecommendations_ChemicalEntriesAppendedOnTextFailure(t *testing.T) {
	recs := newTestExtractor().Recommendations(parser.UnstructuredOutcome(""), diagnosis("Rust"))

	require.Len(t, recs, 2)
	assert.Equal(t, models.CategoryError, recs[0].Category)
	assert.Equal(t, 5, recs[0].Priority)
	assert.Equal(t, noResponseDescription, recs[0].Description)
	assert.Equal(t, models.CategoryChemical, recs[1].Category)
	assert.Contains(t, recs[1].Description, "Mancozeb: ")
}

func TestRecommendations_MissingFieldsBecomeErrorRecord(t *testing.T) {
	out := parser.Normalize(`[{"type":"x"}]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, models.CategoryError, recs[0].Category)
	assert.Equal(t, 1, recs[0].Priority)
	assert.Equal(t, today(), recs[0].ImplementationDate)
	assert.NotEmpty(t, recs[0].Description)
}

func TestRecommendations_MalformedElementDoesNotAbortBatch(t *testing.T) {
	out := parser.Normalize(`[
		{"type":"tedavi","description":"A","priority":2,"implementation_date":"2024-01-01"},
		"not an object",
		{"type":"budama","description":"","priority":2,"implementation_date":"2024-01-01"},
		{"type":"budama","description":"B","priority":"high","implementation_date":"2024-01-01"},
		{"type":"önleme","description":"C","priority":"4","implementation_date":"2024-01-03"}
	]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 5)
	assert.Equal(t, "A", recs[0].Description)
	assert.Equal(t, models.CategoryError, recs[1].Category)
	assert.Equal(t, models.CategoryError, recs[2].Category)
	assert.Equal(t, models.CategoryError, recs[3].Category)
	assert.Equal(t, "C", recs[4].Description)
	assert.Equal(t, 4, recs[4].Priority)
}

func TestRecommendations_BadDateUsesToday(t *testing.T) {
	out := parser.Normalize(`[{"type":"tedavi","description":"Spray","priority":3,"implementation_date":"next week"}]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, "tedavi", recs[0].Category)
	assert.Equal(t, today(), recs[0].ImplementationDate)
}

// Priorities outside 1-5 are passed through unclamped.
func TestRecommendations_PriorityNotClamped(t *testing.T) {
	out := parser.Normalize(`[
		{"type":"tedavi","description":"Urgent","priority":9,"implementation_date":"2024-01-01"},
		{"type":"tedavi","description":"Whenever","priority":0,"implementation_date":"2024-01-01"},
		{"type":"tedavi","description":"Fraction","priority":3.7,"implementation_date":"2024-01-01"}
	]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 3)
	assert.Equal(t, 9, recs[0].Priority)
	assert.Equal(t, 0, recs[1].Priority)
	assert.Equal(t, 3, recs[2].Priority)
}

func TestRecommendations_NonFinitePriorityBecomesErrorRecord(t *testing.T) {
	out := parser.Normalize(`[
		{"type":"tedavi","description":"A","priority":"NaN","implementation_date":"2024-01-01"},
		{"type":"tedavi","description":"B","priority":"-Inf","implementation_date":"2024-01-01"},
		{"type":"tedavi","description":"C","priority":1e300,"implementation_date":"2024-01-01"}
	]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, models.CategoryError, rec.Category)
		assert.Equal(t, 1, rec.Priority)
	}
	_, err := json.Marshal(recs)
	assert.NoError(t, err)
}

func TestRecommendations_NonFiniteCostDropped(t *testing.T) {
	out := parser.Normalize(`[{"type":"tedavi","description":"Spray","priority":3,"implementation_date":"2024-01-01","estimated_cost":"NaN"}]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, "tedavi", recs[0].Category)
	assert.Nil(t, recs[0].EstimatedCost)
	_, err := json.Marshal(recs)
	assert.NoError(t, err)
}

func TestCoerceFloat_RejectsNonFinite(t *testing.T) {
	for _, v := range []any{"NaN", "inf", "+Infinity", "-inf", math.NaN(), math.Inf(-1)} {
		_, ok := coerceFloat(v)
		assert.False(t, ok, "%v", v)
	}
	f, ok := coerceFloat("42.5")
	assert.True(t, ok)
	assert.Equal(t, 42.5, f)
}

func TestCoerceInt_RejectsOutOfRange(t *testing.T) {
	_, ok := coerceInt(1e300)
	assert.False(t, ok)
	_, ok = coerceInt(-1e12)
	assert.False(t, ok)
	n, ok := coerceInt(4.9)
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}

func TestRecommendations_CategoryPassedThrough(t *testing.T) {
	out := parser.Normalize(`[{"type":"sulama","description":"Az sulayın","priority":2,"implementation_date":"2024-01-01","estimated_cost":"150.5"}]`, parser.Array)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, "sulama", recs[0].Category)
	require.NotNil(t, recs[0].EstimatedCost)
	assert.InDelta(t, 150.5, *recs[0].EstimatedCost, 0.001)
}

func TestRecommendations_LoneObjectWrapped(t *testing.T) {
	out := parser.NormalizeItems(`{"type":"önleme","description":"Havalandırın","priority":2,"implementation_date":"2024-05-01"}`)

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, "Havalandırın", recs[0].Description)
}

func TestRecommendations_EmptyListBecomesErrorRecord(t *testing.T) {
	recs := newTestExtractor().Recommendations(parser.Normalize("[]", parser.Array), diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, models.CategoryError, recs[0].Category)
}

func TestRecommendations_PlainTextFallback(t *testing.T) {
	out := parser.NormalizeItems("Öneriler:\n* Tedavi: Fungisit uygulayın\n* Budama: Yaprakları temizleyin")

	recs := newTestExtractor().Recommendations(out, diagnosis("Phylloxera"))

	require.Len(t, recs, 2)
	assert.Equal(t, "tedavi", recs[0].Category)
	assert.Equal(t, "budama", recs[1].Category)
	assert.Equal(t, int64(7), recs[0].AnalysisID)
}

func TestRecommendations_UnrecoverableTextEchoed(t *testing.T) {
	recs := newTestExtractor().Recommendations(parser.UnstructuredOutcome("**Tedavi:**"), diagnosis("Phylloxera"))

	require.Len(t, recs, 1)
	assert.Equal(t, models.CategoryError, recs[0].Category)
	assert.Equal(t, 5, recs[0].Priority)
	assert.Contains(t, recs[0].Description, "**Tedavi:**")
}

func TestRecommendations_HealthyShortCircuit(t *testing.T) {
	outcomes := []parser.Outcome{
		parser.Normalize(`[{"type":"a","description":"b","priority":1,"implementation_date":"2024-01-01"},{"type":"c"}]`, parser.Array),
		parser.UnstructuredOutcome("* A: b\n* C: d"),
		parser.UnstructuredOutcome(""),
	}

	for _, label := range []string{"Healthy", "sağlıklı", " Sağlıklı "} {
		for _, out := range outcomes {
			recs := newTestExtractor().Recommendations(out, diagnosis(label))

			require.Len(t, recs, 1)
			assert.Equal(t, models.CategoryPrevention, recs[0].Category)
			assert.Equal(t, 1, recs[0].Priority)
			assert.Equal(t, healthyDescription, recs[0].Description)
		}
	}
}

func TestRecommendations_InvariantsHold(t *testing.T) {
	raws := []string{
		"", "garbage", "[]", "{}", `[{}]`, `[1, "x", null]`, "```json\n[{\"type\":\"t\"}]\n```",
		`[{"type":"t","description":"d","priority":"x","implementation_date":"2024-01-01"}]`,
		"1. A:\n2. B: c\nmore text",
	}

	for _, raw := range raws {
		for _, label := range []string{"Mildew", "Unknown", "Healthy"} {
			recs := newTestExtractor().Recommendations(parser.NormalizeItems(raw), diagnosis(label))

			require.NotEmpty(t, recs, "raw %q label %q", raw, label)
			for _, rec := range recs {
				assert.NotEmpty(t, rec.Description, "raw %q", raw)
				assert.False(t, rec.ImplementationDate.IsZero(), "raw %q", raw)
			}
		}
	}
}

func TestTreatments(t *testing.T) {
	assert.Len(t, Treatments("Mildew"), 3)
	assert.Len(t, Treatments("black rot"), 2)
	assert.Empty(t, Treatments("Healthy"))
	assert.Empty(t, Treatments("Phylloxera"))

	// callers get a copy
	list := Treatments("Rust")
	list[0].Name = "changed"
	assert.Equal(t, "Mancozeb", Treatments("Rust")[0].Name)
}
