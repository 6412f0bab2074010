// Package extract converts normalized model output into typed diagnosis and
// recommendation records. Every failure path ends in a well-formed record;
// nothing here returns an error.
package extract

import (
	"strings"
	"time"

	"grape-monitor/internal/models"
	"grape-monitor/internal/parser"

	"go.uber.org/zap"
)

const (
	healthyDescription    = "Üzüm bitkiniz sağlıklı. Sağlığını korumak için düzenli gözlem ve iyi kültürel uygulamalara devam edin."
	malformedDescription  = "Yapay Zekadan hatalı öneri alındı. Eksik alanlar var veya format yanlış."
	noResponseDescription = "Yapay Zekadan yanıt alınamadı. API bağlantısını kontrol edin."
	emptyListDescription  = "Yapay Zeka boş bir öneri listesi döndürdü. Lütfen tekrar deneyin veya bir uzmana danışın."
	unparsedDescription   = "Öneriler oluşturulamadı. Lütfen tekrar deneyin veya bir uzmana danışın. Ham yanıt: "

	maxEchoLen = 500
)

var requiredFields = []string{"type", "description", "priority", "implementation_date"}

// Extractor builds records from normalized model output
type Extractor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExtractor creates an extractor that stamps records with the current date
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the source of "today".
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

func (e *Extractor) today() models.Date {
	return models.NewDate(e.now())
}

// HealthyRecommendation is the single record produced for a healthy plant.
func (e *Extractor) HealthyRecommendation(analysisID int64) models.Recommendation {
	return models.Recommendation{
		AnalysisID:         analysisID,
		Category:           models.CategoryPrevention,
		Description:        healthyDescription,
		Priority:           1,
		ImplementationDate: e.today(),
	}
}

// Recommendations converts a normalized recommendation response into records
// for diag, in model order, followed by the canned chemical treatments for
// the diagnosed disease. A healthy diagnosis yields exactly one prevention
// record and ignores out.
func (e *Extractor) Recommendations(out parser.Outcome, diag *models.Diagnosis) []models.Recommendation {
	if diag.Healthy() {
		return []models.Recommendation{e.HealthyRecommendation(diag.ID)}
	}

	today := e.today()
	var recs []models.Recommendation
	if out.IsStructured() {
		recs = e.fromStructured(out.Value, diag.ID, today)
	} else {
		recs = e.fromText(out.Text, diag.ID, today)
	}

	return append(recs, ChemicalRecommendations(diag.DiseaseLabel, diag.ID, today)...)
}

func (e *Extractor) fromStructured(value any, analysisID int64, today models.Date) []models.Recommendation {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	}

	if len(items) == 0 {
		e.logger.Warn("Model returned no recommendations")
		return []models.Recommendation{errorRecord(analysisID, emptyListDescription, 5, today)}
	}

	recs := make([]models.Recommendation, 0, len(items))
	for i, item := range items {
		rec, ok := e.fromItem(item, today)
		if !ok {
			e.logger.Warn("Malformed recommendation from model",
				zap.Int("index", i),
				zap.Any("item", item))
			recs = append(recs, errorRecord(analysisID, malformedDescription, 1, today))
			continue
		}
		rec.AnalysisID = analysisID
		recs = append(recs, rec)
	}
	return recs
}

func (e *Extractor) fromItem(item any, today models.Date) (models.Recommendation, bool) {
	fields, ok := item.(map[string]any)
	if !ok {
		return models.Recommendation{}, false
	}
	for _, key := range requiredFields {
		if _, present := fields[key]; !present {
			return models.Recommendation{}, false
		}
	}

	desc := coerceString(fields["description"])
	if desc == "" {
		return models.Recommendation{}, false
	}
	// out-of-range priorities are kept as the model sent them
	priority, ok := coerceInt(fields["priority"])
	if !ok {
		return models.Recommendation{}, false
	}

	date := today
	rawDate := coerceString(fields["implementation_date"])
	if parsed, err := models.ParseDate(rawDate); err == nil {
		date = parsed
	} else {
		e.logger.Debug("Invalid implementation date, using today",
			zap.String("implementation_date", rawDate))
	}

	rec := models.Recommendation{
		Category:           coerceString(fields["type"]),
		Description:        desc,
		Priority:           priority,
		ImplementationDate: date,
	}
	if cost, ok := coerceFloat(fields["estimated_cost"]); ok {
		rec.EstimatedCost = &cost
	}
	return rec, true
}

func (e *Extractor) fromText(text string, analysisID int64, today models.Date) []models.Recommendation {
	if strings.TrimSpace(text) == "" {
		e.logger.Warn("Empty recommendation response from model")
		return []models.Recommendation{errorRecord(analysisID, noResponseDescription, 5, today)}
	}

	recs := PlainText(text, today)
	if len(recs) == 0 {
		e.logger.Warn("Plain-text fallback found no recommendations")
		return []models.Recommendation{errorRecord(analysisID, unparsedDescription+truncate(text, maxEchoLen), 5, today)}
	}

	e.logger.Info("Recovered recommendations from plain text", zap.Int("count", len(recs)))
	for i := range recs {
		recs[i].AnalysisID = analysisID
	}
	return recs
}

func errorRecord(analysisID int64, desc string, priority int, today models.Date) models.Recommendation {
	return models.Recommendation{
		AnalysisID:         analysisID,
		Category:           models.CategoryError,
		Description:        desc,
		Priority:           priority,
		ImplementationDate: today,
	}
}
