package service

import (
	"context"

	"grape-monitor/internal/extract"
	"grape-monitor/internal/gemini"
	"grape-monitor/internal/models"
	"grape-monitor/internal/parser"
	"grape-monitor/internal/weather"

	"go.uber.org/zap"
)

// WeatherProvider summarizes current conditions for the prompt.
type WeatherProvider interface {
	Summary(ctx context.Context, city, country string) string
}

// Location is where the vineyard is, for weather lookups.
type Location struct {
	City    string
	Country string
}

// Advisor produces recommendations for a diagnosis
type Advisor struct {
	client    ModelClient
	weather   WeatherProvider
	location  Location
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewAdvisor creates an advisor. weather may be nil.
func NewAdvisor(client ModelClient, weather WeatherProvider, location Location, extractor *extract.Extractor, logger *zap.Logger) *Advisor {
	return &Advisor{
		client:    client,
		weather:   weather,
		location:  location,
		extractor: extractor,
		logger:    logger,
	}
}

// Recommend returns at least one recommendation for diag, together with the
// raw model text. A healthy diagnosis never reaches the model, and a failed
// model call degrades to an error record instead of failing.
func (a *Advisor) Recommend(ctx context.Context, diag *models.Diagnosis) ([]models.Recommendation, string) {
	if diag.Healthy() {
		return []models.Recommendation{a.extractor.HealthyRecommendation(diag.ID)}, ""
	}

	conditions := weather.Unavailable
	if a.weather != nil {
		conditions = a.weather.Summary(ctx, a.location.City, a.location.Country)
	}

	raw, err := a.client.Generate(ctx, gemini.BuildRecommendationPrompt(diag, conditions), nil, "")
	if err != nil {
		a.logger.Error("Recommendation request failed",
			zap.Int64("analysis_id", diag.ID),
			zap.Error(err))
		raw = ""
	}

	out := parser.NormalizeItems(raw)
	if !out.IsStructured() && raw != "" {
		a.logger.Warn("Recommendation response is not JSON, using plain-text fallback",
			zap.Int64("analysis_id", diag.ID))
	}

	return a.extractor.Recommendations(out, diag), raw
}
