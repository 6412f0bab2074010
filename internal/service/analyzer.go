package service

import (
	"context"
	"fmt"

	"grape-monitor/internal/extract"
	"grape-monitor/internal/gemini"
	"grape-monitor/internal/models"
	"grape-monitor/internal/parser"

	"go.uber.org/zap"
)

// ModelClient is any model provider: a single client or the multi-provider
// failover client.
type ModelClient interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	Close() error
	GetModelInfo() map[string]interface{}
}

// Analyzer turns a leaf image into a diagnosis
type Analyzer struct {
	client    ModelClient
	extractor *extract.Extractor
	logger    *zap.Logger
}

func NewAnalyzer(client ModelClient, extractor *extract.Extractor, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client:    client,
		extractor: extractor,
		logger:    logger,
	}
}

// Analyze asks the model to diagnose image. Only a failed model call is an
// error; an unusable answer yields an "Unknown" diagnosis.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*models.Diagnosis, error) {
	raw, err := a.client.Generate(ctx, gemini.BuildDiagnosisPrompt(), image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("diagnosis request failed: %w", err)
	}

	out := parser.Normalize(raw, parser.Object)
	if !out.IsStructured() {
		a.logger.Warn("Diagnosis response is not JSON", zap.Int("length", len(raw)))
	}

	d := a.extractor.Diagnosis(out, raw)

	a.logger.Info("Image analyzed",
		zap.String("disease", d.DiseaseLabel),
		zap.Float64("confidence", d.Confidence))

	return &d, nil
}
