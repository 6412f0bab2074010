package llm

import (
	"fmt"

	"grape-monitor/internal/gemini"

	"go.uber.org/zap"
)

// Build returns a MultiProviderClient when providers are configured, and a
// rate-limited Gemini client built from fallback otherwise.
func Build(providers []ProviderConfig, maxFailures int, fallback gemini.Config, logger *zap.Logger) (Provider, error) {
	if len(providers) > 0 {
		logger.Info("Using multi-provider mode", zap.Int("providers", len(providers)))
		client, err := NewMultiProviderClient(MultiProviderConfig{
			Providers:   providers,
			MaxFailures: maxFailures,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create multi-provider client: %w", err)
		}
		return client, nil
	}

	if fallback.APIKey == "" {
		return nil, fmt.Errorf("no providers configured and gemini api key is empty")
	}

	logger.Info("Using single Gemini provider")
	client, err := gemini.NewClient(fallback, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return NewRateLimitedProvider(client, defaultRequestsPerMinute, logger), nil
}
