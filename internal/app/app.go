// Package app wires configuration into the services shared by the HTTP
// server and grapectl.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"grape-monitor/internal/config"
	"grape-monitor/internal/extract"
	"grape-monitor/internal/llm"
	"grape-monitor/internal/repository"
	"grape-monitor/internal/service"
	"grape-monitor/internal/uploads"
	"grape-monitor/internal/weather"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// App holds the long-lived dependencies
type App struct {
	Model   llm.Provider
	DB      *sqlx.DB
	Journal *service.Journal
	Auth    *service.AuthService
	Forum   *service.Forum

	logger *zap.Logger
}

// New builds the model client, opens the database and assembles services.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	model, err := llm.Build(cfg.Providers, cfg.MaxFailuresBeforeSwitch, cfg.GeminiConfig(), logger)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			model.Close()
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := repository.OpenAndMigrate(cfg.Database.Path, logger)
	if err != nil {
		model.Close()
		return nil, err
	}

	images, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, logger)
	if err != nil {
		db.Close()
		model.Close()
		return nil, err
	}

	var forecast service.WeatherProvider
	if cfg.Weather.APIKey != "" {
		forecast = weather.NewClient(weather.Config{
			APIKey:  cfg.Weather.APIKey,
			Timeout: cfg.Weather.Timeout,
		}, logger)
	} else {
		logger.Warn("Weather API key not configured, recommendations will omit conditions")
	}

	extractor := extract.NewExtractor(logger)
	analyzer := service.NewAnalyzer(model, extractor, logger)
	advisor := service.NewAdvisor(model, forecast, service.Location{
		City:    cfg.Weather.City,
		Country: cfg.Weather.Country,
	}, extractor, logger)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		logger.Warn("JWT secret not configured, using an insecure development secret")
		secret = "grape-monitor-dev-secret"
	}

	return &App{
		Model:   model,
		DB:      db,
		Journal: service.NewJournal(images, analyzer, advisor, repository.NewAnalysisRepository(db, logger), logger),
		Auth:    service.NewAuthService(repository.NewUserRepository(db, logger), secret, cfg.Auth.TokenTTL, logger),
		Forum:   service.NewForum(repository.NewForumRepository(db, logger), logger),
		logger:  logger,
	}, nil
}

// Close releases the database and model client.
func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		a.logger.Warn("Failed to close database", zap.Error(err))
	}
	if err := a.Model.Close(); err != nil {
		a.logger.Warn("Failed to close model client", zap.Error(err))
	}
}
