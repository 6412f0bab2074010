package service

import (
	"context"
	"errors"
	"fmt"

	"grape-monitor/internal/models"
	"grape-monitor/internal/repository"
	"grape-monitor/internal/uploads"

	"go.uber.org/zap"
)

// ErrForbidden is returned when a user touches another user's analysis.
var ErrForbidden = errors.New("analysis belongs to another user")

// Report is the outcome of one submitted image
type Report struct {
	Analysis                  *models.Diagnosis       `json:"analysis" yaml:"analysis"`
	Recommendations           []models.Recommendation `json:"recommendations" yaml:"recommendations"`
	RawRecommendationResponse string                  `json:"raw_recommendation_response,omitempty" yaml:"-"`
}

// AnalysisDetail is a stored analysis with everything attached to it
type AnalysisDetail struct {
	Analysis        *models.Diagnosis       `json:"analysis"`
	Recommendations []models.Recommendation `json:"recommendations"`
	FollowUps       []*models.FollowUp      `json:"follow_ups"`
}

// Journal runs the analysis pipeline and keeps its history
type Journal struct {
	images   *uploads.Store
	analyzer *Analyzer
	advisor  *Advisor
	repo     *repository.AnalysisRepository
	logger   *zap.Logger
}

func NewJournal(
	images *uploads.Store,
	analyzer *Analyzer,
	advisor *Advisor,
	repo *repository.AnalysisRepository,
	logger *zap.Logger,
) *Journal {
	return &Journal{
		images:   images,
		analyzer: analyzer,
		advisor:  advisor,
		repo:     repo,
		logger:   logger,
	}
}

// Submit stores the image, diagnoses it, asks for recommendations and saves
// everything. userID is nil for anonymous (CLI) submissions.
func (j *Journal) Submit(ctx context.Context, userID *int64, filename string, data []byte) (*Report, error) {
	img, err := j.images.Save(filename, data)
	if err != nil {
		return nil, err
	}

	diag, err := j.analyzer.Analyze(ctx, img.Data, img.MIMEType)
	if err != nil {
		j.removeImage(img.Path)
		return nil, err
	}
	diag.UserID = userID
	diag.ImagePath = img.Path

	if err := j.repo.SaveAnalysis(ctx, diag); err != nil {
		j.removeImage(img.Path)
		return nil, err
	}

	recs, raw := j.advisor.Recommend(ctx, diag)
	if err := j.repo.SaveRecommendations(ctx, diag.ID, recs); err != nil {
		// an analysis without its recommendations is not kept
		if delErr := j.repo.DeleteAnalysis(context.WithoutCancel(ctx), diag.ID); delErr != nil {
			j.logger.Warn("Failed to roll back analysis",
				zap.Int64("analysis_id", diag.ID),
				zap.Error(delErr))
		}
		j.removeImage(img.Path)
		return nil, err
	}

	j.logger.Info("Analysis recorded",
		zap.Int64("analysis_id", diag.ID),
		zap.String("disease", diag.DiseaseLabel),
		zap.Int("recommendations", len(recs)))

	return &Report{
		Analysis:                  diag,
		Recommendations:           recs,
		RawRecommendationResponse: raw,
	}, nil
}

// History lists a user's analyses, newest first
func (j *Journal) History(ctx context.Context, userID int64) ([]*models.Diagnosis, error) {
	return j.repo.ListAnalyses(ctx, userID)
}

// Recent lists the latest analyses regardless of owner
func (j *Journal) Recent(ctx context.Context, limit int) ([]*models.Diagnosis, error) {
	return j.repo.ListRecentAnalyses(ctx, limit)
}

// Get loads an analysis owned by userID with its recommendations and follow-ups
func (j *Journal) Get(ctx context.Context, userID, id int64) (*AnalysisDetail, error) {
	diag, err := j.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	recs, err := j.repo.ListRecommendations(ctx, id)
	if err != nil {
		return nil, err
	}
	followUps, err := j.repo.ListFollowUps(ctx, id)
	if err != nil {
		return nil, err
	}

	return &AnalysisDetail{Analysis: diag, Recommendations: recs, FollowUps: followUps}, nil
}

// Delete removes an analysis and its image
func (j *Journal) Delete(ctx context.Context, userID, id int64) error {
	diag, err := j.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := j.repo.DeleteAnalysis(ctx, id); err != nil {
		return err
	}
	j.removeImage(diag.ImagePath)
	return nil
}

// AddFollowUp records treatment progress on an analysis
func (j *Journal) AddFollowUp(ctx context.Context, userID, id int64, req *models.FollowUpRequest) (*models.FollowUp, error) {
	if _, err := j.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	f := &models.FollowUp{AnalysisID: id, Status: req.Status, Notes: req.Notes}
	if err := j.repo.AddFollowUp(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Export loads every analysis of a user with its attachments, newest first
func (j *Journal) Export(ctx context.Context, userID int64) ([]*AnalysisDetail, error) {
	list, err := j.repo.ListAnalyses(ctx, userID)
	if err != nil {
		return nil, err
	}
	details := make([]*AnalysisDetail, 0, len(list))
	for _, diag := range list {
		detail, err := j.Get(ctx, userID, diag.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// Dashboard summarizes a user's journal
func (j *Journal) Dashboard(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	return j.repo.DashboardStats(ctx, userID)
}

func (j *Journal) removeImage(path string) {
	if err := j.images.Remove(path); err != nil {
		j.logger.Warn("Failed to remove image",
			zap.String("path", path),
			zap.Error(err))
	}
}

func (j *Journal) owned(ctx context.Context, userID, id int64) (*models.Diagnosis, error) {
	diag, err := j.repo.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if diag.UserID == nil || *diag.UserID != userID {
		return nil, fmt.Errorf("%w: analysis %d", ErrForbidden, id)
	}
	return diag, nil
}
