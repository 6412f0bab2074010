package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grape-monitor/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const analysisColumns = `id, user_id, image_path, disease_detected, confidence_score, explanation,
	detailed_description, possible_causes, immediate_actions, model_response, analysis_date`

// AnalysisRepository stores diagnoses with their recommendations and follow-ups
type AnalysisRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAnalysisRepository creates a new repository
func NewAnalysisRepository(db *sqlx.DB, logger *zap.Logger) *AnalysisRepository {
	return &AnalysisRepository{db: db, logger: logger}
}

// SaveAnalysis inserts d and sets its ID
func (r *AnalysisRepository) SaveAnalysis(ctx context.Context, d *models.Diagnosis) error {
	if d.AnalyzedAt.IsZero() {
		d.AnalyzedAt = time.Now()
	}
	d.AnalyzedAt = d.AnalyzedAt.UTC()

	query := `
		INSERT INTO analyses (
			user_id, image_path, disease_detected, confidence_score, explanation,
			detailed_description, possible_causes, immediate_actions, model_response, analysis_date
		) VALUES (
			:user_id, :image_path, :disease_detected, :confidence_score, :explanation,
			:detailed_description, :possible_causes, :immediate_actions, :model_response, :analysis_date
		)
	`

	result, err := r.db.NamedExecContext(ctx, query, d)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	d.ID = id
	return nil
}

// GetAnalysis retrieves one analysis by ID
func (r *AnalysisRepository) GetAnalysis(ctx context.Context, id int64) (*models.Diagnosis, error) {
	var d models.Diagnosis
	err := r.db.GetContext(ctx, &d, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return &d, nil
}

// ListAnalyses returns a user's analyses, newest first
func (r *AnalysisRepository) ListAnalyses(ctx context.Context, userID int64) ([]*models.Diagnosis, error) {
	var list []*models.Diagnosis
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+analysisColumns+` FROM analyses WHERE user_id = ? ORDER BY analysis_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return list, nil
}

// ListRecentAnalyses returns the latest analyses of all users, newest first
func (r *AnalysisRepository) ListRecentAnalyses(ctx context.Context, limit int) ([]*models.Diagnosis, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []*models.Diagnosis
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+analysisColumns+` FROM analyses ORDER BY analysis_date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return list, nil
}

// DeleteAnalysis removes an analysis with its recommendations and follow-ups
func (r *AnalysisRepository) DeleteAnalysis(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE analysis_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recommendations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM follow_ups WHERE analysis_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete follow-ups: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Analysis deleted", zap.Int64("analysis_id", id))
	return nil
}

// SaveRecommendations inserts recs for analysisID in one transaction and
// sets their IDs. Either all are stored or none.
func (r *AnalysisRepository) SaveRecommendations(ctx context.Context, analysisID int64, recs []models.Recommendation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO recommendations (
			analysis_id, recommendation_type, description, priority, estimated_cost, implementation_date
		) VALUES (:analysis_id, :recommendation_type, :description, :priority, :estimated_cost, :implementation_date)
	`

	for i := range recs {
		recs[i].AnalysisID = analysisID
		result, err := tx.NamedExecContext(ctx, query, &recs[i])
		if err != nil {
			return fmt.Errorf("failed to save recommendation %d: %w", i, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		recs[i].ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug("Recommendations saved",
		zap.Int64("analysis_id", analysisID),
		zap.Int("count", len(recs)))
	return nil
}

// ListRecommendations returns an analysis' recommendations, most urgent first
func (r *AnalysisRepository) ListRecommendations(ctx context.Context, analysisID int64) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	err := r.db.SelectContext(ctx, &recs, `
		SELECT id, analysis_id, recommendation_type, description, priority, estimated_cost, implementation_date
		FROM recommendations
		WHERE analysis_id = ?
		ORDER BY priority DESC, id`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}

// AddFollowUp records treatment progress for an analysis
func (r *AnalysisRepository) AddFollowUp(ctx context.Context, f *models.FollowUp) error {
	if f.FollowUpDate.IsZero() {
		f.FollowUpDate = time.Now()
	}
	f.FollowUpDate = f.FollowUpDate.UTC()

	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO follow_ups (analysis_id, status, notes, follow_up_date)
		VALUES (:analysis_id, :status, :notes, :follow_up_date)`, f)
	if err != nil {
		return fmt.Errorf("failed to save follow-up: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	f.ID = id
	return nil
}

// ListFollowUps returns an analysis' follow-ups, newest first
func (r *AnalysisRepository) ListFollowUps(ctx context.Context, analysisID int64) ([]*models.FollowUp, error) {
	var list []*models.FollowUp
	err := r.db.SelectContext(ctx, &list, `
		SELECT id, analysis_id, status, notes, follow_up_date
		FROM follow_ups
		WHERE analysis_id = ?
		ORDER BY follow_up_date DESC, id DESC`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return list, nil
}

// DashboardStats summarizes a user's journal. Unknown and healthy results
// are not counted as diseases.
func (r *AnalysisRepository) DashboardStats(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM analyses WHERE user_id = ?) AS total_analyses,
			(SELECT COUNT(DISTINCT disease_detected) FROM analyses
				WHERE user_id = ? AND LOWER(TRIM(disease_detected)) NOT IN (?, ?, ?)) AS unique_diseases,
			(SELECT COUNT(*) FROM follow_ups f JOIN analyses a ON a.id = f.analysis_id
				WHERE a.user_id = ? AND f.status IN ('pending', 'in_progress')) AS active_follow_ups`,
		userID, userID, "unknown", "healthy", "sağlıklı", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return &stats, nil
}
