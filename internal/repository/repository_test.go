package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"grape-monitor/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "journal.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sqlx.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Ayşe", Email: email, PasswordHash: "hash"}
	require.NoError(t, NewUserRepository(db, zap.NewNop()).CreateUser(context.Background(), u))
	return u
}

func saveAnalysis(t *testing.T, repo *AnalysisRepository, userID int64, label string, at time.Time) *models.Diagnosis {
	t.Helper()
	d := &models.Diagnosis{UserID: &userID, DiseaseLabel: label, Confidence: 0.8, AnalyzedAt: at, RawResponse: "{}"}
	require.NoError(t, repo.SaveAnalysis(context.Background(), d))
	return d
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	assert.NoError(t, Migrate(db, zap.NewNop()))
}

func TestAnalysis_SaveGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAnalysisRepository(db, zap.NewNop())
	user := createUser(t, db, "a@example.com")

	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	d := &models.Diagnosis{
		UserID:           &user.ID,
		ImagePath:        "uploads/x.png",
		DiseaseLabel:     "Black Rot",
		Confidence:       0.91,
		Explanation:      "Kahverengi lekeler",
		ImmediateActions: "Yaprakları toplayın",
		RawResponse:      "```json\n{}\n```",
		AnalyzedAt:       at,
	}
	require.NoError(t, repo.SaveAnalysis(ctx, d))
	require.NotZero(t, d.ID)

	got, err := repo.GetAnalysis(ctx, d.ID)

	require.NoError(t, err)
	assert.Equal(t, "Black Rot", got.DiseaseLabel)
	assert.Equal(t, d.RawResponse, got.RawResponse)
	require.NotNil(t, got.UserID)
	assert.Equal(t, user.ID, *got.UserID)
	assert.True(t, at.Equal(got.AnalyzedAt))
}

func TestAnalysis_WithoutUser(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t), zap.NewNop())

	d := &models.Diagnosis{DiseaseLabel: "Rust"}
	require.NoError(t, repo.SaveAnalysis(ctx, d))

	got, err := repo.GetAnalysis(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
	assert.False(t, got.AnalyzedAt.IsZero())

	recent, err := repo.ListRecentAnalyses(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestAnalysis_GetMissing(t *testing.T) {
	_, err := NewAnalysisRepository(newTestDB(t), zap.NewNop()).GetAnalysis(context.Background(), 42)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalysis_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAnalysisRepository(db, zap.NewNop())
	user := createUser(t, db, "a@example.com")
	other := createUser(t, db, "b@example.com")

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	first := saveAnalysis(t, repo, user.ID, "Mildew", base)
	second := saveAnalysis(t, repo, user.ID, "Rust", base.Add(time.Hour))
	saveAnalysis(t, repo, other.ID, "Rust", base)

	list, err := repo.ListAnalyses(ctx, user.ID)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRecommendations_SaveAndListByPriority(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAnalysisRepository(db, zap.NewNop())
	user := createUser(t, db, "a@example.com")
	d := saveAnalysis(t, repo, user.ID, "Mildew", time.Now())

	cost := 120.5
	date, err := models.ParseDate("2025-06-01")
	require.NoError(t, err)
	recs := []models.Recommendation{
		{Category: "önleme", Description: "Havalandırın", Priority: 2, ImplementationDate: date},
		{Category: "tedavi", Description: "Kükürt", Priority: 5, ImplementationDate: date, EstimatedCost: &cost},
		{Category: models.CategoryError, Description: "Hatalı öneri", Priority: 1, ImplementationDate: date},
	}

	require.NoError(t, repo.SaveRecommendations(ctx, d.ID, recs))
	for _, rec := range recs {
		assert.NotZero(t, rec.ID)
		assert.Equal(t, d.ID, rec.AnalysisID)
	}

	got, err := repo.ListRecommendations(ctx, d.ID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "tedavi", got[0].Category)
	require.NotNil(t, got[0].EstimatedCost)
	assert.InDelta(t, 120.5, *got[0].EstimatedCost, 1e-9)
	assert.Equal(t, date, got[0].ImplementationDate)
	assert.Equal(t, "önleme", got[1].Category)
	assert.Nil(t, got[1].EstimatedCost)
	assert.Equal(t, models.CategoryError, got[2].Category)
}

func TestRecommendations_FailedBatchStoresNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t), zap.NewNop())

	// analysis 999 does not exist, so the foreign key rejects the batch
	err := repo.SaveRecommendations(ctx, 999, []models.Recommendation{
		{Category: "tedavi", Description: "x", Priority: 3, ImplementationDate: models.NewDate(time.Now())},
	})
	require.Error(t, err)

	got, err := repo.ListRecommendations(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteAnalysis_RemovesChildren(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAnalysisRepository(db, zap.NewNop())
	user := createUser(t, db, "a@example.com")
	d := saveAnalysis(t, repo, user.ID, "Mildew", time.Now())

	require.NoError(t, repo.SaveRecommendations(ctx, d.ID, []models.Recommendation{
		{Category: "tedavi", Description: "x", Priority: 3, ImplementationDate: models.NewDate(time.Now())},
	}))
	require.NoError(t, repo.AddFollowUp(ctx, &models.FollowUp{AnalysisID: d.ID, Status: "pending"}))

	require.NoError(t, repo.DeleteAnalysis(ctx, d.ID))

	_, err := repo.GetAnalysis(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	recs, err := repo.ListRecommendations(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
	follow, err := repo.ListFollowUps(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, follow)

	assert.ErrorIs(t, repo.DeleteAnalysis(ctx, d.ID), ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAnalysisRepository(db, zap.NewNop())
	user := createUser(t, db, "a@example.com")

	now := time.Now()
	a := saveAnalysis(t, repo, user.ID, "Mildew", now)
	saveAnalysis(t, repo, user.ID, "Mildew", now)
	saveAnalysis(t, repo, user.ID, "Black Rot", now)
	saveAnalysis(t, repo, user.ID, "Sağlıklı", now)
	saveAnalysis(t, repo, user.ID, "healthy", now)
	saveAnalysis(t, repo, user.ID, "Unknown", now)

	require.NoError(t, repo.AddFollowUp(ctx, &models.FollowUp{AnalysisID: a.ID, Status: "pending"}))
	require.NoError(t, repo.AddFollowUp(ctx, &models.FollowUp{AnalysisID: a.ID, Status: "in_progress"}))
	require.NoError(t, repo.AddFollowUp(ctx, &models.FollowUp{AnalysisID: a.ID, Status: "resolved"}))

	stats, err := repo.DashboardStats(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, &models.DashboardStats{TotalAnalyses: 6, UniqueDiseases: 2, ActiveFollowUps: 2}, stats)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	u := &models.User{Name: "Mehmet", Email: " Mehmet@Example.com ", PasswordHash: "h"}
	require.NoError(t, repo.CreateUser(ctx, u))
	assert.Equal(t, "mehmet@example.com", u.Email)

	dup := &models.User{Name: "Other", Email: "MEHMET@example.com", PasswordHash: "h"}
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrDuplicateEmail)

	got, err := repo.GetUserByEmail(ctx, "MEHMET@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	location := "Manisa"
	require.NoError(t, repo.UpdateSettings(ctx, u.ID, &models.SettingsRequest{
		Name: "Mehmet K", Email: "mehmet@example.com", Location: &location, ReceiveEmailNotifications: true,
	}))

	got, err = repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mehmet K", got.Name)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Manisa", *got.Location)
	assert.Nil(t, got.Phone)
	assert.True(t, got.ReceiveEmailNotifications)

	_, err = repo.GetUserByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForum(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewForumRepository(db, zap.NewNop())
	asker := createUser(t, db, "a@example.com")
	helper := createUser(t, db, "b@example.com")

	q := &models.Question{UserID: asker.ID, Title: "Külleme", QuestionText: "Ne zaman ilaçlamalıyım?"}
	require.NoError(t, repo.CreateQuestion(ctx, q))

	first := &models.Answer{QuestionID: q.ID, UserID: helper.ID, AnswerText: "Sabah erken."}
	second := &models.Answer{QuestionID: q.ID, UserID: asker.ID, AnswerText: "Teşekkürler."}
	require.NoError(t, repo.CreateAnswer(ctx, first))
	require.NoError(t, repo.CreateAnswer(ctx, second))

	got, err := repo.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", got.UserName)

	list, err := repo.ListQuestions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	answers, err := repo.ListAnswers(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, first.ID, answers[0].ID)
	assert.Equal(t, second.ID, answers[1].ID)

	_, err = repo.GetQuestion(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
