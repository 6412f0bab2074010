package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"grape-monitor/internal/extract"
	"grape-monitor/internal/models"
	"grape-monitor/internal/repository"
	"grape-monitor/internal/service"
	"grape-monitor/internal/uploads"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	journal *service.Journal
	auth    *service.AuthService
	forum   *service.Forum
	model   service.ModelClient
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	journal *service.Journal,
	auth *service.AuthService,
	forum *service.Forum,
	model service.ModelClient,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		journal: journal,
		auth:    auth,
		forum:   forum,
		model:   model,
		logger:  logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		api.GET("/questions", h.ListQuestions)
		api.GET("/questions/:id", h.GetQuestion)
		api.GET("/treatments/:disease", h.GetTreatments)
	}

	authed := api.Group("", h.AuthMiddleware())
	{
		authed.GET("/me", h.Profile)
		authed.PUT("/me/settings", h.UpdateSettings)

		// Analyses
		authed.POST("/analyses", h.SubmitAnalysis)
		authed.GET("/analyses", h.ListAnalyses)
		authed.GET("/analyses/:id", h.GetAnalysis)
		authed.DELETE("/analyses/:id", h.DeleteAnalysis)
		authed.POST("/analyses/:id/follow-ups", h.AddFollowUp)
		authed.GET("/dashboard", h.Dashboard)

		// Export
		authed.GET("/export/csv", h.ExportCSV)
		authed.GET("/export/json", h.ExportJSON)

		// Forum
		authed.POST("/questions", h.AskQuestion)
		authed.POST("/questions/:id/answers", h.AnswerQuestion)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// SubmitAnalysis accepts a multipart "image" upload and runs the pipeline
func (h *Handler) SubmitAnalysis(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if file.Size > uploads.DefaultMaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, uploads.DefaultMaxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image"})
		return
	}

	userID := currentUserID(c)
	report, err := h.journal.Submit(c.Request.Context(), &userID, file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrUnsupportedImage):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "only JPEG, PNG and WebP images are supported"})
		case errors.Is(err, uploads.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		default:
			h.logger.Error("Failed to analyze image", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListAnalyses returns the caller's analyses
func (h *Handler) ListAnalyses(c *gin.Context) {
	list, err := h.journal.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("Failed to list analyses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analyses"})
		return
	}
	if list == nil {
		list = []*models.Diagnosis{}
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": list,
		"total":    len(list),
	})
}

// GetAnalysis returns one analysis with recommendations and follow-ups
func (h *Handler) GetAnalysis(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.journal.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err, "failed to get analysis")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteAnalysis removes an analysis
func (h *Handler) DeleteAnalysis(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.journal.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, err, "failed to delete analysis")
		return
	}

	c.Status(http.StatusNoContent)
}

// AddFollowUp records treatment progress
func (h *Handler) AddFollowUp(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	followUp, err := h.journal.AddFollowUp(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		h.writeError(c, err, "failed to add follow-up")
		return
	}

	c.JSON(http.StatusCreated, followUp)
}

// Dashboard returns journal statistics
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.journal.Dashboard(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTreatments lists the chemical treatments known for a disease
func (h *Handler) GetTreatments(c *gin.Context) {
	disease := c.Param("disease")
	treatments := extract.Treatments(disease)
	if treatments == nil {
		treatments = []models.Treatment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"disease":    disease,
		"treatments": treatments,
	})
}

// ExportCSV exports the caller's analyses to CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	details, err := h.journal.Export(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("Failed to export CSV", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=analyses.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"analysis_id", "analysis_date", "disease_detected", "confidence_score", "recommendation_type", "priority", "implementation_date", "description"})

	for _, d := range details {
		analysis := []string{
			strconv.FormatInt(d.Analysis.ID, 10),
			d.Analysis.AnalyzedAt.Format(time.RFC3339),
			d.Analysis.DiseaseLabel,
			fmt.Sprintf("%.2f", d.Analysis.Confidence),
		}
		if len(d.Recommendations) == 0 {
			writer.Write(append(analysis, "", "", "", ""))
			continue
		}
		for _, rec := range d.Recommendations {
			writer.Write(append(analysis[:4:4],
				rec.Category,
				strconv.Itoa(rec.Priority),
				rec.ImplementationDate.String(),
				rec.Description,
			))
		}
	}
}

// ExportJSON exports the caller's analyses to JSON
func (h *Handler) ExportJSON(c *gin.Context) {
	details, err := h.journal.Export(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("Failed to export JSON", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", "attachment; filename=analyses.json")

	encoder := json.NewEncoder(c.Writer)
	encoder.SetIndent("", "  ")
	encoder.Encode(details)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "grape-monitor",
		"version": "1.0.0",
	}
	if h.model != nil {
		resp["model"] = h.model.GetModelInfo()
	}
	c.JSON(http.StatusOK, resp)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to status codes
func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
