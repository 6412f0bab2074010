package handler

import (
	"net/http"

	"grape-monitor/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) ListQuestions(c *gin.Context) {
	questions, err := h.forum.Questions(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list questions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get questions"})
		return
	}
	if questions == nil {
		questions = []*models.Question{}
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     len(questions),
	})
}

func (h *Handler) GetQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	thread, err := h.forum.Thread(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to get question")
		return
	}

	c.JSON(http.StatusOK, thread)
}

func (h *Handler) AskQuestion(c *gin.Context) {
	var req models.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := h.forum.Ask(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		h.writeError(c, err, "failed to post question")
		return
	}

	c.JSON(http.StatusCreated, q)
}

func (h *Handler) AnswerQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.forum.Answer(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		h.writeError(c, err, "failed to post answer")
		return
	}

	c.JSON(http.StatusCreated, a)
}
