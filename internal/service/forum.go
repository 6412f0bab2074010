package service

import (
	"context"

	"grape-monitor/internal/models"
	"grape-monitor/internal/repository"

	"go.uber.org/zap"
)

// Forum is the community question board
type Forum struct {
	repo   *repository.ForumRepository
	logger *zap.Logger
}

func NewForum(repo *repository.ForumRepository, logger *zap.Logger) *Forum {
	return &Forum{repo: repo, logger: logger}
}

func (f *Forum) Ask(ctx context.Context, userID int64, req *models.QuestionRequest) (*models.Question, error) {
	q := &models.Question{UserID: userID, Title: req.Title, QuestionText: req.QuestionText}
	if err := f.repo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	f.logger.Info("Question posted", zap.Int64("question_id", q.ID), zap.Int64("user_id", userID))
	return f.repo.GetQuestion(ctx, q.ID)
}

// Answer replies to a question; repository.ErrNotFound if it does not exist
func (f *Forum) Answer(ctx context.Context, userID, questionID int64, req *models.AnswerRequest) (*models.Answer, error) {
	if _, err := f.repo.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	a := &models.Answer{QuestionID: questionID, UserID: userID, AnswerText: req.AnswerText}
	if err := f.repo.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (f *Forum) Questions(ctx context.Context) ([]*models.Question, error) {
	return f.repo.ListQuestions(ctx)
}

// Thread returns a question with its answers, oldest first
func (f *Forum) Thread(ctx context.Context, questionID int64) (*models.QuestionThread, error) {
	q, err := f.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	answers, err := f.repo.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []*models.Answer{}
	}
	return &models.QuestionThread{Question: q, Answers: answers}, nil
}
