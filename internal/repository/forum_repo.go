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

const questionSelect = `
	SELECT q.id, q.user_id, u.name AS user_name, q.title, q.question_text, q.created_at
	FROM questions q
	JOIN users u ON u.id = q.user_id`

// ForumRepository stores community questions and answers
type ForumRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewForumRepository(db *sqlx.DB, logger *zap.Logger) *ForumRepository {
	return &ForumRepository{db: db, logger: logger}
}

// CreateQuestion inserts q and sets its ID and creation time
func (r *ForumRepository) CreateQuestion(ctx context.Context, q *models.Question) error {
	q.CreatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO questions (user_id, title, question_text, created_at) VALUES (?, ?, ?, ?)`,
		q.UserID, q.Title, q.QuestionText, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	q.ID = id
	return nil
}

// ListQuestions returns all questions, newest first
func (r *ForumRepository) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	var list []*models.Question
	if err := r.db.SelectContext(ctx, &list, questionSelect+` ORDER BY q.created_at DESC, q.id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return list, nil
}

func (r *ForumRepository) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := r.db.GetContext(ctx, &q, questionSelect+` WHERE q.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

// CreateAnswer inserts a and sets its ID and creation time
func (r *ForumRepository) CreateAnswer(ctx context.Context, a *models.Answer) error {
	a.CreatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO answers (question_id, user_id, answer_text, created_at) VALUES (?, ?, ?, ?)`,
		a.QuestionID, a.UserID, a.AnswerText, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

// ListAnswers returns a question's answers, oldest first
func (r *ForumRepository) ListAnswers(ctx context.Context, questionID int64) ([]*models.Answer, error) {
	var list []*models.Answer
	err := r.db.SelectContext(ctx, &list, `
		SELECT a.id, a.question_id, a.user_id, u.name AS user_name, a.answer_text, a.created_at
		FROM answers a
		JOIN users u ON u.id = a.user_id
		WHERE a.question_id = ?
		ORDER BY a.created_at, a.id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return list, nil
}
