package models

import "time"

// Question is a community forum thread
type Question struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	UserName     string    `json:"user_name" db:"user_name"`
	Title        string    `json:"title" db:"title"`
	QuestionText string    `json:"question_text" db:"question_text"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Answer is a reply to a forum question
type Answer struct {
	ID         int64     `json:"id" db:"id"`
	QuestionID int64     `json:"question_id" db:"question_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	UserName   string    `json:"user_name" db:"user_name"`
	AnswerText string    `json:"answer_text" db:"answer_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// QuestionRequest for posting a question
type QuestionRequest struct {
	Title        string `json:"title" binding:"required"`
	QuestionText string `json:"question_text" binding:"required"`
}

// AnswerRequest for posting an answer
type AnswerRequest struct {
	AnswerText string `json:"answer_text" binding:"required"`
}

// QuestionThread is a question with its answers
type QuestionThread struct {
	Question *Question `json:"question"`
	Answers  []*Answer `json:"answers"`
}
