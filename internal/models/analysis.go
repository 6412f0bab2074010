package models

import (
	"strings"
	"time"
)

// Disease labels the analyzer emits outside the disease catalogue.
const (
	LabelHealthy   = "Healthy"
	LabelHealthyTR = "Sağlıklı"
	LabelUnknown   = "Unknown"
)

// IsHealthyLabel reports whether a disease label means no disease was found.
func IsHealthyLabel(label string) bool {
	label = strings.TrimSpace(label)
	return strings.EqualFold(label, LabelHealthy) || strings.EqualFold(label, LabelHealthyTR)
}

// Diagnosis is the classification result for one submitted leaf image
type Diagnosis struct {
	ID                  int64     `json:"id" db:"id" yaml:"id"`
	UserID              *int64    `json:"user_id,omitempty" db:"user_id" yaml:"user_id,omitempty"`
	ImagePath           string    `json:"image_path" db:"image_path" yaml:"image_path"`
	DiseaseLabel        string    `json:"disease_detected" db:"disease_detected" yaml:"disease_detected"`
	Confidence          float64   `json:"confidence_score" db:"confidence_score" yaml:"confidence_score"`
	Explanation         string    `json:"explanation" db:"explanation" yaml:"explanation"`
	DetailedDescription string    `json:"detailed_description" db:"detailed_description" yaml:"detailed_description"`
	PossibleCauses      string    `json:"possible_causes" db:"possible_causes" yaml:"possible_causes"`
	ImmediateActions    string    `json:"immediate_actions" db:"immediate_actions" yaml:"immediate_actions"`
	RawResponse         string    `json:"model_response,omitempty" db:"model_response" yaml:"-"`
	AnalyzedAt          time.Time `json:"analysis_date" db:"analysis_date" yaml:"analysis_date"`
}

// Healthy reports whether the diagnosis is the no-disease sentinel
func (d *Diagnosis) Healthy() bool {
	return IsHealthyLabel(d.DiseaseLabel)
}

// FollowUp tracks treatment progress for an analysis
type FollowUp struct {
	ID           int64     `json:"id" db:"id"`
	AnalysisID   int64     `json:"analysis_id" db:"analysis_id"`
	Status       string    `json:"status" db:"status"` // "pending", "in_progress", "resolved"
	Notes        string    `json:"notes" db:"notes"`
	FollowUpDate time.Time `json:"follow_up_date" db:"follow_up_date"`
}

// FollowUpRequest for recording a follow-up
type FollowUpRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress resolved"`
	Notes  string `json:"notes"`
}

// DashboardStats summarizes a user's journal
type DashboardStats struct {
	TotalAnalyses   int `json:"total_analyses" db:"total_analyses"`
	UniqueDiseases  int `json:"unique_diseases" db:"unique_diseases"`
	ActiveFollowUps int `json:"active_follow_ups" db:"active_follow_ups"`
}
