package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizStatusDraft    QuizStatus = "Draft"
	QuizStatusActive   QuizStatus = "Active"
	QuizStatusArchived QuizStatus = "Archived"
)

type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	SubjectID   uint       `json:"subject_id" gorm:"not null;index" validate:"required"`
	Status      QuizStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Active Archived"`

	// PassingScore is on the same 0-10 scale the engine reports.
	PassingScore float64 `json:"passing_score" gorm:"default:5" validate:"min=0,max=10"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Subject   Subject    `json:"subject" gorm:"foreignKey:SubjectID"`
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`
	Results   []Result   `json:"results" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	QuestionsCount int     `json:"questions_count" gorm:"-"`
	TotalPoints    float64 `json:"total_points" gorm:"-"`
	AttemptCount   int     `json:"attempt_count" gorm:"-"`
	AvgScore       float64 `json:"avg_score" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
