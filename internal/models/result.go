package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result is the append-only record of one scored quiz submission. At most one
// non-practice result may exist per (user, quiz); the partial unique index
// backs the atomic insert the result repository performs.
type Result struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;size:255;index;uniqueIndex:idx_results_graded_attempt,where:is_practice = false"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index;uniqueIndex:idx_results_graded_attempt,where:is_practice = false"`

	// Score is on the configured display scale (0-10 by default).
	Score             float64 `json:"score" gorm:"not null"`
	CorrectAnswers    int     `json:"correct_answers" gorm:"not null"`
	TotalQuestions    int     `json:"total_questions" gorm:"not null"`
	TotalPoints       float64 `json:"total_points" gorm:"not null"`
	MaxPossiblePoints float64 `json:"max_possible_points" gorm:"not null"`
	Passed            bool    `json:"passed" gorm:"not null;default:false"`
	IsPractice        bool    `json:"is_practice" gorm:"not null;default:false;index"`

	// Breakdown is the per-question outcome list kept for review display.
	Breakdown datatypes.JSON `json:"breakdown" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
	Quiz Quiz `json:"quiz" gorm:"foreignKey:QuizID"`
}

func (Result) TableName() string {
	return "results"
}
