package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quizforge/quiz-service/internal/scoring"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	Matching       QuestionType = "MATCHING"
	TrueFalse      QuestionType = "TRUE_FALSE"
)

type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	QuizID uint       `json:"quiz_id" gorm:"not null;index"`
	Type QuestionType `json:"type" gorm:"not null;size:30" validate:"required,question_type"`
	Text string       `json:"text" gorm:"not null;type:text" validate:"required,min=1"`

	// Options and CorrectAnswers are JSON-encoded ordered string arrays.
	// For MATCHING, Options are the left-hand keys and CorrectAnswers is
	// positionally aligned with them.
	Options        datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`
	CorrectAnswers datatypes.JSON `json:"correct_answers" gorm:"type:jsonb;not null"`

	Points float64 `json:"points" gorm:"not null" validate:"required,gt=0"`
	Order  int     `json:"order" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the JSON options column.
func (q *Question) OptionList() ([]string, error) {
	return decodeStringList(q.Options, "options")
}

// CorrectAnswerList decodes the JSON correct answers column.
func (q *Question) CorrectAnswerList() ([]string, error) {
	return decodeStringList(q.CorrectAnswers, "correct_answers")
}

// ToScoring converts the stored record into the engine's immutable view.
func (q *Question) ToScoring() (scoring.Question, error) {
	options, err := q.OptionList()
	if err != nil {
		return scoring.Question{}, fmt.Errorf("question %d: %w", q.ID, err)
	}
	correct, err := q.CorrectAnswerList()
	if err != nil {
		return scoring.Question{}, fmt.Errorf("question %d: %w", q.ID, err)
	}

	return scoring.Question{
		ID:             q.ID,
		Type:           scoring.QuestionType(q.Type),
		Options:        options,
		CorrectAnswers: correct,
		Points:         q.Points,
		Order:          q.Order,
	}, nil
}

func decodeStringList(raw datatypes.JSON, field string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", field, err)
	}
	return list, nil
}

// EncodeStringList encodes an ordered string list for the JSON columns.
func EncodeStringList(list []string) (datatypes.JSON, error) {
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
