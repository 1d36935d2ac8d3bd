package validator

import (
	"testing"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionValidator_ValidateAnswerKey(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name         string
		questionType models.QuestionType
		options      []string
		correct      []string
		wantErr      string
	}{
		{
			name:         "valid single choice",
			questionType: models.SingleChoice,
			options:      []string{"Berlin", "Paris", "Madrid"},
			correct:      []string{"Paris"},
		},
		{
			name:         "single choice needs at least two options",
			questionType: models.SingleChoice,
			options:      []string{"Paris"},
			correct:      []string{"Paris"},
			wantErr:      "at least 2 options",
		},
		{
			name:         "single choice allows exactly one correct answer",
			questionType: models.SingleChoice,
			options:      []string{"Berlin", "Paris"},
			correct:      []string{"Berlin", "Paris"},
			wantErr:      "exactly 1 correct answer",
		},
		{
			name:         "single choice correct answer must be an option",
			questionType: models.SingleChoice,
			options:      []string{"Berlin", "Paris"},
			correct:      []string{"London"},
			wantErr:      "does not match any option",
		},
		{
			name:         "valid true false",
			questionType: models.TrueFalse,
			options:      []string{"True", "False"},
			correct:      []string{"True"},
		},
		{
			name:         "true false needs exactly two options",
			questionType: models.TrueFalse,
			options:      []string{"True", "False", "Maybe"},
			correct:      []string{"True"},
			wantErr:      "exactly 2 options",
		},
		{
			name:         "valid multiple choice with several correct answers",
			questionType: models.MultipleChoice,
			options:      []string{"2", "3", "4", "5"},
			correct:      []string{"2", "3", "5"},
		},
		{
			name:         "multiple choice needs a correct answer",
			questionType: models.MultipleChoice,
			options:      []string{"2", "3"},
			correct:      []string{},
			wantErr:      "at least 1 correct answer",
		},
		{
			name:         "multiple choice rejects duplicate correct answers",
			questionType: models.MultipleChoice,
			options:      []string{"2", "3"},
			correct:      []string{"2", "2"},
			wantErr:      "duplicate correct answer",
		},
		{
			name:         "valid matching key",
			questionType: models.Matching,
			options:      []string{"France", "Germany"},
			correct:      []string{"Paris", "Berlin"},
		},
		{
			name:         "matching needs one match per option",
			questionType: models.Matching,
			options:      []string{"France", "Germany"},
			correct:      []string{"Paris"},
			wantErr:      "one correct match per option",
		},
		{
			name:         "matching rejects empty match",
			questionType: models.Matching,
			options:      []string{"France", "Germany"},
			correct:      []string{"Paris", ""},
			wantErr:      "cannot be empty",
		},
		{
			name:         "empty option text is rejected",
			questionType: models.SingleChoice,
			options:      []string{"Paris", ""},
			correct:      []string{"Paris"},
			wantErr:      "cannot be empty",
		},
		{
			name:         "duplicate options are rejected",
			questionType: models.SingleChoice,
			options:      []string{"Paris", "Paris"},
			correct:      []string{"Paris"},
			wantErr:      "duplicate option",
		},
		{
			name:         "no options at all",
			questionType: models.SingleChoice,
			options:      []string{},
			correct:      []string{},
			wantErr:      "at least 1 option",
		},
		{
			name:         "unknown type",
			questionType: "ESSAY",
			options:      []string{"a", "b"},
			correct:      []string{"a"},
			wantErr:      "unsupported question type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAnswerKey(tt.questionType, tt.options, tt.correct)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestQuestionValidator_ValidateQuestion(t *testing.T) {
	v := NewQuestionValidator()

	encode := func(t *testing.T, list []string) []byte {
		t.Helper()
		raw, err := models.EncodeStringList(list)
		require.NoError(t, err)
		return raw
	}

	t.Run("valid stored question passes", func(t *testing.T) {
		question := &models.Question{
			Type:           models.TrueFalse,
			Text:           "7 is prime",
			Options:        encode(t, []string{"True", "False"}),
			CorrectAnswers: encode(t, []string{"True"}),
			Points:         1,
		}
		assert.NoError(t, v.ValidateQuestion(question))
	})

	t.Run("missing text is rejected", func(t *testing.T) {
		question := &models.Question{
			Type:           models.TrueFalse,
			Options:        encode(t, []string{"True", "False"}),
			CorrectAnswers: encode(t, []string{"True"}),
			Points:         1,
		}
		assert.ErrorContains(t, v.ValidateQuestion(question), "text is required")
	})

	t.Run("non-positive points are rejected", func(t *testing.T) {
		question := &models.Question{
			Type:           models.TrueFalse,
			Text:           "7 is prime",
			Options:        encode(t, []string{"True", "False"}),
			CorrectAnswers: encode(t, []string{"True"}),
			Points:         0,
		}
		assert.ErrorContains(t, v.ValidateQuestion(question), "points must be greater than 0")
	})

	t.Run("batch reports the failing question index", func(t *testing.T) {
		good := &models.Question{
			Type:           models.TrueFalse,
			Text:           "7 is prime",
			Options:        encode(t, []string{"True", "False"}),
			CorrectAnswers: encode(t, []string{"True"}),
			Points:         1,
		}
		bad := &models.Question{
			Type:           models.SingleChoice,
			Text:           "2 + 2 = ?",
			Options:        encode(t, []string{"4"}),
			CorrectAnswers: encode(t, []string{"4"}),
			Points:         1,
		}

		err := v.ValidateBatch([]*models.Question{good, bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "question 2")
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		assert.ErrorContains(t, v.ValidateBatch(nil), "cannot be empty")
	})
}
