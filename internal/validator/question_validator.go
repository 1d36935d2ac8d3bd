package validator

import (
	"fmt"

	"github.com/quizforge/quiz-service/internal/models"
)

// QuestionValidator checks that a question's answer key is coherent for its
// type. A question that fails these checks would be unscorable at submission
// time, so creation and update both go through here.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}

	if question.Points <= 0 {
		return fmt.Errorf("question points must be greater than 0")
	}

	options, err := question.OptionList()
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	correct, err := question.CorrectAnswerList()
	if err != nil {
		return fmt.Errorf("invalid correct answers: %w", err)
	}

	return v.ValidateAnswerKey(question.Type, options, correct)
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// ValidateAnswerKey validates options and correct answers for a question type
func (v *QuestionValidator) ValidateAnswerKey(questionType models.QuestionType, options, correct []string) error {
	if len(options) == 0 {
		return fmt.Errorf("must have at least 1 option")
	}
	if len(options) > 20 {
		return fmt.Errorf("cannot have more than 20 options")
	}

	seen := make(map[string]bool, len(options))
	for _, option := range options {
		if option == "" {
			return fmt.Errorf("option text cannot be empty")
		}
		if seen[option] {
			return fmt.Errorf("duplicate option: '%s'", option)
		}
		seen[option] = true
	}

	switch questionType {
	case models.SingleChoice:
		return v.validateSingleChoiceKey(options, correct, seen)
	case models.TrueFalse:
		return v.validateTrueFalseKey(options, correct, seen)
	case models.MultipleChoice:
		return v.validateMultipleChoiceKey(options, correct, seen)
	case models.Matching:
		return v.validateMatchingKey(options, correct)
	default:
		return fmt.Errorf("unsupported question type: %s", questionType)
	}
}

func (v *QuestionValidator) validateSingleChoiceKey(options, correct []string, optionSet map[string]bool) error {
	if len(options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(correct) != 1 {
		return fmt.Errorf("must have exactly 1 correct answer, got %d", len(correct))
	}
	if !optionSet[correct[0]] {
		return fmt.Errorf("correct answer '%s' does not match any option", correct[0])
	}
	return nil
}

func (v *QuestionValidator) validateTrueFalseKey(options, correct []string, optionSet map[string]bool) error {
	if len(options) != 2 {
		return fmt.Errorf("must have exactly 2 options, got %d", len(options))
	}
	if len(correct) != 1 {
		return fmt.Errorf("must have exactly 1 correct answer, got %d", len(correct))
	}
	if !optionSet[correct[0]] {
		return fmt.Errorf("correct answer '%s' does not match any option", correct[0])
	}
	return nil
}

func (v *QuestionValidator) validateMultipleChoiceKey(options, correct []string, optionSet map[string]bool) error {
	if len(options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(correct) == 0 {
		return fmt.Errorf("must have at least 1 correct answer")
	}

	seenCorrect := make(map[string]bool, len(correct))
	for _, answer := range correct {
		if !optionSet[answer] {
			return fmt.Errorf("correct answer '%s' does not match any option", answer)
		}
		if seenCorrect[answer] {
			return fmt.Errorf("duplicate correct answer: '%s'", answer)
		}
		seenCorrect[answer] = true
	}
	return nil
}

// validateMatchingKey checks the positional answer key: options are the left
// side, correct answers the matched right side in the same order.
func (v *QuestionValidator) validateMatchingKey(options, correct []string) error {
	if len(options) < 2 {
		return fmt.Errorf("must have at least 2 pairs")
	}
	if len(correct) != len(options) {
		return fmt.Errorf("must have one correct match per option: %d options, %d matches", len(options), len(correct))
	}
	for i, match := range correct {
		if match == "" {
			return fmt.Errorf("match for option '%s' cannot be empty", options[i])
		}
	}
	return nil
}
