package models

import (
	"github.com/quizforge/quiz-service/internal/scoring"
)

// SubmittedAnswer is one student answer as delivered by the submission
// intake. Exactly one of the value fields is populated depending on the
// question's type; an empty value for the type means unanswered.
type SubmittedAnswer struct {
	QuestionID uint `json:"question_id" validate:"required"`

	SelectedAnswer  *string           `json:"selected_answer,omitempty"`  // SINGLE_CHOICE, TRUE_FALSE
	SelectedAnswers []string          `json:"selected_answers,omitempty"` // MULTIPLE_CHOICE
	MatchingPairs   map[string]string `json:"matching_pairs,omitempty"`   // MATCHING
}

// ToScoring narrows the wire shape into the engine's tagged answer union for
// the given question type. Fields that do not belong to the type are dropped;
// an empty value yields a nil-valued (unanswered) answer.
func (a *SubmittedAnswer) ToScoring(questionType QuestionType) scoring.Answer {
	ans := scoring.Answer{QuestionID: a.QuestionID}

	switch questionType {
	case SingleChoice, TrueFalse:
		if a.SelectedAnswer != nil && *a.SelectedAnswer != "" {
			ans.Value = scoring.Selected{Option: *a.SelectedAnswer}
		}
	case MultipleChoice:
		if len(a.SelectedAnswers) > 0 {
			ans.Value = scoring.SelectedSet{Options: a.SelectedAnswers}
		}
	case Matching:
		if len(a.MatchingPairs) > 0 {
			ans.Value = scoring.MatchedPairs{Pairs: a.MatchingPairs}
		}
	}

	return ans
}
