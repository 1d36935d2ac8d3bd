package scoring

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	Matching       QuestionType = "MATCHING"
	TrueFalse      QuestionType = "TRUE_FALSE"
)

// Question is the immutable view of a quiz question the engine scores against.
// For choice types Options are the selectable choices; for MATCHING they are
// the left-hand keys and CorrectAnswers[i] is the right-hand value for Options[i].
type Question struct {
	ID             uint
	Type           QuestionType
	Options        []string
	CorrectAnswers []string
	Points         float64
	Order          int
}

// AnswerValue is the tagged union of submitted answer shapes. Each question
// type accepts exactly one variant; any other variant counts as unanswered.
type AnswerValue interface {
	answerValue()
}

// Selected is the answer shape for SINGLE_CHOICE and TRUE_FALSE questions.
type Selected struct {
	Option string
}

// SelectedSet is the answer shape for MULTIPLE_CHOICE questions.
type SelectedSet struct {
	Options []string
}

// MatchedPairs is the answer shape for MATCHING questions: left-hand key to
// the student's chosen right-hand value.
type MatchedPairs struct {
	Pairs map[string]string
}

func (Selected) answerValue()     {}
func (SelectedSet) answerValue()  {}
func (MatchedPairs) answerValue() {}

// Answer is one submitted answer. A nil or empty Value means unanswered.
type Answer struct {
	QuestionID uint
	Value      AnswerValue
}

// Outcome is the per-question evaluation result. PartialScore is the fraction
// of the question's points earned, always within [0, 1].
type Outcome struct {
	IsCorrect    bool
	PartialScore float64
}

// QuestionOutcome is one entry of the per-question breakdown returned for
// review display, ordered by question order.
type QuestionOutcome struct {
	QuestionID   uint     `json:"question_id"`
	IsCorrect    bool     `json:"is_correct"`
	PartialScore float64  `json:"partial_score"`
	Question     Question `json:"question"`
	Submitted    *Answer  `json:"submitted,omitempty"`
}

// Result is the aggregate outcome of scoring one submission against one quiz.
type Result struct {
	Score             float64           `json:"score"`
	CorrectAnswers    int               `json:"correct_answers"`
	TotalQuestions    int               `json:"total_questions"`
	TotalPoints       float64           `json:"total_points"`
	MaxPossiblePoints float64           `json:"max_possible_points"`
	Breakdown         []QuestionOutcome `json:"breakdown"`
}
