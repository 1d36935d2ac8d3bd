// Package scoring implements the quiz answer-scoring engine: per-question
// correctness and partial credit evaluation, and aggregation of question
// outcomes into a quiz-level result. The engine is pure and deterministic:
// it performs no I/O, reads no clock, and holds no state between calls, so
// concurrent invocations need no coordination.
package scoring

import (
	"math"
	"sort"
)

const (
	// DefaultMaxScale is the 0-10 display scale used throughout the UI.
	DefaultMaxScale = 10.0

	// DefaultPrecision is the number of decimal places the final score is
	// rounded to, matching the one-decimal display scale.
	DefaultPrecision = 1
)

// Engine scores submissions. The zero configuration (NewEngine with no
// options) matches the production grading behaviour.
type Engine struct {
	maxScale      float64
	precision     int
	partialCredit PartialCreditFunc
}

type Option func(*Engine)

// WithMaxScale overrides the 0-10 score scale.
func WithMaxScale(scale float64) Option {
	return func(e *Engine) { e.maxScale = scale }
}

// WithPrecision overrides the decimal places of the final score.
func WithPrecision(places int) Option {
	return func(e *Engine) { e.precision = places }
}

// WithPartialCredit overrides the multiple-choice partial credit rule.
func WithPartialCredit(fn PartialCreditFunc) Option {
	return func(e *Engine) { e.partialCredit = fn }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxScale:      DefaultMaxScale,
		precision:     DefaultPrecision,
		partialCredit: DefaultPartialCredit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score evaluates every question of a quiz against the submitted answers and
// folds the outcomes into a single Result.
//
// Questions are processed in display order. A question without a submitted
// answer scores zero credit; a submitted answer whose question is not part of
// the quiz is ignored. A ConfigurationError on any question aborts scoring
// for the whole quiz rather than producing a silently wrong score.
func (e *Engine) Score(questions []Question, answers []Answer) (*Result, error) {
	ordered := make([]Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	// First submission per question wins; intake rejects duplicates upstream.
	byQuestion := make(map[uint]*Answer, len(answers))
	for i := range answers {
		if _, ok := byQuestion[answers[i].QuestionID]; !ok {
			byQuestion[answers[i].QuestionID] = &answers[i]
		}
	}

	result := &Result{
		TotalQuestions: len(ordered),
		Breakdown:      make([]QuestionOutcome, 0, len(ordered)),
	}

	for _, q := range ordered {
		ans := byQuestion[q.ID]

		outcome, err := e.evaluate(q, ans)
		if err != nil {
			return nil, err
		}

		if outcome.IsCorrect {
			result.CorrectAnswers++
		}
		result.TotalPoints += outcome.PartialScore * q.Points
		result.MaxPossiblePoints += q.Points

		result.Breakdown = append(result.Breakdown, QuestionOutcome{
			QuestionID:   q.ID,
			IsCorrect:    outcome.IsCorrect,
			PartialScore: outcome.PartialScore,
			Question:     q,
			Submitted:    ans,
		})
	}

	if result.MaxPossiblePoints > 0 {
		result.Score = roundTo(result.TotalPoints/result.MaxPossiblePoints*e.maxScale, e.precision)
	}

	return result, nil
}

// EvaluateQuestion exposes the per-question evaluator for callers that score
// a single answer (regrade previews, review display).
func (e *Engine) EvaluateQuestion(q Question, ans *Answer) (Outcome, error) {
	return e.evaluate(q, ans)
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
