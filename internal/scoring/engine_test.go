package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() []Question {
	return []Question{
		{
			ID:             1,
			Type:           SingleChoice,
			Options:        []string{"A", "B", "C"},
			CorrectAnswers: []string{"B"},
			Points:         2,
			Order:          1,
		},
		{
			ID:             2,
			Type:           MultipleChoice,
			Options:        []string{"A", "B", "C", "D"},
			CorrectAnswers: []string{"A", "C"},
			Points:         4,
			Order:          2,
		},
		{
			ID:             3,
			Type:           Matching,
			Options:        []string{"X", "Y"},
			CorrectAnswers: []string{"1", "2"},
			Points:         3,
			Order:          3,
		},
	}
}

func TestScoreFullMarks(t *testing.T) {
	engine := NewEngine()
	answers := []Answer{
		{QuestionID: 1, Value: Selected{Option: "B"}},
		{QuestionID: 2, Value: SelectedSet{Options: []string{"A", "C"}}},
		{QuestionID: 3, Value: MatchedPairs{Pairs: map[string]string{"X": "1", "Y": "2"}}},
	}

	result, err := engine.Score(sampleQuiz(), answers)
	require.NoError(t, err)

	assert.Equal(t, 10.0, result.Score)
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 9.0, result.TotalPoints)
	assert.Equal(t, 9.0, result.MaxPossiblePoints)
	assert.Len(t, result.Breakdown, 3)
}

func TestScorePartialCredit(t *testing.T) {
	engine := NewEngine()

	// Correct single choice (2 pts), near-miss multi (0 of 4 pts),
	// half-matched pairs (1.5 of 3 pts).
	answers := []Answer{
		{QuestionID: 1, Value: Selected{Option: "B"}},
		{QuestionID: 2, Value: SelectedSet{Options: []string{"A", "B"}}},
		{QuestionID: 3, Value: MatchedPairs{Pairs: map[string]string{"X": "1", "Y": "9"}}},
	}

	result, err := engine.Score(sampleQuiz(), answers)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CorrectAnswers)
	assert.InDelta(t, 3.5, result.TotalPoints, 1e-9)
	assert.Equal(t, 9.0, result.MaxPossiblePoints)
	// (3.5 / 9) * 10 = 3.888..., rounded to one decimal.
	assert.Equal(t, 3.9, result.Score)
}

func TestScoreOnlyOneQuestionAnswered(t *testing.T) {
	engine := NewEngine()
	questions := []Question{
		{ID: 1, Type: SingleChoice, Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}, Points: 2, Order: 1},
		{ID: 2, Type: SingleChoice, Options: []string{"A", "B"}, CorrectAnswers: []string{"B"}, Points: 3, Order: 2},
	}
	answers := []Answer{
		{QuestionID: 1, Value: Selected{Option: "A"}},
	}

	result, err := engine.Score(questions, answers)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 2.0, result.TotalPoints)
	assert.Equal(t, 5.0, result.MaxPossiblePoints)
	assert.Equal(t, 4.0, result.Score)

	// Unanswered question still appears in the breakdown with zero credit.
	require.Len(t, result.Breakdown, 2)
	assert.False(t, result.Breakdown[1].IsCorrect)
	assert.Equal(t, 0.0, result.Breakdown[1].PartialScore)
	assert.Nil(t, result.Breakdown[1].Submitted)
}

func TestScoreEmptyQuiz(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Score(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0.0, result.MaxPossiblePoints)
	assert.Empty(t, result.Breakdown)
}

func TestScoreExtraAnswersIgnored(t *testing.T) {
	engine := NewEngine()
	answers := []Answer{
		{QuestionID: 1, Value: Selected{Option: "B"}},
		{QuestionID: 2, Value: SelectedSet{Options: []string{"A", "C"}}},
		{QuestionID: 3, Value: MatchedPairs{Pairs: map[string]string{"X": "1", "Y": "2"}}},
	}
	withExtra := append([]Answer{
		{QuestionID: 999, Value: Selected{Option: "A"}},
	}, answers...)

	base, err := engine.Score(sampleQuiz(), answers)
	require.NoError(t, err)
	extra, err := engine.Score(sampleQuiz(), withExtra)
	require.NoError(t, err)

	assert.Equal(t, base, extra)
}

func TestScoreDeterministic(t *testing.T) {
	engine := NewEngine()
	answers := []Answer{
		{QuestionID: 3, Value: MatchedPairs{Pairs: map[string]string{"X": "1"}}},
		{QuestionID: 1, Value: Selected{Option: "C"}},
		{QuestionID: 2, Value: SelectedSet{Options: []string{"C"}}},
	}

	first, err := engine.Score(sampleQuiz(), answers)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := engine.Score(sampleQuiz(), answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScoreBreakdownFollowsQuestionOrder(t *testing.T) {
	engine := NewEngine()
	questions := []Question{
		{ID: 7, Type: SingleChoice, Options: []string{"A"}, CorrectAnswers: []string{"A"}, Points: 1, Order: 3},
		{ID: 8, Type: SingleChoice, Options: []string{"A"}, CorrectAnswers: []string{"A"}, Points: 1, Order: 1},
		{ID: 9, Type: SingleChoice, Options: []string{"A"}, CorrectAnswers: []string{"A"}, Points: 1, Order: 2},
	}

	result, err := engine.Score(questions, nil)
	require.NoError(t, err)

	require.Len(t, result.Breakdown, 3)
	assert.Equal(t, uint(8), result.Breakdown[0].QuestionID)
	assert.Equal(t, uint(9), result.Breakdown[1].QuestionID)
	assert.Equal(t, uint(7), result.Breakdown[2].QuestionID)
}

func TestScoreConfigurationErrorAborts(t *testing.T) {
	engine := NewEngine()
	questions := []Question{
		{ID: 1, Type: SingleChoice, Options: []string{"A"}, CorrectAnswers: []string{"A"}, Points: 1, Order: 1},
		{ID: 2, Type: QuestionType("ESSAY"), Options: []string{"A"}, CorrectAnswers: []string{"A"}, Points: 1, Order: 2},
	}

	result, err := engine.Score(questions, nil)
	require.Error(t, err)
	assert.Nil(t, result)

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestScoreCustomScaleAndPrecision(t *testing.T) {
	engine := NewEngine(WithMaxScale(100), WithPrecision(0))
	questions := []Question{
		{ID: 1, Type: SingleChoice, Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}, Points: 2, Order: 1},
		{ID: 2, Type: SingleChoice, Options: []string{"A", "B"}, CorrectAnswers: []string{"B"}, Points: 1, Order: 2},
	}
	answers := []Answer{{QuestionID: 1, Value: Selected{Option: "A"}}}

	result, err := engine.Score(questions, answers)
	require.NoError(t, err)
	// 2/3 of 100, rounded to whole points.
	assert.Equal(t, 67.0, result.Score)
}

func TestScoreCustomPartialCreditRule(t *testing.T) {
	// All-or-nothing rule: non-exact submissions earn nothing.
	strict := func(correct, selected map[string]struct{}) float64 { return 0 }
	engine := NewEngine(WithPartialCredit(strict))

	q := []Question{{
		ID:             1,
		Type:           MultipleChoice,
		Options:        []string{"A", "B", "C"},
		CorrectAnswers: []string{"A", "B"},
		Points:         4,
		Order:          1,
	}}
	answers := []Answer{{QuestionID: 1, Value: SelectedSet{Options: []string{"A"}}}}

	result, err := engine.Score(q, answers)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.TotalPoints)
	assert.Equal(t, 0.0, result.Score)
}
