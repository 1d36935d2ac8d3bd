package scoring

// PartialCreditFunc computes the multiple-choice partial credit for a
// non-exact submission. Both arguments are non-empty sets of option strings.
// Implementations must return a value within [0, 1].
//
// The rule is pluggable because the reference behaviour only fixes the
// full-match case; the default rewards correct selections and penalizes
// false positives, floored at zero.
type PartialCreditFunc func(correct, selected map[string]struct{}) float64

// DefaultPartialCredit is max(0, (|correct ∩ selected| - |selected \ correct|) / |correct|).
func DefaultPartialCredit(correct, selected map[string]struct{}) float64 {
	hits := 0
	misses := 0
	for s := range selected {
		if _, ok := correct[s]; ok {
			hits++
		} else {
			misses++
		}
	}
	credit := float64(hits-misses) / float64(len(correct))
	if credit < 0 {
		return 0
	}
	if credit > 1 {
		return 1
	}
	return credit
}

// evaluate scores a single question against its submitted answer (or absence
// thereof). It is a pure function: no side effects, no clock, no state.
func (e *Engine) evaluate(q Question, ans *Answer) (Outcome, error) {
	if len(q.Options) == 0 {
		return Outcome{}, newConfigurationError(q, "question has no options")
	}

	switch q.Type {
	case SingleChoice, TrueFalse:
		return e.evaluateSingle(q, ans), nil
	case MultipleChoice:
		return e.evaluateMultiple(q, ans), nil
	case Matching:
		return e.evaluateMatching(q, ans)
	default:
		return Outcome{}, newConfigurationError(q, "unsupported question type")
	}
}

// evaluateSingle handles SINGLE_CHOICE and TRUE_FALSE. Binary types: the
// partial score is never fractional.
func (e *Engine) evaluateSingle(q Question, ans *Answer) Outcome {
	sel, ok := answerAs[Selected](ans)
	if !ok || sel.Option == "" {
		return Outcome{}
	}
	if len(q.CorrectAnswers) > 0 && sel.Option == q.CorrectAnswers[0] {
		return Outcome{IsCorrect: true, PartialScore: 1}
	}
	return Outcome{}
}

func (e *Engine) evaluateMultiple(q Question, ans *Answer) Outcome {
	if ans == nil || ans.Value == nil {
		return Outcome{}
	}

	sel, ok := answerAs[SelectedSet](ans)
	if !ok || len(sel.Options) == 0 {
		// Submitted but empty. If the question (malformed) has no correct
		// options, selecting nothing is the only right answer.
		if len(q.CorrectAnswers) == 0 {
			return Outcome{IsCorrect: true, PartialScore: 1}
		}
		return Outcome{}
	}

	correct := toSet(q.CorrectAnswers)
	selected := toSet(sel.Options)

	if len(correct) == 0 {
		return Outcome{}
	}
	if setsEqual(correct, selected) {
		return Outcome{IsCorrect: true, PartialScore: 1}
	}
	return Outcome{PartialScore: e.partialCredit(correct, selected)}
}

func (e *Engine) evaluateMatching(q Question, ans *Answer) (Outcome, error) {
	if len(q.CorrectAnswers) != len(q.Options) {
		return Outcome{}, newConfigurationError(q, "correct answers do not align with matching keys")
	}

	pairs, ok := answerAs[MatchedPairs](ans)
	if !ok || len(pairs.Pairs) == 0 {
		return Outcome{}, nil
	}

	// Missing keys count as incorrect pairs, not as an error.
	matched := 0
	for i, key := range q.Options {
		if pairs.Pairs[key] == q.CorrectAnswers[i] {
			matched++
		}
	}

	return Outcome{
		IsCorrect:    matched == len(q.Options),
		PartialScore: float64(matched) / float64(len(q.Options)),
	}, nil
}

func answerAs[T AnswerValue](ans *Answer) (T, bool) {
	var zero T
	if ans == nil || ans.Value == nil {
		return zero, false
	}
	v, ok := ans.Value.(T)
	return v, ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
