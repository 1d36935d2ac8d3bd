package scoring

import "fmt"

// ConfigurationError reports a defect in the question data itself (unsupported
// type, malformed matching key set). It aborts scoring for the whole quiz and
// must be surfaced to the caller rather than silently scored as zero.
type ConfigurationError struct {
	QuestionID uint
	Type       QuestionType
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scoring configuration error: question %d (%s): %s", e.QuestionID, e.Type, e.Reason)
}

func newConfigurationError(q Question, reason string) *ConfigurationError {
	return &ConfigurationError{
		QuestionID: q.ID,
		Type:       q.Type,
		Reason:     reason,
	}
}
