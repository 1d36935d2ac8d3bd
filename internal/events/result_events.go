package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of quiz service events
type EventType string

const (
	// Quiz lifecycle events
	EventQuizPublished EventType = "quiz.published"
	EventQuizArchived  EventType = "quiz.archived"

	// Result events
	EventResultRecorded   EventType = "result.recorded"
	EventPracticeRecorded EventType = "result.practice_recorded"
)

// Event is the envelope for all published events
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const eventSource = "quiz-service"

// Event payloads

type QuizPublishedEvent struct {
	QuizID    uint   `json:"quiz_id"`
	QuizTitle string `json:"quiz_title"`
	SubjectID uint   `json:"subject_id"`
	CreatorID string `json:"creator_id"`
}

type ResultRecordedEvent struct {
	ResultID       uint      `json:"result_id"`
	QuizID         uint      `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	UserID         string    `json:"user_id"`
	Score          float64   `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Passed         bool      `json:"passed"`
	IsPractice     bool      `json:"is_practice"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// Event factory functions

func NewQuizPublishedEvent(quizID uint, title string, subjectID uint, creatorID string) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      EventQuizPublished,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: QuizPublishedEvent{
			QuizID:    quizID,
			QuizTitle: title,
			SubjectID: subjectID,
			CreatorID: creatorID,
		},
	}
}

func NewResultRecordedEvent(resultID, quizID uint, quizTitle, userID string, score float64, correctAnswers, totalQuestions int, passed, isPractice bool) *Event {
	eventType := EventResultRecorded
	if isPractice {
		eventType = EventPracticeRecorded
	}

	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ResultRecordedEvent{
			ResultID:       resultID,
			QuizID:         quizID,
			QuizTitle:      quizTitle,
			UserID:         userID,
			Score:          score,
			CorrectAnswers: correctAnswers,
			TotalQuestions: totalQuestions,
			Passed:         passed,
			IsPractice:     isPractice,
			RecordedAt:     time.Now(),
		},
	}
}

// GenerateEventID returns a unique event identifier
func GenerateEventID() string {
	return uuid.NewString()
}
