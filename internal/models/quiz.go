package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Quiz is an ordered set of questions tied to one class. Question order is
// significant: it drives display order and the positional correspondence
// between a submission's answer list and the question list.
type Quiz struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ClassID     uint       `gorm:"not null;index" json:"class_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedBy   uint       `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
}

// MaxPoints sums the point weights of all questions.
func (q Quiz) MaxPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Question holds one prompt, its choice list and the answer key. Choices are
// persisted as a JSON array of strings. A question is immutable once created;
// editing a quiz replaces its whole question set.
type Question struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	QuizID       uint           `gorm:"not null;index" json:"quiz_id"`
	Position     int            `gorm:"not null" json:"position"`
	Text         string         `gorm:"type:text;not null" json:"text"`
	Choices      datatypes.JSON `gorm:"type:json;not null" json:"choices"`
	CorrectIndex int            `gorm:"not null" json:"correct_index"`
	Points       int            `gorm:"not null;default:1" json:"points"`
}

// Validation failures raised when constructing a question.
var (
	ErrEmptyChoices     = errors.New("question must offer at least one choice")
	ErrAnswerOutOfRange = errors.New("correct answer index is out of range")
	ErrInvalidPoints    = errors.New("question points must be at least 1")
)

// NewQuestion builds a validated question. The answer index must reference an
// existing choice and the point weight must be positive; otherwise no question
// is produced and nothing should be written.
func NewQuestion(text string, choices []string, correctIndex, points int) (Question, error) {
	if len(choices) == 0 {
		return Question{}, ErrEmptyChoices
	}
	if correctIndex < 0 || correctIndex >= len(choices) {
		return Question{}, fmt.Errorf("%w: index %d with %d choices", ErrAnswerOutOfRange, correctIndex, len(choices))
	}
	if points < 1 {
		return Question{}, fmt.Errorf("%w: got %d", ErrInvalidPoints, points)
	}

	encoded, err := json.Marshal(choices)
	if err != nil {
		return Question{}, fmt.Errorf("encode choices: %w", err)
	}

	return Question{
		Text:         text,
		Choices:      datatypes.JSON(encoded),
		CorrectIndex: correctIndex,
		Points:       points,
	}, nil
}

// ChoiceList decodes the persisted choice array.
func (q Question) ChoiceList() ([]string, error) {
	var choices []string
	if err := json.Unmarshal([]byte(q.Choices), &choices); err != nil {
		return nil, fmt.Errorf("decode choices for question %d: %w", q.ID, err)
	}
	return choices, nil
}
