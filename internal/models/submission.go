package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Submission is one scored attempt by one student against one quiz. Rows are
// append-only: a resubmission inserts a new row, it never mutates an old one.
// Answers persist as a JSON array of nullable integers, one entry per question
// in quiz order; null marks an unanswered question.
type Submission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	QuizID      uint           `gorm:"not null;index" json:"quiz_id"`
	StudentID   uint           `gorm:"not null;index" json:"student_id"`
	Answers     datatypes.JSON `gorm:"type:json;not null" json:"answers"`
	Score       float64        `gorm:"not null" json:"score"`
	SubmittedAt time.Time      `gorm:"not null" json:"submitted_at"`
	Quiz        Quiz           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Student     User           `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// SetAnswers encodes the chosen-answer list onto the row.
func (s *Submission) SetAnswers(answers []*int) error {
	if answers == nil {
		answers = []*int{}
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	s.Answers = datatypes.JSON(encoded)
	return nil
}

// AnswerList decodes the persisted answer array.
func (s Submission) AnswerList() ([]*int, error) {
	var answers []*int
	if err := json.Unmarshal([]byte(s.Answers), &answers); err != nil {
		return nil, fmt.Errorf("decode answers for submission %d: %w", s.ID, err)
	}
	return answers, nil
}
