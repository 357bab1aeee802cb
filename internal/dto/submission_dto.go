package dto

import (
	"time"

	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/scoring"
)

// SubmissionCreateRequest is a student's chosen-answer list, positional by
// question order. A null entry marks an unanswered question; a list shorter
// than the question set is padded with nulls, mirroring web forms where an
// unchecked radio group submits nothing.
type SubmissionCreateRequest struct {
	Answers []*int `json:"answers"`
}

// SubmissionResultResponse reports the outcome of a freshly scored attempt.
type SubmissionResultResponse struct {
	SubmissionID uint      `json:"submission_id"`
	QuizID       uint      `json:"quiz_id"`
	Score        float64   `json:"score"`
	Earned       int       `json:"earned"`
	MaxPoints    int       `json:"max_points"`
	Correct      []bool    `json:"correct"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// NewSubmissionResultResponse combines the stored row with its score breakdown.
func NewSubmissionResultResponse(submission models.Submission, result scoring.Result) SubmissionResultResponse {
	return SubmissionResultResponse{
		SubmissionID: submission.ID,
		QuizID:       submission.QuizID,
		Score:        submission.Score,
		Earned:       result.Earned,
		MaxPoints:    result.MaxPoints,
		Correct:      result.Correct,
		SubmittedAt:  submission.SubmittedAt,
	}
}

// SubmissionResponse is the stored view of one attempt.
type SubmissionResponse struct {
	ID           uint      `json:"id"`
	QuizID       uint      `json:"quiz_id"`
	StudentID    uint      `json:"student_id"`
	StudentName  string    `json:"student_name,omitempty"`
	StudentEmail string    `json:"student_email,omitempty"`
	Answers      []*int    `json:"answers"`
	Score        float64   `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// NewSubmissionResponse maps a stored attempt, decoding its answer array.
func NewSubmissionResponse(submission models.Submission) (SubmissionResponse, error) {
	answers, err := submission.AnswerList()
	if err != nil {
		return SubmissionResponse{}, err
	}
	return SubmissionResponse{
		ID:           submission.ID,
		QuizID:       submission.QuizID,
		StudentID:    submission.StudentID,
		StudentName:  submission.Student.Name,
		StudentEmail: submission.Student.Email,
		Answers:      answers,
		Score:        submission.Score,
		SubmittedAt:  submission.SubmittedAt,
	}, nil
}

// ScoreEvent is broadcast to live feed subscribers when an attempt is scored.
type ScoreEvent struct {
	SubmissionID uint      `json:"submission_id"`
	QuizID       uint      `json:"quiz_id"`
	StudentID    uint      `json:"student_id"`
	StudentName  string    `json:"student_name,omitempty"`
	Score        float64   `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// NewSubmissionResponseSlice maps a list of attempts, preserving order.
func NewSubmissionResponseSlice(submissions []models.Submission) ([]SubmissionResponse, error) {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		response, err := NewSubmissionResponse(submission)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}
