package ai

import "context"

// QuestionDraft is one generated multiple-choice question, pending tutor
// review before it becomes part of a quiz.
type QuestionDraft struct {
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Points       int      `json:"points"`
}

// Generator describes an AI model capable of drafting quiz questions.
type Generator interface {
	GenerateQuestions(ctx context.Context, topic string, count int) ([]QuestionDraft, error)
}
