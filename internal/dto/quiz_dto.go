package dto

import (
	"time"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// QuestionPayload is the wire form of one question on create/replace. The
// choice array keeps the same JSON shape the store persists: an array of
// strings with a zero-based answer index.
type QuestionPayload struct {
	Text         string   `json:"text" validate:"required"`
	Choices      []string `json:"choices" validate:"required,min=1,dive,required"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0"`
	// Points defaults to 1 when omitted; negatives are rejected.
	Points int `json:"points" validate:"gte=0"`
}

// QuizCreateRequest creates a quiz with its full question set.
type QuizCreateRequest struct {
	ClassID     uint              `json:"class_id" validate:"required,gt=0"`
	Title       string            `json:"title" validate:"required,min=2"`
	Description string            `json:"description"`
	Questions   []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// QuizUpdateRequest replaces a quiz's metadata and entire question set.
type QuizUpdateRequest struct {
	Title       string            `json:"title" validate:"required,min=2"`
	Description string            `json:"description"`
	Questions   []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// QuestionResponse is the tutor view of a question, answer key included.
type QuestionResponse struct {
	ID           uint     `json:"id"`
	Position     int      `json:"position"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Points       int      `json:"points"`
}

// StudentQuestionResponse is the student view: no answer key.
type StudentQuestionResponse struct {
	ID       uint     `json:"id"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Choices  []string `json:"choices"`
	Points   int      `json:"points"`
}

// QuizResponse is the tutor view of a quiz and its ordered questions.
type QuizResponse struct {
	ID          uint               `json:"id"`
	ClassID     uint               `json:"class_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedBy   uint               `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	MaxPoints   int                `json:"max_points"`
	Questions   []QuestionResponse `json:"questions"`
}

// StudentQuizResponse is the quiz as presented to a student taking it.
type StudentQuizResponse struct {
	ID          uint                      `json:"id"`
	ClassID     uint                      `json:"class_id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	MaxPoints   int                       `json:"max_points"`
	Questions   []StudentQuestionResponse `json:"questions"`
}

// NewQuizResponse maps a quiz with questions, keeping insertion order.
func NewQuizResponse(quiz models.Quiz) (QuizResponse, error) {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		choices, err := question.ChoiceList()
		if err != nil {
			return QuizResponse{}, err
		}
		questions = append(questions, QuestionResponse{
			ID:           question.ID,
			Position:     question.Position,
			Text:         question.Text,
			Choices:      choices,
			CorrectIndex: question.CorrectIndex,
			Points:       question.Points,
		})
	}

	return QuizResponse{
		ID:          quiz.ID,
		ClassID:     quiz.ClassID,
		Title:       quiz.Title,
		Description: quiz.Description,
		CreatedBy:   quiz.CreatedBy,
		CreatedAt:   quiz.CreatedAt,
		MaxPoints:   quiz.MaxPoints(),
		Questions:   questions,
	}, nil
}

// NewStudentQuizResponse maps a quiz for a student, stripping the answer key.
func NewStudentQuizResponse(quiz models.Quiz) (StudentQuizResponse, error) {
	questions := make([]StudentQuestionResponse, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		choices, err := question.ChoiceList()
		if err != nil {
			return StudentQuizResponse{}, err
		}
		questions = append(questions, StudentQuestionResponse{
			ID:       question.ID,
			Position: question.Position,
			Text:     question.Text,
			Choices:  choices,
			Points:   question.Points,
		})
	}

	return StudentQuizResponse{
		ID:          quiz.ID,
		ClassID:     quiz.ClassID,
		Title:       quiz.Title,
		Description: quiz.Description,
		MaxPoints:   quiz.MaxPoints(),
		Questions:   questions,
	}, nil
}

// QuizDraftRequest asks the AI generator for draft questions on a topic.
type QuizDraftRequest struct {
	Topic string `json:"topic" validate:"required,min=3"`
	Count int    `json:"count" validate:"omitempty,gte=1,lte=20"`
}

// QuizDraftResponse returns generated draft questions for tutor review.
type QuizDraftResponse struct {
	Topic     string            `json:"topic"`
	Questions []QuestionPayload `json:"questions"`
}
