package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/pkg/ai"
)

var (
	// ErrQuizNotFound indicates the quiz could not be located.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrDraftsDisabled indicates no AI generator is configured.
	ErrDraftsDisabled = errors.New("question drafting is not configured")
	// ErrImportInvalid indicates an imported question payload failed schema validation.
	ErrImportInvalid = errors.New("imported questions are invalid")
)

// questionImportSchema validates pasted question JSON before it reaches the
// model constructors. It pins the persisted wire shape: an array of objects
// with a string choice list and a zero-based answer index.
const questionImportSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["text", "choices", "correct_index"],
		"properties": {
			"text": {"type": "string", "minLength": 1},
			"choices": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string"}
			},
			"correct_index": {"type": "integer", "minimum": 0},
			"points": {"type": "integer", "minimum": 1}
		}
	}
}`

// QuizService manages quizzes and their immutable question sets.
type QuizService interface {
	Create(ctx context.Context, payload dto.QuizCreateRequest, actor Actor) (dto.QuizResponse, error)
	Replace(ctx context.Context, quizID uint, payload dto.QuizUpdateRequest, actor Actor) (dto.QuizResponse, error)
	GetByID(ctx context.Context, quizID uint) (dto.QuizResponse, error)
	GetForStudent(ctx context.Context, quizID uint) (dto.StudentQuizResponse, error)
	ListForClass(ctx context.Context, classID uint) ([]dto.QuizResponse, error)
	Delete(ctx context.Context, quizID uint, actor Actor) error
	ImportQuestions(ctx context.Context, raw json.RawMessage) ([]dto.QuestionPayload, error)
	Draft(ctx context.Context, payload dto.QuizDraftRequest) (dto.QuizDraftResponse, error)
}

type quizService struct {
	quizzes   repository.QuizRepository
	classes   repository.ClassRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	schema    *jsonschema.Schema
	drafts    ai.Generator
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQuizService constructs a QuizService instance. generator may be nil when
// AI drafting is disabled.
func NewQuizService(quizRepo repository.QuizRepository, classRepo repository.ClassRepository, validate *validator.Validate, generator ai.Generator, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:   quizRepo,
		classes:   classRepo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		schema:    jsonschema.MustCompileString("questions.json", questionImportSchema),
		drafts:    generator,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		now:       time.Now,
	}
}

func (s *quizService) Create(ctx context.Context, payload dto.QuizCreateRequest, actor Actor) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrClassNotFound
		}
		return dto.QuizResponse{}, err
	}
	if actor.Role == models.RoleTutor && class.TutorID != actor.ID {
		return dto.QuizResponse{}, ErrNotClassOwner
	}

	questions, err := s.buildQuestions(payload.Questions)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		ClassID:     payload.ClassID,
		Title:       s.clean(payload.Title),
		Description: s.clean(payload.Description),
		CreatedBy:   actor.ID,
		Questions:   questions,
	}
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("class_id", quiz.ClassID).Int("questions", len(questions)).Msg("quiz created")

	return dto.NewQuizResponse(quiz)
}

// Replace swaps the quiz's metadata and whole question set atomically. When
// any question fails validation nothing is written and the stored set stays
// intact.
func (s *quizService) Replace(ctx context.Context, quizID uint, payload dto.QuizUpdateRequest, actor Actor) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	existing, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}
	if actor.Role == models.RoleTutor && existing.CreatedBy != actor.ID {
		return dto.QuizResponse{}, ErrNotClassOwner
	}

	questions, err := s.buildQuestions(payload.Questions)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	title := s.clean(payload.Title)
	description := s.clean(payload.Description)
	if err := s.quizzes.ReplaceQuestions(ctx, quizID, title, description, questions); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	updated, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quizID).Int("questions", len(questions)).Msg("quiz questions replaced")

	return dto.NewQuizResponse(updated)
}

func (s *quizService) GetByID(ctx context.Context, quizID uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}
	return dto.NewQuizResponse(quiz)
}

func (s *quizService) GetForStudent(ctx context.Context, quizID uint) (dto.StudentQuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentQuizResponse{}, ErrQuizNotFound
		}
		return dto.StudentQuizResponse{}, err
	}
	return dto.NewStudentQuizResponse(quiz)
}

func (s *quizService) ListForClass(ctx context.Context, classID uint) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.ListForClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		response, err := dto.NewQuizResponse(quiz)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *quizService) Delete(ctx context.Context, quizID uint, actor Actor) error {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}
	if actor.Role == models.RoleTutor && quiz.CreatedBy != actor.ID {
		return ErrNotClassOwner
	}

	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		return err
	}

	s.logger.Info().Uint("quiz_id", quizID).Msg("quiz deleted")
	return nil
}

// ImportQuestions validates a pasted JSON question array against the wire
// schema and returns the decoded payloads for a subsequent create/replace.
func (s *quizService) ImportQuestions(ctx context.Context, raw json.RawMessage) ([]dto.QuestionPayload, error) {
	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImportInvalid, err)
	}
	if err := s.schema.Validate(document); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImportInvalid, err)
	}

	var payloads []dto.QuestionPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImportInvalid, err)
	}
	return payloads, nil
}

// Draft asks the configured AI generator for candidate questions. Drafts are
// sanitized like any tutor input and validated through the same constructors
// before being returned for review; invalid drafts are dropped, not repaired.
func (s *quizService) Draft(ctx context.Context, payload dto.QuizDraftRequest) (dto.QuizDraftResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizDraftResponse{}, err
	}
	if s.drafts == nil {
		return dto.QuizDraftResponse{}, ErrDraftsDisabled
	}

	count := payload.Count
	if count == 0 {
		count = 5
	}

	drafts, err := s.drafts.GenerateQuestions(ctx, payload.Topic, count)
	if err != nil {
		return dto.QuizDraftResponse{}, err
	}

	questions := make([]dto.QuestionPayload, 0, len(drafts))
	for _, draft := range drafts {
		candidate := dto.QuestionPayload{
			Text:         s.clean(draft.Text),
			Choices:      s.cleanAll(draft.Choices),
			CorrectIndex: draft.CorrectIndex,
			Points:       draft.Points,
		}
		if candidate.Points < 1 {
			candidate.Points = 1
		}
		if _, err := models.NewQuestion(candidate.Text, candidate.Choices, candidate.CorrectIndex, candidate.Points); err != nil {
			s.logger.Warn().Err(err).Str("topic", payload.Topic).Msg("dropping invalid generated question")
			continue
		}
		questions = append(questions, candidate)
	}

	return dto.QuizDraftResponse{Topic: payload.Topic, Questions: questions}, nil
}

// buildQuestions converts payloads into validated model questions. Missing
// point weights default to 1, matching the historic import format.
func (s *quizService) buildQuestions(payloads []dto.QuestionPayload) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(payloads))
	for i, payload := range payloads {
		points := payload.Points
		if points == 0 {
			points = 1
		}
		question, err := models.NewQuestion(s.clean(payload.Text), s.cleanAll(payload.Choices), payload.CorrectIndex, points)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func (s *quizService) clean(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func (s *quizService) cleanAll(inputs []string) []string {
	cleaned := make([]string, 0, len(inputs))
	for _, input := range inputs {
		cleaned = append(cleaned, s.clean(input))
	}
	return cleaned
}
