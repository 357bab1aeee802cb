package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/observability"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/internal/scoring"
)

// SubmissionService scores attempts and records them. Every submission is a
// new row; nothing here updates or deletes past attempts.
type SubmissionService interface {
	Submit(ctx context.Context, quizID, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResultResponse, error)
	ListForQuiz(ctx context.Context, quizID uint) ([]dto.SubmissionResponse, error)
	ListForStudent(ctx context.Context, quizID, studentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	quizzes     repository.QuizRepository
	validator   *validator.Validate
	feed        LiveFeedService
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService. feed may be nil when
// the live score feed is disabled.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, quizRepo repository.QuizRepository, validate *validator.Validate, feed LiveFeedService, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		quizzes:     quizRepo,
		validator:   validate,
		feed:        feed,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/classroom-go-api/internal/service/submission"),
		now:         time.Now,
	}
}

// Submit scores the answer list against the quiz's current question set and
// appends the attempt. Short answer lists are padded with nulls; out-of-range
// picks score zero for that question rather than failing the attempt.
func (s *submissionService) Submit(ctx context.Context, quizID, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "submissions.submit", trace.WithAttributes(
		attribute.Int64("quiz.id", int64(quizID)),
		attribute.Int64("student.id", int64(studentID)),
	))
	defer span.End()

	quiz, err := s.quizzes.GetByID(spanCtx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResultResponse{}, ErrQuizNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResultResponse{}, err
	}

	answers := scoring.PadAnswers(payload.Answers, len(quiz.Questions))
	result := scoring.Score(quiz.Questions, answers)

	submission := models.Submission{
		QuizID:      quizID,
		StudentID:   studentID,
		Score:       result.Percent,
		SubmittedAt: s.now().UTC(),
	}
	if err := submission.SetAnswers(answers); err != nil {
		span.RecordError(err)
		return dto.SubmissionResultResponse{}, err
	}

	if err := s.submissions.Create(spanCtx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResultResponse{}, err
	}

	observability.SubmissionsScored().WithLabelValues(strconv.FormatUint(uint64(quizID), 10)).Inc()
	s.logger.Info().
		Uint("quiz_id", quizID).
		Uint("student_id", studentID).
		Uint("submission_id", submission.ID).
		Float64("score", submission.Score).
		Msg("submission scored")

	if s.feed != nil {
		s.feed.Publish(spanCtx, dto.ScoreEvent{
			SubmissionID: submission.ID,
			QuizID:       quizID,
			StudentID:    studentID,
			Score:        submission.Score,
			SubmittedAt:  submission.SubmittedAt,
		})
	}

	return dto.NewSubmissionResultResponse(submission, result), nil
}

// ListForQuiz returns every attempt for the quiz ranked best first.
func (s *submissionService) ListForQuiz(ctx context.Context, quizID uint) ([]dto.SubmissionResponse, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	submissions, err := s.submissions.ListForQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions)
}

// ListForStudent returns the student's own attempts, newest first.
func (s *submissionService) ListForStudent(ctx context.Context, quizID, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListForQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions)
}
