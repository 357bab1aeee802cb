package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
)

var (
	// ErrClassNotFound indicates the class could not be located.
	ErrClassNotFound = errors.New("class not found")
	// ErrNotClassOwner indicates the acting tutor does not own the class.
	ErrNotClassOwner = errors.New("class is owned by another tutor")
)

// ClassService manages classes and enrollment.
type ClassService interface {
	Create(ctx context.Context, payload dto.ClassCreateRequest, actor Actor) (dto.ClassResponse, error)
	GetByID(ctx context.Context, id uint) (dto.ClassResponse, error)
	ListForTutor(ctx context.Context, tutorID uint) ([]dto.ClassResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.ClassResponse, error)
	Enroll(ctx context.Context, classID uint, payload dto.EnrollRequest, actor Actor) error
	ListStudents(ctx context.Context, classID uint) ([]dto.UserResponse, error)
}

type classService struct {
	classes   repository.ClassRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewClassService constructs a ClassService instance.
func NewClassService(classRepo repository.ClassRepository, userRepo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:   classRepo,
		users:     userRepo,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
		now:       time.Now,
	}
}

func (s *classService) Create(ctx context.Context, payload dto.ClassCreateRequest, actor Actor) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		TutorID:     actor.ID,
	}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("tutor_id", actor.ID).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *classService) GetByID(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}
	return dto.NewClassResponse(class), nil
}

func (s *classService) ListForTutor(ctx context.Context, tutorID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListForTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) ListForStudent(ctx context.Context, studentID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassResponseSlice(classes), nil
}

// Enroll adds a student to a class owned by the acting tutor. Enrolling an
// already enrolled student is a no-op.
func (s *classService) Enroll(ctx context.Context, classID uint, payload dto.EnrollRequest, actor Actor) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if actor.Role == models.RoleTutor && class.TutorID != actor.ID {
		return ErrNotClassOwner
	}

	if _, err := s.users.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	enrollment := models.Enrollment{
		ClassID:    classID,
		UserID:     payload.StudentID,
		EnrolledAt: s.now(),
	}
	if err := s.classes.Enroll(ctx, &enrollment); err != nil {
		return err
	}

	s.logger.Info().Uint("class_id", classID).Uint("student_id", payload.StudentID).Msg("student enrolled")
	return nil
}

func (s *classService) ListStudents(ctx context.Context, classID uint) ([]dto.UserResponse, error) {
	students, err := s.classes.ListStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(students), nil
}
