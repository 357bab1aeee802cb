package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrRoleNotAllowed indicates the actor may not create the requested role.
	ErrRoleNotAllowed = errors.New("actor may not create this role")
	// ErrUserNotFound indicates the account could not be located.
	ErrUserNotFound = errors.New("user not found")
)

// UserService provisions and reads accounts. Tutors may create students;
// only admins may create tutors; admins are never created through the API.
type UserService interface {
	Provision(ctx context.Context, payload dto.UserCreateRequest, actor Actor) (dto.UserResponse, error)
	GetByID(ctx context.Context, id uint) (dto.UserResponse, error)
	ListStudents(ctx context.Context) ([]dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	classes   repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUserService constructs a UserService instance.
func NewUserService(userRepo repository.UserRepository, classRepo repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     userRepo,
		classes:   classRepo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
		now:       time.Now,
	}
}

func (s *userService) Provision(ctx context.Context, payload dto.UserCreateRequest, actor Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Role == models.RoleTutor && actor.Role != models.RoleAdmin {
		return dto.UserResponse{}, ErrRoleNotAllowed
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         payload.Role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Role == models.RoleStudent && payload.ClassID != nil {
		enrollment := models.Enrollment{
			ClassID:    *payload.ClassID,
			UserID:     user.ID,
			EnrolledAt: s.now(),
		}
		if err := s.classes.Enroll(ctx, &enrollment); err != nil {
			// The account exists either way; enrollment can be retried.
			s.logger.Warn().Err(err).Uint("user_id", user.ID).Uint("class_id", *payload.ClassID).Msg("enrollment during provisioning failed")
		}
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user provisioned")

	return dto.NewUserResponse(user), nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) ListStudents(ctx context.Context) ([]dto.UserResponse, error) {
	students, err := s.users.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(students), nil
}
