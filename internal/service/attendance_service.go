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

// AttendanceService records and reads attendance marks.
type AttendanceService interface {
	Mark(ctx context.Context, classID uint, payload dto.AttendanceMarkRequest, actor Actor) ([]dto.AttendanceResponse, error)
	ListForClass(ctx context.Context, classID uint) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	attendance repository.AttendanceRepository
	classes    repository.ClassRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(attendanceRepo repository.AttendanceRepository, classRepo repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		attendance: attendanceRepo,
		classes:    classRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "attendance_service").Logger(),
		now:        time.Now,
	}
}

// Mark records attendance for several students at once. A free-text reason is
// only kept for justified absences; present and absent marks store none.
func (s *attendanceService) Mark(ctx context.Context, classID uint, payload dto.AttendanceMarkRequest, actor Actor) ([]dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if actor.Role == models.RoleTutor && class.TutorID != actor.ID {
		return nil, ErrNotClassOwner
	}

	markedAt := s.now().UTC()
	responses := make([]dto.AttendanceResponse, 0, len(payload.Marks))
	for _, mark := range payload.Marks {
		reason := ""
		if mark.Status == models.AttendanceJustified {
			reason = strings.TrimSpace(mark.Reason)
		}

		record := models.AttendanceRecord{
			ClassID:   classID,
			StudentID: mark.StudentID,
			Status:    mark.Status,
			Reason:    reason,
			MarkedBy:  actor.ID,
			MarkedAt:  markedAt,
		}
		if err := s.attendance.Create(ctx, &record); err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewAttendanceResponse(record))
	}

	s.logger.Info().Uint("class_id", classID).Int("marks", len(payload.Marks)).Msg("attendance recorded")
	return responses, nil
}

func (s *attendanceService) ListForClass(ctx context.Context, classID uint) ([]dto.AttendanceResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	records, err := s.attendance.ListForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return dto.NewAttendanceResponseSlice(records), nil
}
