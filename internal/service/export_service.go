package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/repository"
)

// ExportService renders tutor-facing CSV downloads.
type ExportService interface {
	SubmissionsCSV(ctx context.Context, quizID uint) ([]byte, error)
	AttendanceCSV(ctx context.Context, classID uint) ([]byte, error)
}

type exportService struct {
	submissions repository.SubmissionRepository
	quizzes     repository.QuizRepository
	attendance  repository.AttendanceRepository
	classes     repository.ClassRepository
	logger      zerolog.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(submissionRepo repository.SubmissionRepository, quizRepo repository.QuizRepository, attendanceRepo repository.AttendanceRepository, classRepo repository.ClassRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		submissions: submissionRepo,
		quizzes:     quizRepo,
		attendance:  attendanceRepo,
		classes:     classRepo,
		logger:      logger.With().Str("component", "export_service").Logger(),
	}
}

// SubmissionsCSV exports every attempt for the quiz, best score first, in the
// same ranking the results view shows.
func (s *exportService) SubmissionsCSV(ctx context.Context, quizID uint) ([]byte, error) {
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

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	if err := writer.Write([]string{"student_name", "student_email", "score", "submitted_at"}); err != nil {
		return nil, err
	}
	for _, submission := range submissions {
		row := []string{
			submission.Student.Name,
			submission.Student.Email,
			strconv.FormatFloat(submission.Score, 'f', 2, 64),
			submission.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("quiz_id", quizID).Int("rows", len(submissions)).Msg("submissions exported")
	return buffer.Bytes(), nil
}

// AttendanceCSV exports the class's attendance log, newest marks first.
func (s *exportService) AttendanceCSV(ctx context.Context, classID uint) ([]byte, error) {
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

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	if err := writer.Write([]string{"student_name", "status", "reason", "marked_by", "marked_at"}); err != nil {
		return nil, err
	}
	for _, record := range records {
		row := []string{
			record.Student.Name,
			record.Status,
			record.Reason,
			strconv.FormatUint(uint64(record.MarkedBy), 10),
			record.MarkedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("class_id", classID).Int("rows", len(records)).Msg("attendance exported")
	return buffer.Bytes(), nil
}
