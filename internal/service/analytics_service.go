package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/observability"
	"github.com/noah-isme/classroom-go-api/internal/repository"
)

// AnalyticsService aggregates quiz results and attendance into dashboard
// views. Aggregates are always computed from the stored attempts, never kept
// as running counters, so they survive any replay of the submission log.
type AnalyticsService interface {
	QuizStats(ctx context.Context, quizID uint) (dto.QuizStatsResponse, error)
	ClassOverview(ctx context.Context, classID uint) (dto.ClassOverviewResponse, error)
	StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type analyticsService struct {
	quizzes     repository.QuizRepository
	submissions repository.SubmissionRepository
	classes     repository.ClassRepository
	attendance  repository.AttendanceRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService. cache may be nil; every
// overview is then computed on demand.
func NewAnalyticsService(quizRepo repository.QuizRepository, submissionRepo repository.SubmissionRepository, classRepo repository.ClassRepository, attendanceRepo repository.AttendanceRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		quizzes:     quizRepo,
		submissions: submissionRepo,
		classes:     classRepo,
		attendance:  attendanceRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/classroom-go-api/internal/service/analytics"),
		now:         time.Now,
	}
}

// QuizStats reports the average score, attempt count and completion rate for
// one quiz. The completion denominator is the class's enrolled student count,
// floored at one so an unenrolled class still yields a defined rate.
func (s *analyticsService) QuizStats(ctx context.Context, quizID uint) (dto.QuizStatsResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizStatsResponse{}, ErrQuizNotFound
		}
		return dto.QuizStatsResponse{}, err
	}
	return s.statsForQuiz(ctx, quiz)
}

func (s *analyticsService) statsForQuiz(ctx context.Context, quiz models.Quiz) (dto.QuizStatsResponse, error) {
	average, err := s.submissions.AverageScore(ctx, quiz.ID)
	if err != nil {
		return dto.QuizStatsResponse{}, err
	}
	count, err := s.submissions.CountSubmissions(ctx, quiz.ID)
	if err != nil {
		return dto.QuizStatsResponse{}, err
	}
	submitters, err := s.submissions.CountDistinctSubmitters(ctx, quiz.ID)
	if err != nil {
		return dto.QuizStatsResponse{}, err
	}
	enrolled, err := s.classes.CountEnrolled(ctx, quiz.ClassID)
	if err != nil {
		return dto.QuizStatsResponse{}, err
	}
	if enrolled == 0 {
		enrolled = 1
	}

	return dto.QuizStatsResponse{
		QuizID:          quiz.ID,
		Title:           quiz.Title,
		AverageScore:    roundToTwo(average),
		SubmissionCount: count,
		CompletionRate:  roundToOne(100 * float64(submitters) / float64(enrolled)),
	}, nil
}

// ClassOverview builds the tutor dashboard block for one class, served from
// the cache when a fresh copy exists.
func (s *analyticsService) ClassOverview(ctx context.Context, classID uint) (dto.ClassOverviewResponse, error) {
	cacheKey := fmt.Sprintf("analytics:class:%d", classID)
	ctx, span := s.tracer.Start(ctx, "analytics.class_overview")
	span.SetAttributes(attribute.String("analytics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.ClassOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.AnalyticsCacheLookups().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read class overview cache")
			span.RecordError(err)
		}
		observability.AnalyticsCacheLookups().WithLabelValues("miss").Inc()
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassOverviewResponse{}, ErrClassNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_class_failed")
		return dto.ClassOverviewResponse{}, err
	}

	students, err := s.classes.ListStudents(ctx, classID)
	if err != nil {
		span.RecordError(err)
		return dto.ClassOverviewResponse{}, err
	}

	quizzes, err := s.quizzes.ListForClass(ctx, classID)
	if err != nil {
		span.RecordError(err)
		return dto.ClassOverviewResponse{}, err
	}

	stats := make([]dto.QuizStatsResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		quizStats, err := s.statsForQuiz(ctx, quiz)
		if err != nil {
			span.RecordError(err)
			return dto.ClassOverviewResponse{}, err
		}
		stats = append(stats, quizStats)
	}

	records, err := s.attendance.ListForClass(ctx, classID)
	if err != nil {
		span.RecordError(err)
		return dto.ClassOverviewResponse{}, err
	}

	overview := dto.ClassOverviewResponse{
		Class:       dto.NewClassResponse(class),
		Students:    dto.NewUserResponseSlice(students),
		Quizzes:     stats,
		Attendance:  dto.NewAttendanceResponseSlice(records),
		GeneratedAt: s.now().UTC(),
	}
	span.SetAttributes(
		attribute.Int("analytics.student_count", len(students)),
		attribute.Int("analytics.quiz_count", len(quizzes)),
	)

	if s.cache != nil {
		payload, err := json.Marshal(overview)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store class overview cache")
				span.RecordError(err)
			}
		}
	}

	return overview, nil
}

// StudentDashboard assembles the student landing view: their classes, every
// quiz in them with the latest attempt's score, and per-class attendance
// tallies.
func (s *analyticsService) StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	classes, err := s.classes.ListForStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	overviews := make([]dto.StudentQuizOverview, 0)
	for _, class := range classes {
		quizzes, err := s.quizzes.ListForClass(ctx, class.ID)
		if err != nil {
			return dto.StudentDashboardResponse{}, err
		}
		for _, quiz := range quizzes {
			attempts, err := s.submissions.ListForQuizAndStudent(ctx, quiz.ID, studentID)
			if err != nil {
				return dto.StudentDashboardResponse{}, err
			}
			overview := dto.StudentQuizOverview{
				QuizID:     quiz.ID,
				ClassID:    class.ID,
				ClassTitle: class.Title,
				Title:      quiz.Title,
				Attempts:   len(attempts),
			}
			if len(attempts) > 0 {
				latest := attempts[0].Score
				overview.LatestScore = &latest
			}
			overviews = append(overviews, overview)
		}
	}

	summaries, err := s.attendanceSummaries(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	return dto.StudentDashboardResponse{
		Classes:    dto.NewClassResponseSlice(classes),
		Quizzes:    overviews,
		Attendance: summaries,
	}, nil
}

func (s *analyticsService) attendanceSummaries(ctx context.Context, studentID uint) ([]dto.AttendanceSummaryResponse, error) {
	records, err := s.attendance.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	byClass := make(map[uint]*dto.AttendanceSummaryResponse)
	order := make([]uint, 0)
	for _, record := range records {
		summary, ok := byClass[record.ClassID]
		if !ok {
			summary = &dto.AttendanceSummaryResponse{
				ClassID:    record.ClassID,
				ClassTitle: record.Class.Title,
			}
			byClass[record.ClassID] = summary
			order = append(order, record.ClassID)
		}
		switch record.Status {
		case models.AttendancePresent:
			summary.Presents++
		case models.AttendanceAbsent:
			summary.Absents++
		case models.AttendanceJustified:
			summary.Justified++
		}
	}

	summaries := make([]dto.AttendanceSummaryResponse, 0, len(order))
	for _, classID := range order {
		summaries = append(summaries, *byClass[classID])
	}
	return summaries, nil
}

func roundToOne(value float64) float64 {
	return math.Round(value*10) / 10
}

func roundToTwo(value float64) float64 {
	return math.Round(value*100) / 100
}
