package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// SubmissionRepository persists scored attempts. The store is append-only:
// there is no Update and no uniqueness constraint on (quiz_id, student_id);
// every attempt is its own row.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListForQuiz(ctx context.Context, quizID uint) ([]models.Submission, error)
	ListForQuizAndStudent(ctx context.Context, quizID, studentID uint) ([]models.Submission, error)
	AverageScore(ctx context.Context, quizID uint) (float64, error)
	CountSubmissions(ctx context.Context, quizID uint) (int64, error)
	CountDistinctSubmitters(ctx context.Context, quizID uint) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Student").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// ListForQuiz returns all attempts ranked by score descending. Ties keep
// insertion order via the id tiebreak, so the sort is stable across reads.
func (r *submissionRepository) ListForQuiz(ctx context.Context, quizID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("quiz_id = ?", quizID).
		Order("score DESC").
		Order("id ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListForQuizAndStudent returns the student's attempts newest first. Zero,
// one or many rows are all valid outcomes.
func (r *submissionRepository) ListForQuizAndStudent(ctx context.Context, quizID, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// AverageScore is the arithmetic mean over every recorded attempt, 0 when the
// quiz has no submissions.
func (r *submissionRepository) AverageScore(ctx context.Context, quizID uint) (float64, error) {
	var average float64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("quiz_id = ?", quizID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&average).Error
	if err != nil {
		return 0, err
	}
	return average, nil
}

func (r *submissionRepository) CountSubmissions(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) CountDistinctSubmitters(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("quiz_id = ?", quizID).
		Distinct("student_id").
		Count(&count).Error
	return count, err
}
