package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

func intPtr(v int) *int { return &v }

func makeSubmission(t *testing.T, quizID, studentID uint, score float64, answers []*int) models.Submission {
	t.Helper()
	submission := models.Submission{
		QuizID:      quizID,
		StudentID:   studentID,
		Score:       score,
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, submission.SetAnswers(answers))
	return submission
}

func TestSubmissionRepositoryListForQuizRanksByScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	quizID := uint(801)

	first := makeSubmission(t, quizID, 1, 50, []*int{intPtr(0)})
	second := makeSubmission(t, quizID, 2, 100, []*int{intPtr(1)})
	third := makeSubmission(t, quizID, 3, 50, []*int{nil})
	for _, submission := range []*models.Submission{&first, &second, &third} {
		require.NoError(t, repo.Create(context.Background(), submission))
	}

	ranked, err := repo.ListForQuiz(context.Background(), quizID)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	require.Equal(t, second.ID, ranked[0].ID)
	// Equal scores keep insertion order.
	require.Equal(t, first.ID, ranked[1].ID)
	require.Equal(t, third.ID, ranked[2].ID)
}

func TestSubmissionRepositoryListForQuizAndStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	quizID := uint(802)

	older := makeSubmission(t, quizID, 5, 40, []*int{intPtr(0)})
	older.SubmittedAt = time.Now().UTC().Add(-time.Hour)
	newer := makeSubmission(t, quizID, 5, 80, []*int{intPtr(1)})
	other := makeSubmission(t, quizID, 6, 90, []*int{intPtr(1)})
	for _, submission := range []*models.Submission{&older, &newer, &other} {
		require.NoError(t, repo.Create(context.Background(), submission))
	}

	attempts, err := repo.ListForQuizAndStudent(context.Background(), quizID, 5)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.Equal(t, newer.ID, attempts[0].ID, "newest attempt first")

	none, err := repo.ListForQuizAndStudent(context.Background(), quizID, 777)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSubmissionRepositoryAverageScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	quizID := uint(803)

	for i, score := range []float64{100, 0, 50} {
		submission := makeSubmission(t, quizID, uint(i+1), score, []*int{intPtr(0)})
		require.NoError(t, repo.Create(context.Background(), &submission))
	}

	average, err := repo.AverageScore(context.Background(), quizID)
	require.NoError(t, err)
	require.Equal(t, 50.0, average)

	empty, err := repo.AverageScore(context.Background(), 99901)
	require.NoError(t, err)
	require.Equal(t, 0.0, empty)
}

func TestSubmissionRepositoryDistinctSubmitters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	quizID := uint(804)

	repeat1 := makeSubmission(t, quizID, 11, 70, []*int{intPtr(0)})
	repeat2 := makeSubmission(t, quizID, 11, 90, []*int{intPtr(1)})
	single := makeSubmission(t, quizID, 12, 60, []*int{intPtr(0)})
	for _, submission := range []*models.Submission{&repeat1, &repeat2, &single} {
		require.NoError(t, repo.Create(context.Background(), submission))
	}

	total, err := repo.CountSubmissions(context.Background(), quizID)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	distinct, err := repo.CountDistinctSubmitters(context.Background(), quizID)
	require.NoError(t, err)
	require.Equal(t, int64(2), distinct)
}

func TestSubmissionRepositoryAnswersRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	submission := makeSubmission(t, 805, 21, 33.33, []*int{intPtr(1), nil, intPtr(3)})
	require.NoError(t, repo.Create(context.Background(), &submission))

	loaded, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)

	answers, err := loaded.AnswerList()
	require.NoError(t, err)
	require.Len(t, answers, 3)
	require.Equal(t, 1, *answers[0])
	require.Nil(t, answers[1])
	require.Equal(t, 3, *answers[2])
	require.Equal(t, 33.33, loaded.Score)
}
