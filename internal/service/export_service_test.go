package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

func TestExportSubmissionsCSV(t *testing.T) {
	quizzes := newFakeQuizRepo()
	quizID := seedQuiz(t, quizzes)

	submissions := newFakeSubmissionRepo()
	submittedAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	submission := models.Submission{
		QuizID:      quizID,
		StudentID:   20,
		Score:       66.67,
		SubmittedAt: submittedAt,
		Student:     models.User{ID: 20, Name: "Ada Lovelace", Email: "ada@example.com"},
	}
	require.NoError(t, submission.SetAnswers(nil))
	require.NoError(t, submissions.Create(context.Background(), &submission))

	classes := &fakeClassRepo{classes: map[uint]models.Class{1: {ID: 1, Title: "Algebra", TutorID: 7}}}
	svc := NewExportService(submissions, quizzes, &fakeAttendanceRepo{}, classes, testLogger())

	payload, err := svc.SubmissionsCSV(context.Background(), quizID)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"student_name", "student_email", "score", "submitted_at"}, rows[0])
	require.Equal(t, []string{"Ada Lovelace", "ada@example.com", "66.67", "2026-03-14T10:30:00Z"}, rows[1])
}

func TestExportSubmissionsCSVMissingQuiz(t *testing.T) {
	svc := NewExportService(newFakeSubmissionRepo(), newFakeQuizRepo(), &fakeAttendanceRepo{}, &fakeClassRepo{}, testLogger())

	_, err := svc.SubmissionsCSV(context.Background(), 404)
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestExportAttendanceCSV(t *testing.T) {
	attendance := &fakeAttendanceRepo{}
	markedAt := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	require.NoError(t, attendance.Create(context.Background(), &models.AttendanceRecord{
		ClassID:   1,
		StudentID: 22,
		Status:    models.AttendanceJustified,
		Reason:    "doctor visit",
		MarkedBy:  7,
		MarkedAt:  markedAt,
		Student:   models.User{ID: 22, Name: "Grace Hopper"},
	}))

	classes := &fakeClassRepo{classes: map[uint]models.Class{1: {ID: 1, Title: "Algebra", TutorID: 7}}}
	svc := NewExportService(newFakeSubmissionRepo(), newFakeQuizRepo(), attendance, classes, testLogger())

	payload, err := svc.AttendanceCSV(context.Background(), 1)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"student_name", "status", "reason", "marked_by", "marked_at"}, rows[0])
	require.Equal(t, []string{"Grace Hopper", "justified", "doctor visit", "7", "2026-03-14T08:00:00Z"}, rows[1])
}

func TestExportAttendanceCSVMissingClass(t *testing.T) {
	svc := NewExportService(newFakeSubmissionRepo(), newFakeQuizRepo(), &fakeAttendanceRepo{}, &fakeClassRepo{}, testLogger())

	_, err := svc.AttendanceCSV(context.Background(), 404)
	require.ErrorIs(t, err, ErrClassNotFound)
}
