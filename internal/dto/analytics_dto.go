package dto

import "time"

// QuizStatsResponse aggregates submission data for one quiz.
type QuizStatsResponse struct {
	QuizID          uint    `json:"quiz_id"`
	Title           string  `json:"title"`
	AverageScore    float64 `json:"average_score"`
	SubmissionCount int64   `json:"submission_count"`
	// CompletionRate is distinct submitters over enrolled students, as a
	// percentage rounded to one decimal.
	CompletionRate float64 `json:"completion_rate"`
}

// ClassOverviewResponse is the tutor dashboard block for one class.
type ClassOverviewResponse struct {
	Class       ClassResponse        `json:"class"`
	Students    []UserResponse       `json:"students"`
	Quizzes     []QuizStatsResponse  `json:"quizzes"`
	Attendance  []AttendanceResponse `json:"attendance"`
	GeneratedAt time.Time            `json:"generated_at"`
	CacheHit    bool                 `json:"cache_hit,omitempty"`
}

// StudentQuizOverview lists a quiz from the student's perspective with the
// score of their latest attempt, if any.
type StudentQuizOverview struct {
	QuizID      uint     `json:"quiz_id"`
	ClassID     uint     `json:"class_id"`
	ClassTitle  string   `json:"class_title"`
	Title       string   `json:"title"`
	LatestScore *float64 `json:"latest_score"`
	Attempts    int      `json:"attempts"`
}

// StudentDashboardResponse is everything a student's landing view needs.
type StudentDashboardResponse struct {
	Classes    []ClassResponse             `json:"classes"`
	Quizzes    []StudentQuizOverview       `json:"quizzes"`
	Attendance []AttendanceSummaryResponse `json:"attendance"`
}
