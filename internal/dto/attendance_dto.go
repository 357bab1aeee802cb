package dto

import (
	"time"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// AttendanceMark is one student's mark inside a bulk attendance post.
type AttendanceMark struct {
	StudentID uint   `json:"student_id" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required,oneof=present absent justified"`
	Reason    string `json:"reason"`
}

// AttendanceMarkRequest records attendance for several students at once.
type AttendanceMarkRequest struct {
	Marks []AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}

// AttendanceResponse is the stored view of one attendance record.
type AttendanceResponse struct {
	ID          uint      `json:"id"`
	ClassID     uint      `json:"class_id"`
	StudentID   uint      `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	MarkedBy    uint      `json:"marked_by"`
	MarkedAt    time.Time `json:"marked_at"`
}

// NewAttendanceResponse maps an attendance record.
func NewAttendanceResponse(record models.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:          record.ID,
		ClassID:     record.ClassID,
		StudentID:   record.StudentID,
		StudentName: record.Student.Name,
		Status:      record.Status,
		Reason:      record.Reason,
		MarkedBy:    record.MarkedBy,
		MarkedAt:    record.MarkedAt,
	}
}

// NewAttendanceResponseSlice maps a list of attendance records.
func NewAttendanceResponseSlice(records []models.AttendanceRecord) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceResponse(record))
	}
	return responses
}

// AttendanceSummaryResponse aggregates one student's marks for one class.
type AttendanceSummaryResponse struct {
	ClassID    uint   `json:"class_id"`
	ClassTitle string `json:"class_title"`
	Presents   int    `json:"presents"`
	Absents    int    `json:"absents"`
	Justified  int    `json:"justified"`
}
