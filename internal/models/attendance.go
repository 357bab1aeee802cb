package models

import "time"

// AttendanceRecord captures one attendance mark for a student in a class.
// Records are inserted, never edited; the latest mark wins in summaries.
type AttendanceRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	Reason    string    `gorm:"type:text" json:"reason"`
	MarkedBy  uint      `gorm:"not null" json:"marked_by"`
	MarkedAt  time.Time `gorm:"not null" json:"marked_at"`
	Class     Class     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Student   User      `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

const (
	AttendancePresent   = "present"
	AttendanceAbsent    = "absent"
	AttendanceJustified = "justified"
)

// ValidAttendanceStatus reports whether the status is a recognised mark.
func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendancePresent, AttendanceAbsent, AttendanceJustified:
		return true
	default:
		return false
	}
}
