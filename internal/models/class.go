package models

import "time"

// Class groups students under one tutor. Quizzes and attendance hang off it.
type Class struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TutorID     uint      `gorm:"not null;index" json:"tutor_id"`
	CreatedAt   time.Time `json:"created_at"`
	Tutor       User      `gorm:"foreignKey:TutorID;constraint:OnDelete:CASCADE" json:"tutor"`
}

// Enrollment links a student to a class. A student enrolls at most once per class.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClassID    uint      `gorm:"not null;uniqueIndex:idx_enrollment_class_user" json:"class_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_class_user" json:"user_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Class      Class     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
