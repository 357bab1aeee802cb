package models

import "time"

// User is an account in the classroom system. Tutors own classes, students
// enroll in them, admins provision other accounts.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	RoleAdmin   = "admin"
	RoleTutor   = "tutor"
	RoleStudent = "student"
)

// ValidRole reports whether the role is one the system recognises.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTutor, RoleStudent:
		return true
	default:
		return false
	}
}
