package dto

import (
	"time"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// ClassCreateRequest creates a class owned by the calling tutor.
type ClassCreateRequest struct {
	Title       string `json:"title" validate:"required,min=2"`
	Description string `json:"description"`
}

// EnrollRequest enrolls one student into a class.
type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
}

// ClassResponse is the public view of a class.
type ClassResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TutorID     uint      `json:"tutor_id"`
	TutorName   string    `json:"tutor_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewClassResponse maps a class model to its response form.
func NewClassResponse(class models.Class) ClassResponse {
	return ClassResponse{
		ID:          class.ID,
		Title:       class.Title,
		Description: class.Description,
		TutorID:     class.TutorID,
		TutorName:   class.Tutor.Name,
		CreatedAt:   class.CreatedAt,
	}
}

// NewClassResponseSlice maps a list of classes.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}
	return responses
}
