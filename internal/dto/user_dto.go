package dto

// UserCreateRequest provisions a new account. Only admins may create tutors;
// creating admins through the API is not supported.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=tutor student"`
	// ClassID optionally enrolls a freshly created student into a class.
	ClassID *uint `json:"class_id" validate:"omitempty,gt=0"`
}
