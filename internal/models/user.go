package models

import "gorm.io/gorm"

// User represents an account in the user directory. UserID is the public
// identity everything else keys on; the numeric primary key never leaves
// the database layer.
type User struct {
	gorm.Model       `json:"-"`
	UserID           string `json:"user_id" gorm:"uniqueIndex;size:64"`
	Password         string `json:"-"` // bcrypt hash, never serialized
	Email            string `json:"email" gorm:"uniqueIndex"`
	AboutMe          string `json:"about_me,omitempty"`
	Country          string `json:"country,omitempty"`
	ProfileImageID   string `json:"-"`
	ProfileImageName string `json:"profile_image_name,omitempty"`
}

// SignUpRequest defines the request body for creating an account
type SignUpRequest struct {
	UserID   string `json:"user_id" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required,email"`
	Country  string `json:"country,omitempty" validate:"omitempty,max=50"`
}

// LoginRequest defines the request body for logging in
type LoginRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordUpdateRequest defines the request body for changing the password
type PasswordUpdateRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ProfileUpdateRequest carries the non-file fields of a profile update
type ProfileUpdateRequest struct {
	AboutMe string `json:"about_me,omitempty" form:"aboutMe" validate:"omitempty,max=500"`
	Country string `json:"country,omitempty" form:"country" validate:"omitempty,max=50"`
}
