package models

import "time"

type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email" validate:"required,email"`
	Name                  string     `json:"name,omitempty"`
	PasswordHash          string     `json:"-"`
	EmailVerified         *time.Time `json:"email_verified,omitempty"`
	BirthDate             *time.Time `json:"birth_date,omitempty"`
	OnboardingCompletedAt *time.Time `json:"onboarding_completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// IsOnboardingComplete reports whether the user finished onboarding and
// therefore has the birth data readings are computed from.
func (u *User) IsOnboardingComplete() bool {
	return u.OnboardingCompletedAt != nil && u.BirthDate != nil
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128,password_strength"`
	Name     string `json:"name" validate:"required,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,max=512"`
	Password string `json:"password" validate:"required,min=8,max=128,password_strength"`
}

type ResetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type OnboardingRequest struct {
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name,omitempty" validate:"omitempty,max=120"`
}
