package dto

type SignupDTO struct {
	FullName   string `json:"fullName" validate:"required"`
	Email      string `json:"email" validate:"required,email,ddu_email"`
	Password   string `json:"password" validate:"required,min=6"`
	Department string `json:"department" validate:"required,department"`
	Role       string `json:"role" validate:"omitempty,role"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}
