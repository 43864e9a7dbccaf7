package dto

// UserSignUpRequest payload for new login accounts.
type UserSignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserPasswordRequest payload for password updates.
type UserPasswordRequest struct {
	Email            string `json:"email" validate:"required,email"`
	ExistingPassword string `json:"existing_password" validate:"required"`
	Password         string `json:"password" validate:"required,min=8,password"`
	ConfirmPassword  string `json:"confirm_password" validate:"required,eqfield=Password"`
}
