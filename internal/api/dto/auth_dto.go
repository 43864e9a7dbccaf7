package dto

// AuthRequest is the login payload. The username is the account email.
type AuthRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
