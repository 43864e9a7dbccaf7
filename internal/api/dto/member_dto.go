package dto

// MemberCreateRequest payload for directory registration.
type MemberCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=25,excludesall=0123456789"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=12,numeric"`
}

// APIResponse is the structured success envelope for member and user routes.
type APIResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
