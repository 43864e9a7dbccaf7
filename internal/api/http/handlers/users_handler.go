package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-registry/internal/api/dto"
	"github.com/spec-kit/member-registry/internal/service"
	"github.com/spec-kit/member-registry/pkg/util"
)

// UsersHandler exposes account self-service endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserSignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if _, err := h.auth.RegisterUser(c.Context(), req.Email, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.APIResponse{
		Status:  http.StatusCreated,
		Message: "User successfully created",
	})
}

// UpdatePassword handles PUT /users/update-password.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.UserPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.auth.UpdatePassword(c.Context(), req.Email, req.ExistingPassword, req.Password); err != nil {
		return err
	}

	return c.JSON(dto.APIResponse{
		Status:  http.StatusOK,
		Message: "Password successfully updated",
	})
}
