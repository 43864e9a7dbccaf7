package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/member-registry/internal/api/dto"
	"github.com/spec-kit/member-registry/internal/domain"
	"github.com/spec-kit/member-registry/internal/service"
	"github.com/spec-kit/member-registry/pkg/util"
)

// MembersHandler exposes the protected member directory.
type MembersHandler struct {
	members      *service.MemberService
	registration *service.MemberRegistrationService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(members *service.MemberService, registration *service.MemberRegistrationService) *MembersHandler {
	return &MembersHandler{members: members, registration: registration}
}

// Create handles POST /api/v1/members.
func (h *MembersHandler) Create(c *fiber.Ctx) error {
	var req dto.MemberCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	member, err := h.registration.Register(c.Context(), req.Name, req.Email, req.PhoneNumber)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.APIResponse{
		Status:  http.StatusCreated,
		Message: "Member created successfully",
		Data:    member,
	})
}

// List handles GET /api/v1/members.
func (h *MembersHandler) List(c *fiber.Ctx) error {
	members, err := h.members.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(dto.APIResponse{
		Status: http.StatusOK,
		Data:   members,
	})
}

// Get handles GET /api/v1/members/:id.
func (h *MembersHandler) Get(c *fiber.Ctx) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}

	member, err := h.members.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(dto.APIResponse{
		Status: http.StatusOK,
		Data:   member,
	})
}

// Delete handles DELETE /api/v1/members/:id.
func (h *MembersHandler) Delete(c *fiber.Ctx) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}

	if err := h.members.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(dto.APIResponse{
		Status:  http.StatusOK,
		Message: "Member successfully deleted with id: " + id,
	})
}

// ChangeStatus handles PATCH /api/v1/members/status/:id.
func (h *MembersHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}

	status := domain.MemberStatus(c.Query("status"))
	if status != domain.MemberStatusActive && status != domain.MemberStatusInactive {
		return util.NewValidationError("Invalid status", nil)
	}

	member, err := h.members.ChangeStatus(c.Context(), id, status)
	if err != nil {
		return err
	}

	return c.JSON(dto.APIResponse{
		Status:  http.StatusOK,
		Message: "Member with id: " + id + " successfully marked " + string(status),
		Data:    member,
	})
}

func memberID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", util.NewValidationError("Invalid Id format", nil)
	}
	return id, nil
}
