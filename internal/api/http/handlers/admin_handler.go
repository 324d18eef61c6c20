package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/classroom-kit/student-records/internal/api/dto"
	"github.com/classroom-kit/student-records/internal/auth"
	"github.com/classroom-kit/student-records/internal/service"
	apperrors "github.com/classroom-kit/student-records/pkg/util/errorutil"
)

// AdminHandler exposes the administrator's account management endpoints.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// ListPending GET /admin/users/pending.
func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	users, err := h.auth.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// Approve POST /admin/users/:id/approve.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	approval, err := h.auth.Approve(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.ApprovalResponse{
			User:              dto.NewUserResponse(approval.User),
			NotificationError: dto.ErrorText(approval.NotifyErr),
		},
	})
}

// DeleteUser DELETE /admin/users?email=.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if _, err := h.auth.RemoveUserByEmail(c.UserContext(), c.Query("email"), principal.User.Email); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
