package handler

import (
	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/middleware"
	"interview-coach/internal/service"
	"interview-coach/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	adminService service.AdminService
	validator    *validation.Validator
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService, validator: validation.NewValidator()}
}

// ListUsers godoc
// @Summary List users
// @Description Every registered user with the score of their latest interview.
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.AdminUserView
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Removes the user's interview history, then the account.
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/users/{email} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	email := c.Locals(middleware.LocalsValidatedEmail).(string)
	if err := h.adminService.DeleteUser(c.UserContext(), email); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User " + email + " deleted."})
}

// ResetPassword godoc
// @Summary Reset a user's password
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param email path string true "User email"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/users/{email}/password [put]
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	email := c.Locals(middleware.LocalsValidatedEmail).(string)
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidatePassword("password", req.Password); len(errs) > 0 {
		return errs
	}
	if err := h.adminService.ResetPassword(c.UserContext(), email, req.Password); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated."})
}
