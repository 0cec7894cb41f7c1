package handler

import (
	"interview-coach/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// GetAbout godoc
// @Summary About the application
// @Tags about
// @Produce json
// @Success 200 {object} dto.AboutResponse
// @Router /about [get]
func GetAbout(c *fiber.Ctx) error {
	return c.JSON(dto.About)
}
