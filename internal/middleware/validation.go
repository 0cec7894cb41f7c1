package middleware

import (
	"net/url"

	"interview-coach/internal/domain"
	"interview-coach/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// LocalsValidatedEmail holds the decoded :email path parameter.
const LocalsValidatedEmail = "validated_email"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateEmailParam validates the :email path parameter used by the admin
// routes and stores the decoded, normalised address in locals.
func (vm *ValidationMiddleware) ValidateEmailParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Params("email")
		email, err := url.PathUnescape(raw)
		if err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("email", raw)}
		}
		if errors := vm.validator.ValidateEmail("email", email); len(errors) > 0 {
			return errors // handled by ErrorHandler
		}
		c.Locals(LocalsValidatedEmail, domain.NormalizeEmail(email))
		return c.Next()
	}
}
