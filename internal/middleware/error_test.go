package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"interview-coach/internal/domain"
	"interview-coach/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{"not found", domain.NewNotFoundError("User not found"), fiber.StatusNotFound, "NOT_FOUND", "User not found"},
		{"invalid state", domain.NewInvalidTransitionError(domain.StateLogin, domain.AnswerSubmitted{}), fiber.StatusConflict, "INVALID_STATE", ""},
		{"duplicate email", domain.NewError(domain.ErrDuplicateEmail, domain.MsgDuplicateEmail, nil), fiber.StatusConflict, "DUPLICATE_EMAIL", domain.MsgDuplicateEmail},
		{"reserved email", domain.NewError(domain.ErrReservedEmail, domain.MsgReservedEmail, nil), fiber.StatusConflict, "RESERVED_EMAIL", domain.MsgReservedEmail},
		{"bad credentials", domain.NewError(domain.ErrInvalidCredentials, domain.MsgBadCredentials, nil), fiber.StatusUnauthorized, "INVALID_CREDENTIALS", domain.MsgBadCredentials},
		{"forbidden", domain.NewForbiddenError("nope"), fiber.StatusForbidden, "FORBIDDEN", "nope"},
		{"unsupported file", domain.NewError(domain.ErrUnsupportedFile, "unsupported file type: .exe", nil), fiber.StatusBadRequest, "UNSUPPORTED_FILE", ""},
		{"model quota", domain.NewLLMServiceError(errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")), fiber.StatusServiceUnavailable, "LLM_SERVICE_ERROR", domain.MsgRateLimited},
		{"persistence", domain.NewPersistenceError(domain.MsgDeleteFailed, errors.New("disk full")), fiber.StatusInternalServerError, "PERSISTENCE_ERROR", domain.MsgDeleteFailed},
		{"wrapped domain error", fmt.Errorf("handler: %w", domain.NewUnauthorizedError("expired")), fiber.StatusUnauthorized, "UNAUTHORIZED", "expired"},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"), fiber.StatusMethodNotAllowed, "HTTP_ERROR", "Method Not Allowed"},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.expectedCode, body.Code)
			assert.Equal(t, tc.expectedStatus, body.Status)
			if tc.expectedMsg != "" {
				assert.Equal(t, tc.expectedMsg, body.Message)
			}
		})
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Post("/", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("email"), domain.NewMissingFieldError("password")}
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "email", body.Errors[0].Field)
}

func TestValidateEmailParam(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	vm := middleware.NewValidationMiddleware()
	app.Delete("/users/:email", vm.ValidateEmailParam(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(middleware.LocalsValidatedEmail).(string))
	})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/users/Bob%40Example.com", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "bob@example.com", string(buf[:n]))

	resp, err = app.Test(httptest.NewRequest("DELETE", "/users/not-an-email", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRequestLogger(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger())
	var seen string
	app.Get("/ok", func(c *fiber.Ctx) error {
		seen = middleware.RequestID(c)
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return domain.NewNotFoundError("gone")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil), -1)
	require.NoError(t, err)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, resp.Header.Get(middleware.RequestIDHeader))

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(middleware.RequestIDHeader, "3f1c2a9e-5d7b-4c1e-9a0f-2b8d6e4c1a77")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "3f1c2a9e-5d7b-4c1e-9a0f-2b8d6e4c1a77", resp.Header.Get(middleware.RequestIDHeader))

	req = httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(middleware.RequestIDHeader, "not-a-uuid")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(middleware.RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
