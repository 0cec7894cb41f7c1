package handler

import (
	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/logger"
	"interview-coach/internal/middleware"
	"interview-coach/internal/service"
	"interview-coach/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const resumeFormField = "resume"

type ProfileHandler struct {
	profileService service.ProfileService
	authService    service.AuthService
	validator      *validation.Validator
	maxResumeBytes int64
}

func NewProfileHandler(profileService service.ProfileService, authService service.AuthService, maxResumeBytes int) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
		validator:      validation.NewValidator(),
		maxResumeBytes: int64(maxResumeBytes),
	}
}

// GetProfile godoc
// @Summary My profile
// @Description Returns the signed-in user and their past interviews, most recent first.
// @Tags profile
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	profile, err := h.profileService.GetProfile(c.UserContext(), claims.User())
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfile godoc
// @Summary Update name and email
// @Description Only available from the profile screen. The returned tokens replace the old ones because they carry the identity.
// @Tags profile
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "New identity"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Email taken or not on the profile screen"
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateUpdateProfileRequest(req); len(errs) > 0 {
		return errs
	}

	sessionID := middleware.SessionID(c)
	session, err := h.profileService.UpdateProfile(c.UserContext(), sessionID, req)
	if err != nil {
		return err
	}
	tokens, err := h.authService.IssueTokens(c.UserContext(), sessionID, *session.User)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{TokenResponse: *tokens, Session: dto.NewSessionView(session)})
}

// UploadResume godoc
// @Summary Upload a resume
// @Description Stores the text of a PDF, DOCX, RTF, ODT or TXT resume. Later interviews ask about it.
// @Tags profile
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file true "Resume document"
// @Success 200 {object} dto.ResumeResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing, oversized or unsupported file"
// @Router /profile/resume [post]
func (h *ProfileHandler) UploadResume(c *fiber.Ctx) error {
	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError(resumeFormField)}
	}
	if h.maxResumeBytes > 0 && fh.Size > h.maxResumeBytes {
		return domain.NewInvalidInputError("Resume file is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return domain.NewInternalError("failed to open uploaded resume", err)
	}
	defer f.Close()

	claims := middleware.Claims(c)
	resp, err := h.profileService.UploadResume(c.UserContext(), claims.User(), fh.Filename, f)
	if err != nil {
		logger.Get().Warn("Resume upload rejected", zap.String("email", claims.Email), zap.String("filename", fh.Filename), zap.Error(err))
		return err
	}
	return c.JSON(resp)
}
