package handler

import (
	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/middleware"
	"interview-coach/internal/service"
	"interview-coach/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler exposes the interview flow. Every action is one event for
// the session named by the access token, and every response is the
// resulting view.
type SessionHandler struct {
	controller service.InterviewController
	validator  *validation.Validator
}

func NewSessionHandler(controller service.InterviewController) *SessionHandler {
	return &SessionHandler{controller: controller, validator: validation.NewValidator()}
}

func (h *SessionHandler) dispatch(c *fiber.Ctx, ev domain.Event) error {
	s, err := h.controller.Dispatch(c.UserContext(), middleware.SessionID(c), ev)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionView(s))
}

// GetSession godoc
// @Summary Current session
// @Description Returns the session, resuming a saved interview when this server has no live copy.
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Router /session [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.controller.Load(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionView(s))
}

// SubmitAnswer godoc
// @Summary Answer the current question
// @Tags session
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.AnswerRequest true "Answer"
// @Success 200 {object} dto.SessionView
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "No question is being asked"
// @Router /session/answer [post]
func (h *SessionHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateAnswer(req.Answer); len(errs) > 0 {
		return errs
	}
	return h.dispatch(c, domain.AnswerSubmitted{Answer: req.Answer})
}

// SelectTopic godoc
// @Summary Choose a technical round topic
// @Tags session
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.TopicRequest true "Topic"
// @Success 200 {object} dto.SessionView
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/technical/select [post]
func (h *SessionHandler) SelectTopic(c *fiber.Ctx) error {
	var req dto.TopicRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateTopic(req.Topic); len(errs) > 0 {
		return errs
	}
	return h.dispatch(c, domain.TopicSelected{Topic: req.Topic})
}

// SkipTechnical godoc
// @Summary Skip the technical round
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/technical/skip [post]
func (h *SessionHandler) SkipTechnical(c *fiber.Ctx) error {
	return h.dispatch(c, domain.TechnicalSkipped{})
}

// AcceptCoding godoc
// @Summary Take the coding challenge
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/coding/accept [post]
func (h *SessionHandler) AcceptCoding(c *fiber.Ctx) error {
	return h.dispatch(c, domain.CodingAccepted{})
}

// SkipCoding godoc
// @Summary Skip the coding challenge and analyse
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/coding/skip [post]
func (h *SessionHandler) SkipCoding(c *fiber.Ctx) error {
	return h.dispatch(c, domain.CodingSkipped{})
}

// SubmitSolution godoc
// @Summary Submit the coding solution and analyse
// @Tags session
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.SolutionRequest true "Solution"
// @Success 200 {object} dto.SessionView
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/coding/submit [post]
func (h *SessionHandler) SubmitSolution(c *fiber.Ctx) error {
	var req dto.SolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateSolution(req.Solution); len(errs) > 0 {
		return errs
	}
	return h.dispatch(c, domain.SolutionSubmitted{Solution: req.Solution})
}

// Restart godoc
// @Summary Start a new interview from the report
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/restart [post]
func (h *SessionHandler) Restart(c *fiber.Ctx) error {
	return h.dispatch(c, domain.RestartRequested{})
}

// OpenProfile godoc
// @Summary Switch to the profile screen
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Router /session/profile [post]
func (h *SessionHandler) OpenProfile(c *fiber.Ctx) error {
	return h.dispatch(c, domain.ProfileOpened{})
}

// OpenAbout godoc
// @Summary Switch to the about screen
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Router /session/about [post]
func (h *SessionHandler) OpenAbout(c *fiber.Ctx) error {
	return h.dispatch(c, domain.AboutOpened{})
}

// Back godoc
// @Summary Return from profile or about
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Router /session/back [post]
func (h *SessionHandler) Back(c *fiber.Ctx) error {
	return h.dispatch(c, domain.BackRequested{})
}

// Home godoc
// @Summary Return to the interview or the admin panel
// @Tags session
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SessionView
// @Router /session/home [post]
func (h *SessionHandler) Home(c *fiber.Ctx) error {
	return h.dispatch(c, domain.HomeRequested{})
}
