package handler

import (
	"errors"

	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/middleware"
	"interview-coach/internal/voice"

	"github.com/gofiber/fiber/v2"
)

// VoiceHandler tracks the client's speech recognition and synthesis so at
// most one of each runs per session.
type VoiceHandler struct {
	hub *voice.Hub
}

func NewVoiceHandler(hub *voice.Hub) *VoiceHandler {
	return &VoiceHandler{hub: hub}
}

func (h *VoiceHandler) status(ch *voice.Channel) dto.VoiceStatus {
	st := dto.VoiceStatus{
		Listening:  ch.Listener.Listening(),
		Transcript: ch.Listener.Transcript(),
	}
	if u := ch.Speaker.Current(); u != nil {
		st.Speaking = true
		st.Utterance = &dto.Utterance{ID: u.ID, Text: u.Text}
	}
	return st
}

// Status godoc
// @Summary Voice status
// @Tags voice
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.VoiceStatus
// @Router /voice [get]
func (h *VoiceHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.status(h.hub.Channel(middleware.SessionID(c))))
}

// StartListening godoc
// @Summary Start speech recognition
// @Description Starting while already listening is a no-op.
// @Tags voice
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.VoiceStatus
// @Router /voice/listen/start [post]
func (h *VoiceHandler) StartListening(c *fiber.Ctx) error {
	ch := h.hub.Channel(middleware.SessionID(c))
	ch.Listener.Start()
	return c.JSON(h.status(ch))
}

// StopListening godoc
// @Summary Stop speech recognition
// @Tags voice
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.VoiceStatus
// @Router /voice/listen/stop [post]
func (h *VoiceHandler) StopListening(c *fiber.Ctx) error {
	ch := h.hub.Channel(middleware.SessionID(c))
	ch.Listener.Stop()
	return c.JSON(h.status(ch))
}

// PushTranscript godoc
// @Summary Report recognised speech
// @Tags voice
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.TranscriptRequest true "Recognised text"
// @Success 200 {object} dto.VoiceStatus
// @Failure 409 {object} middleware.ErrorResponse "Recognition not started"
// @Router /voice/transcript [post]
func (h *VoiceHandler) PushTranscript(c *fiber.Ctx) error {
	var req dto.TranscriptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	ch := h.hub.Channel(middleware.SessionID(c))
	if err := ch.Listener.Push(req.Text, req.Final); err != nil {
		if errors.Is(err, voice.ErrNotListening) {
			return domain.NewError(domain.ErrInvalidState, err.Error(), nil)
		}
		return err
	}
	return c.JSON(h.status(ch))
}

// Speak godoc
// @Summary Queue text to speak
// @Description Replaces any utterance in flight; the replaced one is returned as cancelled.
// @Tags voice
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.SpeakRequest true "Text"
// @Success 200 {object} dto.VoiceStatus
// @Router /voice/speak [post]
func (h *VoiceHandler) Speak(c *fiber.Ctx) error {
	var req dto.SpeakRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if req.Text == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("text")}
	}
	ch := h.hub.Channel(middleware.SessionID(c))
	_, cancelled := ch.Speaker.Speak(req.Text)
	st := h.status(ch)
	if cancelled != nil {
		st.Cancelled = &dto.Utterance{ID: cancelled.ID, Text: cancelled.Text}
	}
	return c.JSON(st)
}

// SpeakDone godoc
// @Summary Report a finished utterance
// @Description Stale IDs are ignored.
// @Tags voice
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.SpeakDoneRequest true "Utterance ID"
// @Success 200 {object} dto.VoiceStatus
// @Router /voice/speak/done [post]
func (h *VoiceHandler) SpeakDone(c *fiber.Ctx) error {
	var req dto.SpeakDoneRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	ch := h.hub.Channel(middleware.SessionID(c))
	ch.Speaker.Done(req.ID)
	return c.JSON(h.status(ch))
}
