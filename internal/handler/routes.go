package handler

import (
	"interview-coach/internal/middleware"
	"interview-coach/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth    *AuthHandler
	Session *SessionHandler
	Profile *ProfileHandler
	Admin   *AdminHandler
	Voice   *VoiceHandler
}

// RegisterRoutes mounts the API under api, usually the /api group.
func RegisterRoutes(api fiber.Router, authService service.AuthService, h Handlers) {
	protected := middleware.Protected(authService)
	vm := middleware.NewValidationMiddleware()

	api.Get("/about", GetAbout)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)
	authGroup.Get("/google/login", h.Auth.GoogleLogin)
	authGroup.Get("/google/callback", h.Auth.GoogleCallback)
	authGroup.Post("/logout", protected, h.Auth.Logout)

	sessionGroup := api.Group("/session", protected)
	sessionGroup.Get("/", h.Session.GetSession)
	sessionGroup.Post("/answer", h.Session.SubmitAnswer)
	sessionGroup.Post("/technical/select", h.Session.SelectTopic)
	sessionGroup.Post("/technical/skip", h.Session.SkipTechnical)
	sessionGroup.Post("/coding/accept", h.Session.AcceptCoding)
	sessionGroup.Post("/coding/skip", h.Session.SkipCoding)
	sessionGroup.Post("/coding/submit", h.Session.SubmitSolution)
	sessionGroup.Post("/restart", h.Session.Restart)
	sessionGroup.Post("/profile", h.Session.OpenProfile)
	sessionGroup.Post("/about", h.Session.OpenAbout)
	sessionGroup.Post("/back", h.Session.Back)
	sessionGroup.Post("/home", h.Session.Home)

	profileGroup := api.Group("/profile", protected)
	profileGroup.Get("/", h.Profile.GetProfile)
	profileGroup.Put("/", h.Profile.UpdateProfile)
	profileGroup.Post("/resume", h.Profile.UploadResume)

	adminGroup := api.Group("/admin", protected, middleware.AdminOnly())
	adminGroup.Get("/users", h.Admin.ListUsers)
	adminGroup.Delete("/users/:email", vm.ValidateEmailParam(), h.Admin.DeleteUser)
	adminGroup.Put("/users/:email/password", vm.ValidateEmailParam(), h.Admin.ResetPassword)

	voiceGroup := api.Group("/voice", protected)
	voiceGroup.Get("/", h.Voice.Status)
	voiceGroup.Post("/listen/start", h.Voice.StartListening)
	voiceGroup.Post("/listen/stop", h.Voice.StopListening)
	voiceGroup.Post("/transcript", h.Voice.PushTranscript)
	voiceGroup.Post("/speak", h.Voice.Speak)
	voiceGroup.Post("/speak/done", h.Voice.SpeakDone)
}
