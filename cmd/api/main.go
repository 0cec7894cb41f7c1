// @title Interview Coach API
// @version 1.0
// @description Mock interview sessions with model-generated questions, answer feedback and a final report.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "interview-coach/cmd/api/docs"
	"interview-coach/internal/adapter/coach"
	"interview-coach/internal/adapter/resume"
	"interview-coach/internal/config"
	"interview-coach/internal/handler"
	"interview-coach/internal/logger"
	"interview-coach/internal/middleware"
	"interview-coach/internal/service"
	"interview-coach/internal/store"
	"interview-coach/internal/voice"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	stores, err := store.Open(cfg, true)
	if err != nil {
		appLogger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	gen, genCloser, err := coach.NewGenerator(context.Background(), cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create model client", zap.Error(err))
	}
	defer genCloser.Close()
	prompts, err := coach.DefaultPrompts()
	if err != nil {
		appLogger.Fatal("Failed to load prompts", zap.Error(err))
	}
	appLogger.Info("Interview coach initialized", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))
	interviewCoach := service.NewFeedbackCache(coach.NewCoach(gen, prompts, cfg.LLM.Timeout), stores.Cache, cfg.Interview.FeedbackCacheTTL)

	// Services
	controller := service.NewInterviewController(
		interviewCoach,
		service.NewSessionStore(stores.Cache, cfg.Interview.SessionTTL),
		stores.Users,
		stores.Histories,
		service.NewSessionRegistry(),
		cfg.Interview.AnalysisDelay,
	)
	authService, err := service.NewAuthService(stores.Users, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	profileService := service.NewProfileService(stores.Users, stores.Histories, controller, resume.NewExtractor())
	adminService := service.NewAdminService(stores.Users, stores.Histories)
	hub := voice.NewHub()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + middleware.RequestIDHeader,
		MaxAge:       300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app.Group("/api"), authService, handler.Handlers{
		Auth:    handler.NewAuthHandler(authService, controller, hub),
		Session: handler.NewSessionHandler(controller),
		Profile: handler.NewProfileHandler(profileService, authService, cfg.Interview.MaxResumeBytes),
		Admin:   handler.NewAdminHandler(adminService),
		Voice:   handler.NewVoiceHandler(hub),
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
