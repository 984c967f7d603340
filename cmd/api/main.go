package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/autopulse/backend/internal/config"
	"github.com/autopulse/backend/internal/database"
	"github.com/autopulse/backend/internal/handler"
	"github.com/autopulse/backend/internal/llm"
	"github.com/autopulse/backend/internal/mailer"
	"github.com/autopulse/backend/internal/repository"
	"github.com/autopulse/backend/internal/service"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize repositories
	feedbackRepo := repository.NewFeedbackRepository(db)
	issueRepo := repository.NewIssueRepository(db)

	// Email transport: real SMTP or log-only dry run, from config
	mail, err := mailer.New(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	if cfg.Email.Enabled {
		log.Println("Email mode: SMTP")
	} else {
		log.Println("Email mode: dry run (emails printed to log)")
	}

	// Composer strategy: AI-with-fallback when an API key is present,
	// otherwise template-only
	var composer service.Composer
	aiClient := llm.NewClient(cfg.AI)
	if aiClient.Enabled() {
		composer = service.NewAIComposer(aiClient, cfg.AI.Timeout)
		log.Println("Notification composer: AI with template fallback")
	} else {
		composer = service.NewTemplateComposer()
		log.Println("Notification composer: templates")
	}

	// Live dashboard hub
	hub := handler.NewHub()
	go hub.Run()

	// Services and handlers
	feedbackSvc := service.NewFeedbackService(issueRepo, mail, composer, cfg.Email, hub)
	feedbackHandler := handler.NewFeedbackHandler(feedbackRepo, issueRepo, feedbackSvc, hub)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.Origins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// API routes
	api := app.Group("/api")
	api.Get("/health", feedbackHandler.Health)
	api.Post("/feedback", feedbackHandler.SubmitFeedback)
	api.Get("/feedback", feedbackHandler.ListFeedback)
	api.Get("/feedback/export", feedbackHandler.ExportFeedback)
	api.Get("/issues", feedbackHandler.ListIssues)
	api.Get("/stats", feedbackHandler.GetStats)

	// Live dashboard feed
	app.Use("/ws", hub.UpgradeRequired)
	app.Get("/ws/activity", websocket.New(hub.Handle))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.App.Port
	if port == "" {
		port = "5000"
	}
	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
