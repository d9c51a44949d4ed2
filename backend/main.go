package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"englearn/backend/config"
	"englearn/backend/llm"
	"englearn/backend/middleware"
	"englearn/backend/routes"
	"englearn/backend/scheduler"
	"englearn/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// LLM client for quiz generation and chat
	client := llm.NewOpenAIClient(cfg)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, client, logger)

	// Background session sweep
	sweep := scheduler.New(db, logger)
	if err := sweep.Start(); err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}
	defer sweep.Stop()

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
