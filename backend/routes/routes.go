package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"englearn/backend/config"
	"englearn/backend/controllers"
	"englearn/backend/learning"
	"englearn/backend/llm"
	"englearn/backend/middleware"
	"englearn/backend/quizgen"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, client llm.Client, logger *log.Logger) {
	engine := learning.NewEngine(db, cfg)
	aggregator := learning.NewAggregator(db)
	generator := quizgen.NewGenerator(client, quizgen.NewBank(), cfg, logger)

	authController := controllers.NewAuthController(db, cfg)
	quizController := controllers.NewQuizController(db, cfg, generator, engine, aggregator, client)
	chatController := controllers.NewChatController(db, cfg, client)
	performanceController := controllers.NewPerformanceController(db, aggregator)

	authMiddleware := middleware.AuthMiddleware(db, cfg)

	// Auth routes
	app.Post("/api/auth/signup", authController.SignUp)
	app.Post("/api/auth/signin", authController.SignIn)
	app.Post("/api/auth/logout", authController.Logout)
	app.Get("/api/auth/validate", authMiddleware, authController.Validate)
	app.Get("/api/auth/profile", authMiddleware, authController.GetProfile)
	app.Put("/api/auth/profile/username", authMiddleware, authController.UpdateUsername)
	app.Put("/api/auth/profile/password", authMiddleware, authController.ChangePassword)
	app.Delete("/api/auth/profile", authMiddleware, authController.DeleteAccount)

	// Quiz routes
	app.Get("/api/quiz-topics/", authMiddleware, quizController.GetQuizTopics)
	app.Post("/api/generate-adaptive-quiz/", authMiddleware, quizController.GenerateAdaptiveQuiz)
	app.Post("/api/evaluate-quiz/", authMiddleware, quizController.EvaluateQuiz)

	// Performance routes
	app.Get("/api/user-profile/:user_id", authMiddleware, performanceController.GetUserProfile)
	app.Get("/api/user-performance/", authMiddleware, performanceController.GetUserPerformance)
	app.Get("/api/user-performance-detailed/", authMiddleware, performanceController.GetUserPerformanceDetailed)

	// Chat routes
	app.Post("/api/chat/", authMiddleware, chatController.Chat)
	app.Post("/api/teacher-chat/", authMiddleware, chatController.TeacherChat)
	app.Post("/api/ask-question/", authMiddleware, chatController.AskQuestion)

	// Service routes
	app.Get("/api/health-check/", quizController.HealthCheck)
	app.Get("/api/model-info/", authMiddleware, quizController.ModelInfo)
}
