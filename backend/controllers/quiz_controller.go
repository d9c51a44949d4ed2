package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"englearn/backend/config"
	"englearn/backend/learning"
	"englearn/backend/llm"
	"englearn/backend/middleware"
	"englearn/backend/models"
	"englearn/backend/quizgen"
	"englearn/backend/utils"
)

const avoidQuizWindow = 10

type QuizController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Generator  *quizgen.Generator
	Engine     *learning.Engine
	Aggregator *learning.Aggregator
	LLM        llm.Client
}

func NewQuizController(db *gorm.DB, cfg *config.Config, gen *quizgen.Generator, engine *learning.Engine, agg *learning.Aggregator, client llm.Client) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Generator: gen, Engine: engine, Aggregator: agg, LLM: client}
}

// GetQuizTopics returns the fixed topic catalog.
func (qc *QuizController) GetQuizTopics(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"topics": quizgen.Catalog(),
	})
}

// [+] GenerateAdaptiveQuiz godoc
// @Summary Generate an adaptive quiz
// @Description Generates a quiz at the user's level, falling back to the static bank when the model path fails
// @Tags quiz
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /generate-adaptive-quiz/ [post]
func (qc *QuizController) GenerateAdaptiveQuiz(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req quizgen.Request
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if req.Topic == "" {
		req.Topic = quizgen.TopicMixed
	}
	if req.Topic != quizgen.TopicMixed && !quizgen.RecognizedTopic(req.Topic) {
		return utils.BadRequest(c, "Unknown topic")
	}
	if req.NumQuestions < 0 || req.NumQuestions > 10 {
		return utils.BadRequest(c, "num_questions must be between 1 and 10")
	}

	var user models.User
	if err := qc.DB.First(&user, "id = ?", principal.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	avoid, err := qc.Aggregator.RecentQuestionTexts(c.UserContext(), principal.UserID, avoidQuizWindow)
	if err != nil {
		return utils.StoreUnavailable(c, "Could not read quiz history")
	}

	quiz, err := qc.Generator.Generate(c.UserContext(), quizgen.GenerateInput{
		Level:    user.EnglishLevel,
		Progress: user.Progress,
		Avoid:    avoid,
	}, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return utils.InternalServerError(c, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, quiz)
}

// [+] EvaluateQuiz godoc
// @Summary Submit a completed quiz
// @Description Scores the submission server-side and applies it to the user's progression state
// @Tags quiz
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /evaluate-quiz/ [post]
func (qc *QuizController) EvaluateQuiz(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	type EvaluateInput struct {
		QuizData struct {
			Questions []learning.SubmittedQuestion `json:"questions"`
		} `json:"quiz_data"`
		// Score is accepted for compatibility and ignored: the server
		// recomputes it from the questions.
		Score      int    `json:"score"`
		Topic      string `json:"topic"`
		Difficulty string `json:"difficulty"`
		QuizType   string `json:"quiz_type"`
	}

	var input EvaluateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	eval, err := qc.Engine.SubmitQuiz(c.UserContext(), principal.UserID, learning.Submission{
		Questions:  input.QuizData.Questions,
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		QuizType:   input.QuizType,
	})
	if err != nil {
		if errors.Is(err, learning.ErrInvalidQuizStructure) {
			return utils.BadRequest(c, err.Error())
		}
		if errors.Is(err, learning.ErrUserNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.StoreUnavailable(c, "Could not save quiz results")
	}

	return utils.Success(c, fiber.StatusOK, eval)
}

// ModelInfo reports the current inference configuration.
func (qc *QuizController) ModelInfo(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"current_model":    qc.Cfg.LLMModel,
		"base_url":         qc.Cfg.LLMBaseURL,
		"timeout":          qc.Cfg.LLMTimeoutSecs,
		"temperature":      qc.Cfg.LLMTemperature,
		"max_tokens":       qc.Cfg.LLMMaxTokens,
		"available_models": config.AvailableModels,
	})
}

// HealthCheck pings the model with a tiny prompt. The endpoint itself
// always answers 200; the status field reports the model's health.
func (qc *QuizController) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	_, err := qc.LLM.Complete(ctx, "", []llm.Message{{Role: llm.RoleUser, Content: "Test"}})
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "unhealthy",
			"message": "Model is not responding",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"message": "Model is running and available",
	})
}
