package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"englearn/backend/config"
	"englearn/backend/llm"
	"englearn/backend/middleware"
	"englearn/backend/models"
	"englearn/backend/utils"
)

const tutorSystemPrompt = "You are a friendly, patient English teacher. Keep paragraphs to 2-3 sentences. Give practical examples. Adapt your vocabulary to the learner's level."

// apologyReply is the degraded response when the model is unreachable. Chat
// never fails with an HTTP error over an AI outage.
const apologyReply = "Sorry, I'm having trouble responding right now. Please try again in a moment."

type ChatController struct {
	DB  *gorm.DB
	Cfg *config.Config
	LLM llm.Client
}

func NewChatController(db *gorm.DB, cfg *config.Config, client llm.Client) *ChatController {
	return &ChatController{DB: db, Cfg: cfg, LLM: client}
}

// Chat forwards the conversation to the model under the tutor system
// prompt. The client owns the history; nothing here is read back.
func (cc *ChatController) Chat(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	type ChatInput struct {
		Conversation []string `json:"conversation"`
	}

	var input ChatInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if len(input.Conversation) == 0 {
		return utils.BadRequest(c, "Conversation is empty")
	}

	// The conversation alternates user/assistant and ends with the user.
	messages := make([]llm.Message, 0, len(input.Conversation))
	for i, msg := range input.Conversation {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg})
	}
	if messages[len(messages)-1].Role != llm.RoleUser {
		return utils.BadRequest(c, "Conversation must end with a user message")
	}

	reply, err := cc.LLM.Complete(c.UserContext(), tutorSystemPrompt, messages)
	if err != nil {
		reply = apologyReply
	}

	cc.logExchange(principal.UserID, input.Conversation[len(input.Conversation)-1], reply)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"reply": reply})
}

// TeacherChat is single-turn chat with an explicit teacher mode: the system
// instruction is extended with the learner's level and focus area.
func (cc *ChatController) TeacherChat(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	type TeacherChatInput struct {
		Message   string `json:"message"`
		UserLevel string `json:"user_level"`
		Focus     string `json:"focus"`
	}

	var input TeacherChatInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Message == "" {
		return utils.BadRequest(c, "Message is empty")
	}

	level := input.UserLevel
	if !config.ValidLevel(level) {
		level = principal.EnglishLevel
	}

	system := tutorSystemPrompt + fmt.Sprintf(" The learner is at %s level.", level)
	if input.Focus != "" {
		system += fmt.Sprintf(" Focus this lesson on %s.", input.Focus)
	}

	reply, err := cc.LLM.Complete(c.UserContext(), system, []llm.Message{
		{Role: llm.RoleUser, Content: input.Message},
	})
	if err != nil {
		reply = apologyReply
	}

	cc.logExchange(principal.UserID, input.Message, reply)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"reply": reply})
}

// AskQuestion answers a question grounded in the provided context and
// appends the exchange to the Q&A history.
func (cc *ChatController) AskQuestion(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	type QuestionInput struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Question == "" {
		return utils.BadRequest(c, "Question is empty")
	}

	prompt := fmt.Sprintf("Answer the question using only the given context. Be brief.\n\nContext: %s\n\nQuestion: %s", input.Context, input.Question)
	answer, err := cc.LLM.Complete(c.UserContext(), "You answer questions about English text, concisely and accurately.", []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		answer = apologyReply
	}

	entry := models.QAEntry{
		ID:        uuid.NewString(),
		UserID:    principal.UserID,
		Question:  input.Question,
		Context:   input.Context,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	}
	cc.DB.Create(&entry)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"question": input.Question,
		"answer":   answer,
	})
}

// logExchange appends the user message and the reply to the transcript log.
// Best-effort: a failed write never fails the chat.
func (cc *ChatController) logExchange(userID, userMsg, reply string) {
	now := time.Now().UTC()
	cc.DB.Create(&models.ChatLog{
		ID: uuid.NewString(), UserID: userID, Role: "user", Content: userMsg, Timestamp: now,
	})
	cc.DB.Create(&models.ChatLog{
		ID: uuid.NewString(), UserID: userID, Role: "assistant", Content: reply, Timestamp: now,
	})
}
