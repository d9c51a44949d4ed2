package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"englearn/backend/config"
)

// OpenAIClient implements Client against any OpenAI-compatible chat API.
// The local inference runtime (Ollama and friends) exposes one at
// <base_url>/v1, so a single transport covers every model we run.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	temperature float64
	maxTokens   int
}

// NewOpenAIClient builds a client from the application config.
func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	clientCfg := openai.DefaultConfig("local")
	clientCfg.BaseURL = strings.TrimRight(cfg.LLMBaseURL, "/") + "/v1"

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.LLMModel,
		timeout:     time.Duration(cfg.LLMTimeoutSecs) * time.Second,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
	})
	if err != nil {
		// Context cancellation belongs to the caller; everything else means
		// the endpoint is unreachable or misbehaving.
		if ctx.Err() != nil && ctx.Err() == context.Canceled {
			return "", ctx.Err()
		}
		return "", &ErrUnavailable{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ErrUnavailable{Err: fmt.Errorf("no choices in model response")}
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ModelID() string {
	return c.model
}
