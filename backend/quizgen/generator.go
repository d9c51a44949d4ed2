package quizgen

import (
	"context"
	"errors"
	"log"
	"sort"

	"englearn/backend/config"
	"englearn/backend/llm"
)

// ErrBankEmpty is returned only when the model path failed and the static
// bank has nothing for the requested level. That is a configuration bug,
// not a runtime condition.
var ErrBankEmpty = errors.New("AI unavailable and fallback bank is empty for this level")

// GenerateInput is the user snapshot the orchestrator works from. Generation
// performs no writes and needs no user lock.
type GenerateInput struct {
	Level    string
	Progress map[string]float64
	// Avoid holds the question texts from the user's recent quizzes.
	Avoid []string
}

// Generator orchestrates quiz generation: prompt, model call, defensive
// parse, validation, one tightened retry, then the static bank.
type Generator struct {
	client llm.Client
	bank   *Bank
	cfg    *config.Config
	logger *log.Logger
}

func NewGenerator(client llm.Client, bank *Bank, cfg *config.Config, logger *log.Logger) *Generator {
	return &Generator{client: client, bank: bank, cfg: cfg, logger: logger}
}

// Generate produces a quiz for the request. A model response that fails
// parsing or validation gets one tightened retry; a transport error or a
// second rejection hands over to the bank, so the caller always receives a
// quiz unless the bank itself is empty.
func (g *Generator) Generate(ctx context.Context, input GenerateInput, req Request) (*Quiz, error) {
	numQuestions := req.NumQuestions
	if numQuestions == 0 {
		numQuestions = g.cfg.DefaultQuizQuestions
	}
	if numQuestions < 1 {
		numQuestions = 1
	}
	if numQuestions > 10 {
		numQuestions = 10
	}

	topics := g.effectiveTopics(req.Topic, input.Progress, numQuestions)
	userMsg := buildUserMessage(input.Level, topics, numQuestions, input.Avoid)

	questions, err := g.tryModel(ctx, input.Level, userMsg, numQuestions)
	if err == nil {
		return &Quiz{
			Questions:         questions,
			GeneratedForLevel: input.Level,
			ModelUsed:         g.client.ModelID(),
		}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	g.logger.Printf("quiz generation falling back to static bank: %v", err)

	return g.fallback(req.Topic, input.Level, numQuestions, input.Avoid)
}

// tryModel runs the model path: one attempt, then, if that response was
// rejected, one retry with a tightened prompt carrying the prior output and
// rejection reason. A transport error is returned at once.
func (g *Generator) tryModel(ctx context.Context, level, userMsg string, numQuestions int) ([]GeneratedQuestion, error) {
	text, err := g.client.Complete(ctx, systemPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: userMsg},
	})
	if err != nil {
		return nil, err
	}

	questions, verr := g.parseAndValidate(text, level, numQuestions)
	if verr == nil {
		return questions, nil
	}

	retryMsg := buildRetryMessage(userMsg, text, verr.Error())
	text, err = g.client.Complete(ctx, systemPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: retryMsg},
	})
	if err != nil {
		return nil, err
	}

	return g.parseAndValidate(text, level, numQuestions)
}

func (g *Generator) parseAndValidate(text, level string, numQuestions int) ([]GeneratedQuestion, error) {
	questions, err := parseQuizResponse(text)
	if err != nil {
		return nil, err
	}
	if err := validateQuiz(questions, level, numQuestions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (g *Generator) fallback(topic, level string, numQuestions int, avoid []string) (*Quiz, error) {
	avoidSet := make(map[string]bool, len(avoid))
	for _, q := range avoid {
		avoidSet[q] = true
	}

	questions := g.bank.Select(topic, level, numQuestions, avoidSet)
	if len(questions) == 0 {
		return nil, ErrBankEmpty
	}

	return &Quiz{
		Questions:         questions,
		GeneratedForLevel: level,
		Fallback:          true,
	}, nil
}

// effectiveTopics resolves the requested topic into one assignment per
// question. Mixed runs a weighted round-robin across all topics, with the
// user's two weakest topics drawn twice per cycle.
func (g *Generator) effectiveTopics(topic string, progress map[string]float64, numQuestions int) []string {
	if topic != TopicMixed {
		assignments := make([]string, numQuestions)
		for i := range assignments {
			assignments[i] = topic
		}
		return assignments
	}

	ordered := topicsByWeakness(progress)

	// Weighted rotation: the two weakest topics appear twice per cycle.
	var rotation []string
	for i, t := range ordered {
		rotation = append(rotation, t)
		if i < 2 {
			rotation = append(rotation, t)
		}
	}

	assignments := make([]string, numQuestions)
	for i := range assignments {
		assignments[i] = rotation[i%len(rotation)]
	}
	return assignments
}

// topicsByWeakness orders the recognized topics by ascending progress.
// Topics the user has never practiced sort first.
func topicsByWeakness(progress map[string]float64) []string {
	ordered := make([]string, len(Topics))
	copy(ordered, Topics)

	score := func(t string) float64 {
		if v, ok := progress[t]; ok {
			return v
		}
		return -1
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return score(ordered[i]) < score(ordered[j])
	})
	return ordered
}
