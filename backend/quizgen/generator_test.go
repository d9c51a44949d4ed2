package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"englearn/backend/config"
	"englearn/backend/llm"
)

func testConfig() *config.Config {
	return &config.Config{
		DefaultQuizQuestions:     4,
		LevelUpThreshold:         75,
		LevelDownThreshold:       50,
		MinQuizzesForLevelChange: 3,
	}
}

func newTestGenerator(client llm.Client) *Generator {
	logger := log.New(os.Stderr, "", 0)
	return NewGenerator(client, NewBank(), testConfig(), logger)
}

// modelQuiz renders a valid model response with n Grammar questions.
func modelQuiz(n int, level string) string {
	questions := make([]GeneratedQuestion, n)
	for i := range questions {
		questions[i] = GeneratedQuestion{
			Question:      fmt.Sprintf("Generated question %d?", i+1),
			Options:       []string{"alpha", "beta", "gamma", "delta"},
			CorrectAnswer: "beta",
			Explanation:   "Beta is correct here.",
			Topic:         "Grammar",
			Difficulty:    level,
		}
	}
	out, _ := json.Marshal(map[string]interface{}{"questions": questions})
	return string(out)
}

func TestGenerateUsesModelOutput(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{Content: modelQuiz(4, "beginner")})
	gen := newTestGenerator(mock)

	quiz, err := gen.Generate(context.Background(), GenerateInput{Level: "beginner"}, Request{Topic: "Grammar", NumQuestions: 4})
	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 4)
	assert.False(t, quiz.Fallback)
	assert.Equal(t, "mock", quiz.ModelUsed)
	assert.Equal(t, 1, mock.CallCount())
}

func TestGenerateRetriesOnceWithRejectionReason(t *testing.T) {
	// First response has the wrong count; second is valid.
	mock := llm.NewMockClient(
		llm.MockResponse{Content: modelQuiz(2, "beginner")},
		llm.MockResponse{Content: modelQuiz(4, "beginner")},
	)
	gen := newTestGenerator(mock)

	quiz, err := gen.Generate(context.Background(), GenerateInput{Level: "beginner"}, Request{Topic: "Grammar", NumQuestions: 4})
	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 4)
	assert.False(t, quiz.Fallback)
	require.Equal(t, 2, mock.CallCount())

	// The retry prompt carries the prior output and the rejection reason.
	retry := mock.Calls[1].Messages[0].Content
	assert.Contains(t, retry, "rejected")
	assert.Contains(t, retry, "expected exactly 4 questions")
	assert.Contains(t, retry, "Generated question 1?")
}

func TestGenerateFallsBackAfterTwoBadResponses(t *testing.T) {
	mock := llm.NewMockClient(
		llm.MockResponse{Content: "no json here"},
		llm.MockResponse{Content: "still no json"},
	)
	gen := newTestGenerator(mock)

	quiz, err := gen.Generate(context.Background(), GenerateInput{Level: "beginner"}, Request{Topic: "Grammar", NumQuestions: 4})
	require.NoError(t, err)
	assert.True(t, quiz.Fallback)
	assert.Len(t, quiz.Questions, 4)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGenerateFallsBackWhenModelUnavailable(t *testing.T) {
	mock := llm.NewMockClient() // empty queue: every call errors
	gen := newTestGenerator(mock)

	quiz, err := gen.Generate(context.Background(), GenerateInput{Level: "intermediate"}, Request{Topic: "Vocabulary", NumQuestions: 4})
	require.NoError(t, err)
	assert.True(t, quiz.Fallback)
	assert.Len(t, quiz.Questions, 4)
	for _, q := range quiz.Questions {
		assert.Len(t, q.Options, 4)
		assert.Contains(t, q.Options, q.CorrectAnswer)
	}
}

func TestGenerateFallbackAvoidsRecentQuestions(t *testing.T) {
	mock := llm.NewMockClient()
	gen := newTestGenerator(mock)

	avoid := []string{"Which sentence is correct?", "There ____ many books on the table."}
	quiz, err := gen.Generate(context.Background(), GenerateInput{Level: "beginner", Avoid: avoid}, Request{Topic: "Grammar", NumQuestions: 2})
	require.NoError(t, err)
	for _, q := range quiz.Questions {
		assert.NotContains(t, avoid, q.Question)
	}
}

func TestGenerateDefaultsQuestionCount(t *testing.T) {
	mock := llm.NewMockClient()
	gen := newTestGenerator(mock)

	quiz, err := gen.Generate(context.Background(), GenerateInput{Level: "beginner"}, Request{Topic: "Grammar"})
	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 4) // DefaultQuizQuestions
}

func TestGeneratePromptEmbedsLevelTopicAndAvoidList(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{Content: modelQuiz(4, "advanced")})
	gen := newTestGenerator(mock)

	avoid := []string{"An old question about idioms?"}
	_, err := gen.Generate(context.Background(), GenerateInput{Level: "advanced", Avoid: avoid}, Request{Topic: "Vocabulary", NumQuestions: 4})
	require.NoError(t, err)

	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "advanced")
	assert.Contains(t, prompt, "Vocabulary")
	assert.Contains(t, prompt, "An old question about idioms?")
}

func TestGenerateReadingPromptDemandsSharedPassage(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{Err: &llm.ErrUnavailable{}})
	gen := newTestGenerator(mock)

	_, err := gen.Generate(context.Background(), GenerateInput{Level: "beginner"}, Request{Topic: "Reading", NumQuestions: 4})
	require.NoError(t, err)

	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "passage")
}

func TestGenerateReadingFallbackSharesPassage(t *testing.T) {
	mock := llm.NewMockClient()
	gen := newTestGenerator(mock)

	quiz, err := gen.Generate(context.Background(), GenerateInput{Level: "beginner"}, Request{Topic: "Reading", NumQuestions: 4})
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 4)

	passage := quiz.Questions[0].Passage
	assert.Greater(t, len(passage), 50)
	for _, q := range quiz.Questions {
		assert.Equal(t, passage, q.Passage)
	}
}

func TestEffectiveTopicsMixedFavorsWeakAreas(t *testing.T) {
	gen := newTestGenerator(llm.NewMockClient())

	progress := map[string]float64{
		"Grammar":       90,
		"Vocabulary":    85,
		"Reading":       20, // weakest
		"Tenses":        30, // second weakest
		"Pronunciation": 80,
	}
	assignments := gen.effectiveTopics(TopicMixed, progress, 4)
	require.Len(t, assignments, 4)

	counts := map[string]int{}
	for _, tpc := range assignments {
		counts[tpc]++
	}
	assert.Equal(t, 2, counts["Reading"])
	assert.Equal(t, 2, counts["Tenses"])
}

func TestEffectiveTopicsSingleTopic(t *testing.T) {
	gen := newTestGenerator(llm.NewMockClient())

	assignments := gen.effectiveTopics("Grammar", nil, 3)
	assert.Equal(t, []string{"Grammar", "Grammar", "Grammar"}, assignments)
}

func TestRenderTopicMix(t *testing.T) {
	out := renderTopicMix([]string{"Reading", "Reading", "Tenses"})
	assert.True(t, strings.Contains(out, "Reading (2 questions)"))
	assert.True(t, strings.Contains(out, "Tenses (1 question)"))
}
