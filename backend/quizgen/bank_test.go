package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankCoversEveryTopicAndLevel(t *testing.T) {
	bank := NewBank()
	for _, topic := range Topics {
		for _, level := range allLevels {
			qs := bank.Select(topic, level, 4, nil)
			assert.Len(t, qs, 4, "bank short for %s/%s", topic, level)
		}
	}
}

func TestBankQuestionsAreWellFormed(t *testing.T) {
	for _, q := range seededQuestions() {
		require.Len(t, q.Options, 4, "question %q", q.Question)
		assert.Contains(t, q.Options, q.CorrectAnswer, "question %q", q.Question)
		assert.NotEmpty(t, q.Explanation, "question %q", q.Question)
		assert.True(t, RecognizedTopic(q.Topic), "question %q has topic %q", q.Question, q.Topic)
		if q.Topic == "Reading" {
			assert.Greater(t, len(q.Passage), 50, "question %q", q.Question)
		} else {
			assert.Empty(t, q.Passage, "question %q", q.Question)
		}
	}
}

func TestBankSelectDedupesAgainstAvoidList(t *testing.T) {
	bank := NewBank()

	avoid := map[string]bool{
		"Which sentence is correct?":       true,
		"What is the past tense of 'go'?":  true,
	}
	qs := bank.Select("Grammar", "beginner", 3, avoid)
	require.Len(t, qs, 3)
	for _, q := range qs {
		assert.False(t, avoid[q.Question], "avoided question %q returned", q.Question)
	}
}

func TestBankSelectPadsFromAdjacentLevels(t *testing.T) {
	bank := NewBank()

	// More questions than one (topic, level) cell holds: padding kicks in.
	qs := bank.Select("Vocabulary", "intermediate", 8, nil)
	require.Len(t, qs, 8)

	levels := map[string]bool{}
	for _, q := range qs {
		levels[q.Difficulty] = true
	}
	assert.True(t, levels["intermediate"])
	assert.True(t, len(levels) > 1, "expected adjacent-level padding")
}

func TestBankSelectRelaxesAvoidListWhenExhausted(t *testing.T) {
	bank := NewBank()

	// Avoid everything; the bank must still serve a quiz.
	avoid := map[string]bool{}
	for _, q := range seededQuestions() {
		avoid[q.Question] = true
	}
	qs := bank.Select("Tenses", "beginner", 4, avoid)
	assert.Len(t, qs, 4)
}

func TestBankSelectMixedDrawsAcrossTopics(t *testing.T) {
	bank := NewBank()

	qs := bank.Select(TopicMixed, "beginner", 10, nil)
	require.Len(t, qs, 10)

	topics := map[string]bool{}
	for _, q := range qs {
		topics[q.Topic] = true
	}
	assert.GreaterOrEqual(t, len(topics), 2)
}

func TestBankSelectNeverRepeats(t *testing.T) {
	bank := NewBank()

	qs := bank.Select("Pronunciation", "advanced", 10, nil)
	seen := map[string]bool{}
	for _, q := range qs {
		assert.False(t, seen[q.Question], "question %q repeated", q.Question)
		seen[q.Question] = true
	}
}
