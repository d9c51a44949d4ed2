package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func goodQuestion() GeneratedQuestion {
	return GeneratedQuestion{
		Question:      "Which sentence is correct?",
		Options:       []string{"He go home", "He goes home", "He going home", "He gone home"},
		CorrectAnswer: "He goes home",
		Explanation:   "Third person singular takes -es.",
		Topic:         "Grammar",
		Difficulty:    "beginner",
	}
}

func TestValidateQuizAccepts(t *testing.T) {
	qs := []GeneratedQuestion{goodQuestion(), goodQuestion()}
	qs[1].Question = "Another question?"
	assert.NoError(t, validateQuiz(qs, "beginner", 2))
}

func TestValidateQuizWrongCount(t *testing.T) {
	err := validateQuiz([]GeneratedQuestion{goodQuestion()}, "beginner", 4)
	assert.ErrorContains(t, err, "expected exactly 4 questions")
}

func TestValidateQuizOptionCount(t *testing.T) {
	q := goodQuestion()
	q.Options = q.Options[:3]
	err := validateQuiz([]GeneratedQuestion{q}, "beginner", 1)
	assert.ErrorContains(t, err, "exactly 4 required")
}

func TestValidateQuizDuplicateOptions(t *testing.T) {
	q := goodQuestion()
	q.Options = []string{"same", "same", "other", "more"}
	q.CorrectAnswer = "other"
	err := validateQuiz([]GeneratedQuestion{q}, "beginner", 1)
	assert.ErrorContains(t, err, "duplicate option")
}

func TestValidateQuizAnswerNotInOptions(t *testing.T) {
	q := goodQuestion()
	q.CorrectAnswer = "He will go home"
	err := validateQuiz([]GeneratedQuestion{q}, "beginner", 1)
	assert.ErrorContains(t, err, "not one of the options")
}

func TestValidateQuizEmptyExplanation(t *testing.T) {
	q := goodQuestion()
	q.Explanation = ""
	err := validateQuiz([]GeneratedQuestion{q}, "beginner", 1)
	assert.ErrorContains(t, err, "empty explanation")
}

func TestValidateQuizUnknownTopic(t *testing.T) {
	q := goodQuestion()
	q.Topic = "Astronomy"
	err := validateQuiz([]GeneratedQuestion{q}, "beginner", 1)
	assert.ErrorContains(t, err, "unrecognized topic")
}

func TestValidateQuizDifficultyMismatch(t *testing.T) {
	q := goodQuestion()
	err := validateQuiz([]GeneratedQuestion{q}, "advanced", 1)
	assert.ErrorContains(t, err, "difficulty")
}

func TestValidateQuizReadingNeedsPassage(t *testing.T) {
	q := goodQuestion()
	q.Topic = "Reading"
	err := validateQuiz([]GeneratedQuestion{q}, "beginner", 1)
	assert.ErrorContains(t, err, "without a passage")
}

func TestValidateQuizReadingSharedPassage(t *testing.T) {
	q1 := goodQuestion()
	q1.Topic = "Reading"
	q1.Passage = "A short passage about a town."
	q2 := q1
	q2.Question = "Second question?"
	q2.Passage = "A different passage."

	err := validateQuiz([]GeneratedQuestion{q1, q2}, "beginner", 2)
	assert.ErrorContains(t, err, "share")

	q2.Passage = q1.Passage
	assert.NoError(t, validateQuiz([]GeneratedQuestion{q1, q2}, "beginner", 2))
}

func TestValidateQuizNonReadingMustNotHavePassage(t *testing.T) {
	q := goodQuestion()
	q.Passage = "Stray passage."
	err := validateQuiz([]GeneratedQuestion{q}, "beginner", 1)
	assert.ErrorContains(t, err, "not a Reading question")
}
