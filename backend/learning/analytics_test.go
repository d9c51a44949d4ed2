package learning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"englearn/backend/models"
)

func TestPerformanceMatchesQuizRecords(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db, testConfig())
	agg := NewAggregator(db)
	user := seedUser(t, db, "beginner")

	for _, correct := range []int{6, 8} {
		_, err := engine.SubmitQuiz(context.Background(), user.ID, submission("Grammar", correct, 10))
		require.NoError(t, err)
	}

	perf, err := agg.Performance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, perf.TotalQuizzes)
	assert.InDelta(t, 70.0, perf.AverageScore, 0.001)
	assert.Equal(t, "beginner", perf.EnglishLevel)

	// The cached user fields agree with the derived values.
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, perf.TotalQuizzes, stored.TotalQuizzes)
	assert.InDelta(t, perf.AverageScore, stored.AverageScore, 0.05)
}

func TestPerformanceEmptyHistory(t *testing.T) {
	db := openTestDB(t)
	agg := NewAggregator(db)
	user := seedUser(t, db, "beginner")

	perf, err := agg.Performance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, perf.TotalQuizzes)
	assert.Zero(t, perf.AverageScore)
}

func TestPerformanceUnknownUser(t *testing.T) {
	db := openTestDB(t)
	agg := NewAggregator(db)

	_, err := agg.Performance(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPerformanceCorrectsDriftedUserRecord(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db, testConfig())
	agg := NewAggregator(db)
	user := seedUser(t, db, "beginner")

	_, err := engine.SubmitQuiz(context.Background(), user.ID, submission("Grammar", 8, 10))
	require.NoError(t, err)

	// Corrupt the cached aggregates; the aggregator is authoritative.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"total_quizzes": 7,
		"average_score": 12.0,
	}).Error)

	perf, err := agg.Performance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, perf.TotalQuizzes)
	assert.InDelta(t, 80.0, perf.AverageScore, 0.001)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, 1, stored.TotalQuizzes)
	assert.InDelta(t, 80.0, stored.AverageScore, 0.001)
}

func TestPerformanceDetailed(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db, testConfig())
	agg := NewAggregator(db)
	user := seedUser(t, db, "beginner")

	// Grammar 50%, Grammar 100%, Vocabulary 75%.
	_, err := engine.SubmitQuiz(context.Background(), user.ID, submission("Grammar", 2, 4))
	require.NoError(t, err)
	_, err = engine.SubmitQuiz(context.Background(), user.ID, submission("Grammar", 4, 4))
	require.NoError(t, err)
	_, err = engine.SubmitQuiz(context.Background(), user.ID, submission("Vocabulary", 3, 4))
	require.NoError(t, err)

	detailed, err := agg.PerformanceDetailed(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, detailed.TotalQuizzes)

	grammar := detailed.TopicPerformance["Grammar"]
	assert.InDelta(t, 75.0, grammar.Percentage, 0.001) // mean of 50 and 100
	assert.Equal(t, 6, grammar.Correct)
	assert.Equal(t, 8, grammar.Total)

	vocab := detailed.TopicPerformance["Vocabulary"]
	assert.InDelta(t, 75.0, vocab.Percentage, 0.001)

	// Per-topic progress on the user record uses the same definition.
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.InDelta(t, grammar.Percentage, stored.Progress["Grammar"], 0.05)
	assert.InDelta(t, vocab.Percentage, stored.Progress["Vocabulary"], 0.05)

	assert.Equal(t, map[string]int{"beginner": 3}, detailed.LevelCounts)

	require.Len(t, detailed.QuizHistory, 3)
	for i, entry := range detailed.QuizHistory {
		assert.Equal(t, i+1, entry.QuizNumber)
	}
	assert.Equal(t, "Grammar", detailed.QuizHistory[0].Topic)
	assert.Equal(t, "Vocabulary", detailed.QuizHistory[2].Topic)
	assert.Equal(t, 50, detailed.QuizHistory[0].Score)
	assert.Equal(t, 75, detailed.QuizHistory[2].Score)
}

func TestRecentQuestionTexts(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db, testConfig())
	agg := NewAggregator(db)
	user := seedUser(t, db, "beginner")

	_, err := engine.SubmitQuiz(context.Background(), user.ID, submission("Grammar", 2, 4))
	require.NoError(t, err)

	texts, err := agg.RecentQuestionTexts(context.Background(), user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, texts, 4)
	assert.Contains(t, texts, "question 1?")
}

func TestRecentQuizzesOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	agg := NewAggregator(db)
	user := seedUser(t, db, "beginner")

	now := time.Now().UTC()
	for i := 0; i < 12; i++ {
		seedQuiz(t, db, user, 50+i, now.Add(time.Duration(i)*time.Minute))
	}

	quizzes, err := agg.RecentQuizzes(context.Background(), user.ID, 10)
	require.NoError(t, err)
	require.Len(t, quizzes, 10)
	assert.Equal(t, 61, quizzes[0].Score) // newest first
	assert.Equal(t, 52, quizzes[9].Score)
}
