package learning

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"englearn/backend/models"
)

// Performance is the basic metrics projection, derived from quiz records.
type Performance struct {
	TotalQuizzes int     `json:"total_quizzes"`
	AverageScore float64 `json:"average_score"`
	EnglishLevel string  `json:"english_level"`
}

// TopicPerformance summarizes one topic across all quizzes that touched it.
type TopicPerformance struct {
	Percentage float64 `json:"percentage"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
}

// QuizHistoryEntry is one row of the chronological quiz list.
type QuizHistoryEntry struct {
	QuizNumber int       `json:"quiz_number"`
	Score      int       `json:"score"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	Timestamp  time.Time `json:"timestamp"`
}

// DetailedPerformance extends Performance with per-topic and per-level
// breakdowns plus the chronological history.
type DetailedPerformance struct {
	Performance
	TopicPerformance map[string]TopicPerformance `json:"topic_performance"`
	LevelCounts      map[string]int              `json:"level_counts"`
	QuizHistory      []QuizHistoryEntry          `json:"quiz_history"`
}

// Aggregator derives dashboard projections from stored quizzes. The quiz
// records are authoritative: when the cached fields on the user disagree,
// the aggregator corrects the user record as a side effect.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Performance computes the basic metrics from quiz records and reconciles
// the user's cached fields with them.
func (a *Aggregator) Performance(ctx context.Context, userID string) (*Performance, error) {
	var user models.User
	if err := a.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var quizzes []models.Quiz
	if err := a.db.WithContext(ctx).
		Select("score").
		Where("user_id = ?", userID).
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	total := len(quizzes)
	avg := 0.0
	if total > 0 {
		sum := 0
		for _, q := range quizzes {
			sum += q.Score
		}
		avg = float64(sum) / float64(total)
	}

	if err := a.reconcile(ctx, &user, total, avg); err != nil {
		return nil, err
	}

	return &Performance{
		TotalQuizzes: total,
		AverageScore: avg,
		EnglishLevel: user.EnglishLevel,
	}, nil
}

// reconcile writes the derived aggregates back to the user record when the
// cached values have drifted.
func (a *Aggregator) reconcile(ctx context.Context, user *models.User, total int, avg float64) error {
	if user.TotalQuizzes == total && math.Abs(user.AverageScore-avg) < 0.05 {
		return nil
	}
	return a.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"total_quizzes":            total,
			"average_score":            avg,
			"has_completed_first_quiz": total >= 1,
		}).Error
}

// PerformanceDetailed adds the per-topic breakdown (mean of per-quiz topic
// percentages), per-level quiz counts, and the chronological history
// enumerated from 1 in submission order.
func (a *Aggregator) PerformanceDetailed(ctx context.Context, userID string) (*DetailedPerformance, error) {
	basic, err := a.Performance(ctx, userID)
	if err != nil {
		return nil, err
	}

	var quizzes []models.Quiz
	if err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	type topicAcc struct {
		pctSum  float64
		quizzes int
		correct int
		total   int
	}
	accs := make(map[string]*topicAcc)
	levelCounts := make(map[string]int)
	history := make([]QuizHistoryEntry, 0, len(quizzes))

	for i, quiz := range quizzes {
		levelCounts[quiz.Difficulty]++
		history = append(history, QuizHistoryEntry{
			QuizNumber: i + 1,
			Score:      quiz.Score,
			Topic:      quiz.Topic,
			Difficulty: quiz.Difficulty,
			Timestamp:  quiz.Timestamp,
		})

		for topic, stat := range quiz.TopicPerformance {
			if stat.Total == 0 {
				continue
			}
			acc, ok := accs[topic]
			if !ok {
				acc = &topicAcc{}
				accs[topic] = acc
			}
			acc.pctSum += 100 * float64(stat.Correct) / float64(stat.Total)
			acc.quizzes++
			acc.correct += stat.Correct
			acc.total += stat.Total
		}
	}

	topicPerf := make(map[string]TopicPerformance, len(accs))
	for topic, acc := range accs {
		topicPerf[topic] = TopicPerformance{
			Percentage: roundTo(acc.pctSum/float64(acc.quizzes), 1),
			Correct:    acc.correct,
			Total:      acc.total,
		}
	}

	return &DetailedPerformance{
		Performance:      *basic,
		TopicPerformance: topicPerf,
		LevelCounts:      levelCounts,
		QuizHistory:      history,
	}, nil
}

// RecentQuizzes returns the user's most recent quizzes, newest first.
func (a *Aggregator) RecentQuizzes(ctx context.Context, userID string, limit int) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, err
}

// RecentQuestionTexts flattens the question texts of the user's most recent
// quizzes for the generator's avoid-repeat context.
func (a *Aggregator) RecentQuestionTexts(ctx context.Context, userID string, quizLimit int) ([]string, error) {
	quizzes, err := a.RecentQuizzes(ctx, userID, quizLimit)
	if err != nil {
		return nil, err
	}

	var texts []string
	for _, quiz := range quizzes {
		for _, q := range quiz.Questions {
			texts = append(texts, q.QuestionText)
		}
	}
	return texts, nil
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
