package learning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"englearn/backend/config"
	"englearn/backend/models"
)

var (
	// ErrUserNotFound is returned when the submitting user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidQuizStructure rejects malformed submissions before any
	// state is touched.
	ErrInvalidQuizStructure = errors.New("invalid quiz structure")

	errVersionConflict = errors.New("user version conflict")
)

const (
	LevelChangeProgression  = "progression"
	LevelChangeRetrocession = "retrocession"
)

// SubmittedQuestion is one answered item in a quiz submission. The server
// recomputes correctness; a client-supplied is_correct is ignored.
type SubmittedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    string   `json:"user_answer"`
	Explanation   string   `json:"explanation"`
	Topic         string   `json:"topic"`
	Passage       string   `json:"passage,omitempty"`
}

// Submission is a completed quiz as handed in by the client.
type Submission struct {
	Questions  []SubmittedQuestion
	Topic      string
	Difficulty string
	QuizType   string
}

// Evaluation is the result of applying a submission to the user's state.
type Evaluation struct {
	Score                 int               `json:"score"`
	CurrentLevel          string            `json:"current_level"`
	PreviousLevel         string            `json:"previous_level,omitempty"`
	LevelChanged          bool              `json:"level_changed"`
	LevelChangeType       string            `json:"level_change_type,omitempty"`
	LevelChangeMessage    string            `json:"level_change_message,omitempty"`
	TotalQuizzes          int               `json:"total_quizzes"`
	AverageScore          float64           `json:"average_score"`
	TopicPerformance      models.TopicStats `json:"topic_performance"`
	HasCompletedFirstQuiz bool              `json:"has_completed_first_quiz"`
}

// Engine applies quiz results to per-user progression state. All mutations
// are serialized per user: an in-process lock keyed by user id, plus a
// version compare-and-set on the user row inside one store transaction.
type Engine struct {
	db    *gorm.DB
	cfg   *config.Config
	locks *userLocks
}

func NewEngine(db *gorm.DB, cfg *config.Config) *Engine {
	return &Engine{db: db, cfg: cfg, locks: newUserLocks()}
}

// SubmitQuiz validates, scores and records the submission, then updates the
// user's aggregates and evaluates the level transition window. The quiz
// insert and the user update commit together or not at all.
func (e *Engine) SubmitQuiz(ctx context.Context, userID string, sub Submission) (*Evaluation, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	scored := scoreSubmission(sub)

	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	var eval *Evaluation
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		eval, err = e.applySubmission(ctx, userID, sub, scored)
		if !errors.Is(err, errVersionConflict) {
			break
		}
	}
	return eval, err
}

// scoredSubmission holds the server-side recomputation of the payload.
type scoredSubmission struct {
	questions models.QuestionList
	score     int
	topics    models.TopicStats
}

func validateSubmission(sub Submission) error {
	if len(sub.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuizStructure)
	}
	for i, q := range sub.Questions {
		if q.Question == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuizStructure, i+1)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("%w: question %d has %d options, exactly 4 required", ErrInvalidQuizStructure, i+1, len(q.Options))
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: question %d correct answer is not among the options", ErrInvalidQuizStructure, i+1)
		}
	}
	return nil
}

// scoreSubmission recomputes correctness by string equality against the
// correct answer, derives the score and the per-topic tally.
func scoreSubmission(sub Submission) scoredSubmission {
	questions := make(models.QuestionList, 0, len(sub.Questions))
	topics := make(models.TopicStats)
	correct := 0

	for _, q := range sub.Questions {
		isCorrect := q.UserAnswer == q.CorrectAnswer
		if isCorrect {
			correct++
		}

		topic := q.Topic
		if topic == "" {
			topic = sub.Topic
		}
		if topic == "" {
			topic = "Unknown"
		}

		stat := topics[topic]
		stat.Total++
		if isCorrect {
			stat.Correct++
		}
		topics[topic] = stat

		questions = append(questions, models.QuizQuestion{
			QuestionText:  q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    q.UserAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
			Topic:         topic,
			Passage:       q.Passage,
		})
	}

	score := int(math.Round(100 * float64(correct) / float64(len(sub.Questions))))
	return scoredSubmission{questions: questions, score: score, topics: topics}
}

func (e *Engine) applySubmission(ctx context.Context, userID string, sub Submission, scored scoredSubmission) (*Evaluation, error) {
	var eval Evaluation

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		now := time.Now().UTC()

		quizType := sub.QuizType
		if quizType == "" {
			quizType = models.QuizTypeAdaptive
		}
		difficulty := sub.Difficulty
		if difficulty == "" {
			difficulty = user.EnglishLevel
		}

		quiz := models.Quiz{
			ID:               uuid.NewString(),
			UserID:           userID,
			QuizType:         quizType,
			Topic:            sub.Topic,
			Difficulty:       difficulty,
			Score:            scored.score,
			Questions:        scored.questions,
			TopicPerformance: scored.topics,
			Timestamp:        now,
		}
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}

		newTotal := user.TotalQuizzes + 1
		newAvg := (user.AverageScore*float64(user.TotalQuizzes) + float64(scored.score)) / float64(newTotal)

		progress, counts := foldTopicProgress(user.Progress, user.ProgressCounts, scored.topics)

		updates := map[string]interface{}{
			"total_quizzes":            newTotal,
			"average_score":            newAvg,
			"progress":                 progress,
			"progress_counts":          counts,
			"has_completed_first_quiz": true,
			"version":                  user.Version + 1,
		}

		eval = Evaluation{
			Score:                 scored.score,
			CurrentLevel:          user.EnglishLevel,
			TotalQuizzes:          newTotal,
			AverageScore:          newAvg,
			TopicPerformance:      scored.topics,
			HasCompletedFirstQuiz: true,
		}

		newLevel, windowOK, err := e.evaluateLevel(tx, &user, now)
		if err != nil {
			return err
		}
		if windowOK && newLevel != user.EnglishLevel {
			changeType := LevelChangeProgression
			message := fmt.Sprintf("Congratulations! You've progressed from %s to %s level!", user.EnglishLevel, newLevel)
			if levelRank(newLevel) < levelRank(user.EnglishLevel) {
				changeType = LevelChangeRetrocession
				message = fmt.Sprintf("Your level has changed from %s to %s. Keep practicing to improve!", user.EnglishLevel, newLevel)
			}

			updates["english_level"] = newLevel
			updates["level_changed"] = true
			updates["level_change_type"] = changeType
			updates["level_change_message"] = message
			updates["previous_level"] = user.EnglishLevel
			updates["last_level_change_at"] = now

			eval.PreviousLevel = user.EnglishLevel
			eval.CurrentLevel = newLevel
			eval.LevelChanged = true
			eval.LevelChangeType = changeType
			eval.LevelChangeMessage = message
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", userID, user.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errVersionConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

// evaluateLevel applies the recent-window rule. The window holds the most
// recent MinQuizzesForLevelChange scores submitted after the last level
// change (the window resets on transition), inclusive of the quiz inserted
// in this transaction.
func (e *Engine) evaluateLevel(tx *gorm.DB, user *models.User, now time.Time) (string, bool, error) {
	q := tx.Model(&models.Quiz{}).Where("user_id = ?", user.ID)
	if user.LastLevelChangeAt != nil {
		q = q.Where("timestamp > ?", *user.LastLevelChangeAt)
	}

	var scores []int
	if err := q.Order("timestamp DESC").
		Limit(e.cfg.MinQuizzesForLevelChange).
		Pluck("score", &scores).Error; err != nil {
		return "", false, err
	}

	if len(scores) < e.cfg.MinQuizzesForLevelChange {
		return user.EnglishLevel, false, nil
	}

	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))

	switch {
	case mean >= float64(e.cfg.LevelUpThreshold) && user.EnglishLevel != "advanced":
		return config.NextLevel(user.EnglishLevel), true, nil
	case mean <= float64(e.cfg.LevelDownThreshold) && user.EnglishLevel != "beginner":
		return config.PrevLevel(user.EnglishLevel), true, nil
	default:
		return user.EnglishLevel, true, nil
	}
}

// foldTopicProgress folds this quiz's per-topic percentages into the running
// mean-of-percentages, keeping the per-topic quiz counts exact.
func foldTopicProgress(progress models.ProgressMap, counts models.CountMap, topics models.TopicStats) (models.ProgressMap, models.CountMap) {
	newProgress := make(models.ProgressMap, len(progress)+len(topics))
	for k, v := range progress {
		newProgress[k] = v
	}
	newCounts := make(models.CountMap, len(counts)+len(topics))
	for k, v := range counts {
		newCounts[k] = v
	}

	for topic, stat := range topics {
		if stat.Total == 0 {
			continue
		}
		pct := 100 * float64(stat.Correct) / float64(stat.Total)
		n := newCounts[topic]
		newProgress[topic] = (newProgress[topic]*float64(n) + pct) / float64(n+1)
		newCounts[topic] = n + 1
	}
	return newProgress, newCounts
}

func levelRank(level string) int {
	for i, l := range config.EnglishLevels {
		if l == level {
			return i
		}
	}
	return 0
}
