package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const (
	QuizTypeStatic   = "static"
	QuizTypeAdaptive = "adaptive"
)

// QuizQuestion is a single answered multiple-choice item inside a stored quiz.
type QuizQuestion struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    string   `json:"user_answer"`
	IsCorrect     bool     `json:"is_correct"`
	Explanation   string   `json:"explanation"`
	Topic         string   `json:"topic"`
	Passage       string   `json:"passage,omitempty"`
}

// QuestionList is the ordered question sequence stored as a JSON column.
type QuestionList []QuizQuestion

func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	b, err := json.Marshal(q)
	return string(b), err
}

func (q *QuestionList) Scan(value interface{}) error {
	return scanJSON(value, q)
}

// TopicStat counts correct answers out of total for one topic in one quiz.
type TopicStat struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// TopicStats maps topic name to its per-quiz tally, stored as a JSON column.
type TopicStats map[string]TopicStat

func (t TopicStats) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	b, err := json.Marshal(t)
	return string(b), err
}

func (t *TopicStats) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// Quiz is one completed attempt. Quizzes are append-only: they are written
// on submission and never updated.
type Quiz struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"index;not null"`
	QuizType         string `gorm:"default:adaptive"`
	Topic            string
	Difficulty       string
	Score            int
	Questions        QuestionList `gorm:"type:text"`
	TopicPerformance TopicStats   `gorm:"type:text"`
	Timestamp        time.Time    `gorm:"index:idx_quizzes_timestamp,sort:desc"`
}

// QAEntry is one question-answering exchange. Append-only history.
type QAEntry struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Question  string
	Context   string
	Answer    string
	Timestamp time.Time
}

// ChatLog is a convenience transcript of tutor conversations. The client is
// the source of truth for chat history; this log is written best-effort and
// never read back to build prompts.
type ChatLog struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Role      string
	Content   string
	Timestamp time.Time
}
