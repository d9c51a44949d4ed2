package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ProgressMap stores per-topic progress as a JSON column: topic name to a
// running mean of topic percentages in [0, 100].
type ProgressMap map[string]float64

func (p ProgressMap) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *ProgressMap) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// CountMap stores the number of quizzes that touched each topic. Together
// with ProgressMap it keeps the per-topic running mean exact.
type CountMap map[string]int

func (c CountMap) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	return string(b), err
}

func (c *CountMap) Scan(value interface{}) error {
	return scanJSON(value, c)
}

type User struct {
	ID                    string `gorm:"primaryKey"`
	Username              string `gorm:"uniqueIndex;not null"`
	PasswordHash          string `gorm:"not null"`
	PasswordSalt          string `gorm:"not null"`
	EnglishLevel          string `gorm:"default:beginner"`
	HasCompletedFirstQuiz bool   `gorm:"default:false"`
	TotalQuizzes          int    `gorm:"default:0"`
	AverageScore          float64
	Progress              ProgressMap `gorm:"type:text"`
	ProgressCounts        CountMap    `gorm:"type:text"`

	// Level change notification state, surfaced on the profile projections.
	LevelChanged       bool
	LevelChangeType    string
	LevelChangeMessage string
	PreviousLevel      string
	LastLevelChangeAt  *time.Time

	// Version backs the compare-and-set on concurrent quiz submissions.
	Version int64 `gorm:"default:0"`

	CreatedAt time.Time
	LastLogin *time.Time
}

type Session struct {
	// Token holds the HMAC-SHA256 of the bearer token, never the token itself.
	Token     string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
	IsActive  bool
}

// Valid reports whether the session can still authenticate requests.
func (s *Session) Valid(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported column type for JSON scan")
	}
}
