package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	StoreURI string

	// LLM inference endpoint
	LLMBaseURL     string
	LLMModel       string
	LLMTimeoutSecs int
	LLMTemperature float64
	LLMMaxTokens   int

	// Quiz settings
	DefaultQuizQuestions int

	// Level progression thresholds
	LevelUpThreshold         int
	LevelDownThreshold       int
	MinQuizzesForLevelChange int

	// Sessions
	SessionTTLDays int
	SigningSecret  string

	ServerPort string
}

// EnglishLevels lists the supported proficiency levels in ascending order.
var EnglishLevels = []string{"beginner", "intermediate", "advanced"}

// AvailableModels lists the models the inference runtime is expected to serve.
var AvailableModels = []string{
	"llama3.1:8b",
	"llama3.2:3b",
	"gemma2:2b",
	"llama3.2:1b",
	"mistral:7b",
	"qwen2:7b",
	"phi3:mini",
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		StoreURI:                 getEnv("STORE_URI", "host=localhost port=5432 user=postgres password=postgres dbname=english_learning sslmode=disable"),
		LLMBaseURL:               getEnv("LLM_BASE_URL", "http://127.0.0.1:11434"),
		LLMModel:                 getEnv("LLM_MODEL", "gemma2:2b"),
		LLMTimeoutSecs:           getEnvInt("LLM_TIMEOUT_SECONDS", 180),
		LLMTemperature:           getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:             getEnvInt("LLM_MAX_TOKENS", 2000),
		DefaultQuizQuestions:     getEnvInt("DEFAULT_QUIZ_QUESTIONS", 4),
		LevelUpThreshold:         getEnvInt("LEVEL_UP_THRESHOLD", 75),
		LevelDownThreshold:       getEnvInt("LEVEL_DOWN_THRESHOLD", 50),
		MinQuizzesForLevelChange: getEnvInt("MIN_QUIZZES_FOR_LEVEL_CHANGE", 3),
		SessionTTLDays:           getEnvInt("SESSION_TTL_DAYS", 7),
		SigningSecret:            getEnv("SIGNING_SECRET", "secret"),
		ServerPort:               getEnv("SERVER_PORT", "8080"),
	}, nil
}

// ValidLevel reports whether level is one of the supported English levels.
func ValidLevel(level string) bool {
	for _, l := range EnglishLevels {
		if l == level {
			return true
		}
	}
	return false
}

// NextLevel returns the level one step above the given one, capped at advanced.
func NextLevel(level string) string {
	for i, l := range EnglishLevels {
		if l == level && i < len(EnglishLevels)-1 {
			return EnglishLevels[i+1]
		}
	}
	return level
}

// PrevLevel returns the level one step below the given one, floored at beginner.
func PrevLevel(level string) string {
	for i, l := range EnglishLevels {
		if l == level && i > 0 {
			return EnglishLevels[i-1]
		}
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
