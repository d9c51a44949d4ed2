package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"englearn/backend/config"
	"englearn/backend/llm"
	"englearn/backend/routes"
	"englearn/backend/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
	llm *llm.MockClient
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{
		LLMModel:                 "test-model",
		LLMBaseURL:               "http://127.0.0.1:11434",
		LLMTimeoutSecs:           5,
		DefaultQuizQuestions:     4,
		LevelUpThreshold:         75,
		LevelDownThreshold:       50,
		MinQuizzesForLevelChange: 3,
		SessionTTLDays:           7,
		SigningSecret:            "testsecret",
	}

	mock := llm.NewMockClient()
	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, mock, log.New(io.Discard, "", 0))

	return &testEnv{app: app, db: db, cfg: cfg, llm: mock}
}

// request performs one JSON request against the app and decodes the reply.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), "body: %s", raw)
	}
	return resp.StatusCode, result
}

// signUp registers a user and returns (userID, token).
func (e *testEnv) signUp(t *testing.T, username, password string) (string, string) {
	t.Helper()

	status, body := e.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "signup failed: %v", body)

	data := body["data"].(map[string]interface{})
	return data["user_id"].(string), data["session_token"].(string)
}

// data extracts the envelope data object.
func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "no data in %v", body)
	return d
}
