package scheduler

import (
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"englearn/backend/models"
	"englearn/backend/utils"
)

func TestSweepSessionsRemovesExpiredAndRevoked(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	now := time.Now().UTC()
	sessions := []models.Session{
		{Token: "expired", UserID: "u1", ExpiresAt: now.Add(-time.Hour), IsActive: true},
		{Token: "revoked", UserID: "u1", ExpiresAt: now.Add(time.Hour), IsActive: false},
		{Token: "live", UserID: "u2", ExpiresAt: now.Add(time.Hour), IsActive: true},
	}
	for i := range sessions {
		sessions[i].CreatedAt = now
		require.NoError(t, db.Create(&sessions[i]).Error)
	}

	s := New(db, log.New(io.Discard, "", 0))
	s.sweepSessions()

	var remaining []models.Session
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].Token)
}
