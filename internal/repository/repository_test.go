package repository

import (
	"testing"

	"whereiscurtis/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Event{},
		&models.APIRequest{},
		&models.BackupAttempt{},
	))

	return db
}

func makeEvent(id string, unixTime int64) models.Event {
	return models.Event{
		ID:          id,
		MessageType: models.MessageTypeUnlimitedTrack,
		UnixTime:    unixTime,
		Latitude:    40.0,
		Longitude:   -120.0,
	}
}
