package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"whereiscurtis/internal/models"
	"whereiscurtis/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type backupFixture struct {
	service BackupService
	backups repository.BackupRepository
	client  *fakeSpotClient
	mail    *fakeMailer
	db      *gorm.DB
}

func newBackupFixture(t *testing.T, client *fakeSpotClient) *backupFixture {
	db := newTestDB(t)
	backups := repository.NewBackupRepository(db)
	mail := &fakeMailer{}

	svc := NewBackupService(backups, client, mail, BackupConfig{
		Recipients:      []string{"backup@example.com"},
		Location:        time.UTC,
		WindowStartHour: 6,
		WindowEndHour:   9,
	})

	return &backupFixture{
		service: svc,
		backups: backups,
		client:  client,
		mail:    mail,
		db:      db,
	}
}

// todayAt — сегодняшняя дата (UTC) с заданным часом
func todayAt(hour int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
}

func TestRunBackupOutsideWindow(t *testing.T) {
	fx := newBackupFixture(t, &fakeSpotClient{exchange: feedExchange(trackEvent("A", 100))})
	ctx := context.Background()

	for _, hour := range []int{0, 5, 9, 23} {
		outcome, err := fx.service.RunBackupIfDue(ctx, todayAt(hour))
		require.NoError(t, err)
		assert.False(t, outcome.Ran)
		assert.Equal(t, ReasonOutsideWindow, outcome.Reason)
	}

	assert.Equal(t, 0, fx.mail.sendCount())
	assert.Equal(t, 0, fx.client.callCount())

	// Пропуск не считается попыткой
	last, err := fx.backups.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestRunBackupOncePerDay(t *testing.T) {
	fx := newBackupFixture(t, &fakeSpotClient{exchange: feedExchange(trackEvent("A", 100), trackEvent("B", 200))})
	ctx := context.Background()

	outcome, err := fx.service.RunBackupIfDue(ctx, todayAt(7))
	require.NoError(t, err)
	assert.True(t, outcome.Ran)
	assert.Equal(t, ReasonCompleted, outcome.Reason)
	assert.Len(t, outcome.Messages, 2)
	require.Equal(t, 1, fx.mail.sendCount())

	sent := fx.mail.sends[0]
	assert.Equal(t, []string{"backup@example.com"}, sent.to)
	assert.Equal(t, "Spot Messages Backup", sent.subject)
	require.Len(t, sent.attachments, 1)
	assert.Contains(t, sent.attachments[0].Filename, "spot_messages_")
	assert.NotEmpty(t, sent.attachments[0].Content)

	// Второй запуск в том же окне того же дня пропускается
	outcome, err = fx.service.RunBackupIfDue(ctx, todayAt(8))
	require.NoError(t, err)
	assert.False(t, outcome.Ran)
	assert.Equal(t, ReasonAlreadyBacked, outcome.Reason)
	assert.Equal(t, 1, fx.mail.sendCount())
}

func TestRunBackupFailedFetchIsRetried(t *testing.T) {
	client := &fakeSpotClient{
		exchange: feedExchange(),
		err:      fmt.Errorf("connection refused"),
	}
	fx := newBackupFixture(t, client)
	ctx := context.Background()

	outcome, err := fx.service.RunBackupIfDue(ctx, todayAt(7))
	require.NoError(t, err)
	assert.False(t, outcome.Ran)
	assert.Equal(t, ReasonFailed, outcome.Reason)
	assert.Contains(t, outcome.Error, "backup fetch failed")

	// Неудача записана, но не блокирует повтор в том же окне
	last, lastErr := fx.backups.Last(ctx)
	require.NoError(t, lastErr)
	require.NotNil(t, last)
	assert.False(t, last.Succeeded())

	client.mu.Lock()
	client.err = nil
	client.exchange = feedExchange(trackEvent("A", 100))
	client.mu.Unlock()

	outcome, err = fx.service.RunBackupIfDue(ctx, todayAt(8))
	require.NoError(t, err)
	assert.True(t, outcome.Ran)
	assert.Equal(t, 1, fx.mail.sendCount())
}

func TestRunBackupSendFailureRecorded(t *testing.T) {
	fx := newBackupFixture(t, &fakeSpotClient{exchange: feedExchange(trackEvent("A", 100))})
	fx.mail.err = fmt.Errorf("smtp unreachable")
	ctx := context.Background()

	outcome, err := fx.service.RunBackupIfDue(ctx, todayAt(7))
	require.NoError(t, err)
	assert.False(t, outcome.Ran)
	assert.Equal(t, ReasonFailed, outcome.Reason)
	assert.Contains(t, outcome.Error, "backup send failed")

	last, lastErr := fx.backups.Last(ctx)
	require.NoError(t, lastErr)
	require.NotNil(t, last)
	assert.Contains(t, last.Error, "smtp unreachable")
}

func TestRunBackupRunsAgainNextDay(t *testing.T) {
	fx := newBackupFixture(t, &fakeSpotClient{exchange: feedExchange(trackEvent("A", 100))})
	ctx := context.Background()

	outcome, err := fx.service.RunBackupIfDue(ctx, todayAt(7))
	require.NoError(t, err)
	require.True(t, outcome.Ran)

	// Сдвигаем вчерашнюю успешную попытку на сутки назад
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, fx.db.Model(&models.BackupAttempt{}).
		Where("1 = 1").
		Update("created_at", yesterday).
		Error)

	outcome, err = fx.service.RunBackupIfDue(ctx, todayAt(8))
	require.NoError(t, err)
	assert.True(t, outcome.Ran)
	assert.Equal(t, 2, fx.mail.sendCount())
}
