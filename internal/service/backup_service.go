package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"whereiscurtis/internal/clients"
	"whereiscurtis/internal/mailer"
	"whereiscurtis/internal/models"
	"whereiscurtis/internal/repository"
)

const (
	ReasonCompleted     = "completed"
	ReasonFailed        = "failed"
	ReasonAlreadyBacked = "already-backed-up-today"
	ReasonOutsideWindow = "outside-window"
)

type BackupService interface {
	RunBackupIfDue(ctx context.Context, now time.Time) (*BackupOutcome, error)
}

// BackupOutcome — структурный итог тика бэкапа. Ошибки фетча и отправки
// не фатальны: тик всегда завершается и отчитывается причиной.
type BackupOutcome struct {
	Ran      bool           `json:"ran"`
	Reason   string         `json:"reason"`
	Error    string         `json:"error,omitempty"`
	Messages []models.Event `json:"messages,omitempty"`
}

type BackupConfig struct {
	Recipients      []string
	Location        *time.Location
	WindowStartHour int
	WindowEndHour   int
}

type backupService struct {
	backups repository.BackupRepository
	client  clients.SpotClient
	mail    mailer.Mailer
	config  BackupConfig
}

func NewBackupService(
	backups repository.BackupRepository,
	client clients.SpotClient,
	mail mailer.Mailer,
	config BackupConfig,
) BackupService {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &backupService{
		backups: backups,
		client:  client,
		mail:    mail,
		config:  config,
	}
}

// RunBackupIfDue запускает бэкап не чаще раза в календарный день и только
// внутри заданного окна часов. Считаются только успешные попытки: после
// неудачи следующий тик в окне пробует снова.
func (s *backupService) RunBackupIfDue(ctx context.Context, now time.Time) (*BackupOutcome, error) {
	last, err := s.backups.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last backup attempt: %w", err)
	}

	localNow := now.In(s.config.Location)

	if last != nil && last.Succeeded() && sameDay(last.CreatedAt.In(s.config.Location), localNow) {
		return &BackupOutcome{Ran: false, Reason: ReasonAlreadyBacked}, nil
	}

	hour := localNow.Hour()
	if hour < s.config.WindowStartHour || hour >= s.config.WindowEndHour {
		return &BackupOutcome{Ran: false, Reason: ReasonOutsideWindow}, nil
	}

	log.Println("Running daily Spot messages backup...")

	exchange, fetchErr := s.client.FetchLatest(ctx)
	if fetchErr != nil {
		return s.recordFailure(ctx, fmt.Errorf("backup fetch failed: %w", fetchErr))
	}

	if sendErr := s.sendBackup(localNow, exchange.Messages); sendErr != nil {
		return s.recordFailure(ctx, sendErr)
	}

	if err := s.backups.Record(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to record backup attempt: %w", err)
	}

	log.Printf("Backup completed: %d messages sent to %d recipients",
		len(exchange.Messages), len(s.config.Recipients))

	return &BackupOutcome{
		Ran:      true,
		Reason:   ReasonCompleted,
		Messages: exchange.Messages,
	}, nil
}

func (s *backupService) sendBackup(now time.Time, messages []models.Event) error {
	body, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	attachment := mailer.Attachment{
		Filename: fmt.Sprintf("spot_messages_%s.json", now.UTC().Format(time.RFC3339)),
		Content:  body,
	}

	if err := s.mail.Send(
		s.config.Recipients,
		"Spot Messages Backup",
		"Please find attached the latest backup of Spot messages.",
		"<p>Please find attached the latest backup of Spot messages.</p>",
		[]mailer.Attachment{attachment},
	); err != nil {
		return fmt.Errorf("backup send failed: %w", err)
	}
	return nil
}

func (s *backupService) recordFailure(ctx context.Context, cause error) (*BackupOutcome, error) {
	log.Printf("Backup failed: %v", cause)

	if err := s.backups.Record(ctx, cause.Error()); err != nil {
		return nil, fmt.Errorf("failed to record backup attempt: %w", err)
	}

	return &BackupOutcome{Ran: false, Reason: ReasonFailed, Error: cause.Error()}, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
