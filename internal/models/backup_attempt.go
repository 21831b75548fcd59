package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupAttempt — маркер последнего запуска бэкапа (не история).
// Пустой Error означает успех. Таблица урезается до одной записи.
type BackupAttempt struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Error     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (a *BackupAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *BackupAttempt) Succeeded() bool {
	return a.Error == ""
}
