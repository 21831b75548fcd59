package repository

import (
	"context"
	"errors"

	"whereiscurtis/internal/models"

	"gorm.io/gorm"
)

type BackupRepository interface {
	Record(ctx context.Context, errMsg string) error
	Last(ctx context.Context) (*models.BackupAttempt, error)
}

type backupRepository struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) BackupRepository {
	return &backupRepository{db: db}
}

// Record пишет итог запуска бэкапа (пустой errMsg = успех) и урезает
// таблицу до единственной свежей записи в той же транзакции.
func (r *backupRepository) Record(ctx context.Context, errMsg string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt := models.BackupAttempt{Error: errMsg}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		return tx.Where("id <> ?", attempt.ID).
			Delete(&models.BackupAttempt{}).
			Error
	})
}

// Last возвращает последнюю попытку бэкапа, nil если попыток не было.
func (r *backupRepository) Last(ctx context.Context) (*models.BackupAttempt, error) {
	var attempt models.BackupAttempt
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&attempt).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
