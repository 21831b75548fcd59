package repository

import (
	"context"
	"errors"
	"time"

	"whereiscurtis/internal/models"

	"gorm.io/gorm"
)

// Храним только последние N сырых обменов с апстримом
const apiRequestKeepCount = 100

type APIRequestRepository interface {
	Record(ctx context.Context, requestJSON, responseJSON []byte, statusCode int) error
	LastInfo(ctx context.Context) (*time.Time, *int, error)
	Last(ctx context.Context) (*models.APIRequest, error)
	Count(ctx context.Context) (int64, error)
}

type apiRequestRepository struct {
	db *gorm.DB
}

func NewAPIRequestRepository(db *gorm.DB) APIRequestRepository {
	return &apiRequestRepository{db: db}
}

// Record добавляет запись обмена и в той же транзакции урезает таблицу
// до последних apiRequestKeepCount по created_at.
func (r *apiRequestRepository) Record(ctx context.Context, requestJSON, responseJSON []byte, statusCode int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := models.APIRequest{
			RequestJSON:  requestJSON,
			ResponseJSON: responseJSON,
			StatusCode:   statusCode,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		return tx.Exec(`
			DELETE FROM api_requests
			WHERE id NOT IN (
				SELECT id FROM api_requests
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			)`, apiRequestKeepCount).Error
	})
}

// LastInfo возвращает время и статус последнего обращения к апстриму,
// либо nil/nil если обращений еще не было.
func (r *apiRequestRepository) LastInfo(ctx context.Context) (*time.Time, *int, error) {
	record, err := r.Last(ctx)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, nil
	}
	return &record.CreatedAt, &record.StatusCode, nil
}

// Last возвращает полную последнюю запись для реплея, nil если таблица пуста.
func (r *apiRequestRepository) Last(ctx context.Context) (*models.APIRequest, error) {
	var record models.APIRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		First(&record).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *apiRequestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.APIRequest{}).
		Count(&count).
		Error
	return count, err
}
