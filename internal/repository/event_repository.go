package repository

import (
	"context"
	"errors"

	"whereiscurtis/internal/models"

	"gorm.io/gorm"
)

type EventRepository interface {
	UpsertBatch(ctx context.Context, events []models.Event) error
	Query(ctx context.Context, startTime, endTime *int64, limit int) ([]models.Event, error)
	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// UpsertBatch вставляет или заменяет события по ID одной транзакцией:
// либо весь батч, либо ничего.
func (r *eventRepository) UpsertBatch(ctx context.Context, events []models.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			if event.ID == "" {
				continue
			}

			var existing models.Event
			err := tx.Where("id = ?", event.ID).First(&existing).Error

			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&event).Error; err != nil {
					return err
				}
			} else if err == nil {
				// Последняя запись побеждает
				event.CreatedAt = existing.CreatedAt
				if err := tx.Save(&event).Error; err != nil {
					return err
				}
			} else {
				return err
			}
		}
		return nil
	})
}

// Query возвращает события с unix_time в [startTime, endTime], отсортированные
// по unix_time по убыванию. Отсутствующая граница не ограничивает диапазон,
// limit <= 0 снимает ограничение на количество.
func (r *eventRepository) Query(ctx context.Context, startTime, endTime *int64, limit int) ([]models.Event, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{})

	if startTime != nil {
		q = q.Where("unix_time >= ?", *startTime)
	}
	if endTime != nil {
		q = q.Where("unix_time <= ?", *endTime)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var events []models.Event
	err := q.Order("unix_time DESC").Find(&events).Error
	return events, err
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Count(&count).
		Error
	return count, err
}
