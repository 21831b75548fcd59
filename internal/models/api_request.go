package models

import (
	"time"

	"gorm.io/datatypes"
)

// APIRequest — сырой запрос/ответ одного обращения к Spot API.
// Пишется при каждой попытке фетча, включая неудачные, чтобы можно
// было реплеить и дебажить плохие ответы.
type APIRequest struct {
	ID           uint           `gorm:"primaryKey"`
	RequestJSON  datatypes.JSON `gorm:"type:jsonb;not null"`
	ResponseJSON datatypes.JSON `gorm:"type:jsonb;not null"`
	StatusCode   int            `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}
