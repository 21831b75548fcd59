package models

import (
	"time"
)

type MessageType string

const (
	MessageTypeCustom         MessageType = "CUSTOM"
	MessageTypeUnlimitedTrack MessageType = "UNLIMITED-TRACK"
	MessageTypeOK             MessageType = "OK"
)

// Event — одно распарсенное сообщение Spot-трекера.
// ID приходит от апстрима и служит первичным ключом: повторный фетч
// с тем же ID перезаписывает запись, дубликатов не бывает.
type Event struct {
	ID             string      `gorm:"primaryKey" json:"id"`
	MessageType    MessageType `gorm:"type:varchar(50);not null" json:"messageType"`
	MessageContent string      `gorm:"type:text" json:"messageContent"`
	UnixTime       int64       `gorm:"not null;index" json:"unixTime"`
	Latitude       float64     `gorm:"not null" json:"latitude"`
	Longitude      float64     `gorm:"not null" json:"longitude"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"-"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"-"`
}
