package model

import (
	"time"

	"github.com/google/uuid"
)

// customers — клиент публичной/чатовой поверхности бронирования.
type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// Идентификатор в чат-платформе (Telegram и т.п.).
	ChatID int64 `gorm:"not null;uniqueIndex"`

	DisplayName  string `gorm:"type:varchar(255)"`
	ContactPhone string `gorm:"type:varchar(32)"`

	Note string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля (опционально)
	Reservations []Reservation `gorm:"foreignKey:CustomerID"`
}
