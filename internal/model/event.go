package model

import (
	"time"

	"github.com/google/uuid"
)

// Тип события аудита.
type EventType string

const (
	EventTypeReservationCreated   EventType = "reservation_created"
	EventTypeReservationConfirmed EventType = "reservation_confirmed"
	EventTypeReservationCancelled EventType = "reservation_cancelled"
	EventTypeReservationCompleted EventType = "reservation_completed"
	EventTypeReservationDeleted   EventType = "reservation_deleted"
	EventTypeReminderSent         EventType = "reminder_sent"
)

// events — события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	ReservationID *uuid.UUID `gorm:"type:uuid;index"`

	Details string `gorm:"type:text"`

	// Навигационные поля
	Customer    *Customer    `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Reservation *Reservation `gorm:"foreignKey:ReservationID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
