package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Blocks сообщает, занимает ли запись слот при проверке доступности.
// Отменённые записи слот не блокируют никогда.
func (s ReservationStatus) Blocks() bool {
	return s != ReservationStatusCancelled
}

// reservations
type Reservation struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CalendarID uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Назначенный сотрудник. Выставляется ровно один раз при создании,
	// ядро его никогда не переназначает.
	StaffID uuid.UUID `gorm:"type:uuid;not null;index"`

	StartsAt time.Time `gorm:"type:timestamp with time zone;not null;index"`
	// EndsAt денормализован из StartsAt + DurationMin ради простых
	// SQL-запросов на пересечение окон.
	EndsAt      time.Time `gorm:"type:timestamp with time zone;not null"`
	DurationMin int       `gorm:"not null"`

	Status ReservationStatus `gorm:"type:varchar(32);not null;index"`

	CancelledAt  *time.Time `gorm:"type:timestamp with time zone"`
	CancelReason string     `gorm:"type:text"`

	// Отметка об отправленном напоминании (идемпотентность рассылки).
	RemindedAt *time.Time `gorm:"type:timestamp with time zone"`

	// Ссылка на событие во внешнем календаре. Заполняется асинхронно,
	// best-effort: её отсутствие запись не порочит.
	ExternalEventRef *string `gorm:"type:varchar(255)"`

	Comment string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Calendar *Calendar `gorm:"foreignKey:CalendarID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Staff    *Staff    `gorm:"foreignKey:StaffID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
