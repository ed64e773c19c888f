package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// calendars — бронируемый календарь с политикой расписания.
// Политика хранится прямо в строке календаря: дни приёма, часы работы,
// шаг сетки, длительность сеанса и окно предварительной записи.
type Calendar struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// Внешний ключ на арендатора (бизнес). Изоляция данных — вне ядра.
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	// Дни недели, в которые возможна запись. JSON-массив строк:
	// "mon".."sun" плюс синтетический тег "holiday".
	AcceptedDays datatypes.JSON `gorm:"type:jsonb"`

	// Часы работы в локальном времени календаря, формат "HH:MM".
	OpenTime  string `gorm:"type:varchar(5);not null"`
	CloseTime string `gorm:"type:varchar(5);not null"`

	// Шаг сетки слотов и длительность сеанса, в минутах.
	SlotIntervalMin    int `gorm:"not null"`
	SessionDurationMin int `gorm:"not null"`

	// Насколько далеко вперёд разрешена запись (в днях)
	// и минимальный зазор от текущего момента (в часах).
	MaxDaysAhead int `gorm:"not null;default:30"`
	MinLeadHours int `gorm:"not null;default:0"`

	TimeZone string `gorm:"type:varchar(64);not null;default:'UTC'"`

	// Даты праздников для тега "holiday". JSON-массив строк "2006-01-02".
	Holidays datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля для GORM.
	StaffLinks   []StaffLink   `gorm:"foreignKey:CalendarID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Reservations []Reservation `gorm:"foreignKey:CalendarID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
