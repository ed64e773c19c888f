package model

import (
	"time"

	"github.com/google/uuid"
)

// Staff — сотрудник, ведущий приём (консультант, мастер и т.п.).
type Staff struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Имя/отображаемое название в интерфейсе.
	DisplayName string `gorm:"type:varchar(255);not null"`

	// Краткое описание, специализация и т.п.
	Description string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Links []StaffLink `gorm:"foreignKey:StaffID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// staff_links — привязка сотрудника к календарю (комбинированный PK).
// Priority задаёт ярус назначения: чем выше, тем предпочтительнее.
// BusySourceRef — ссылка на учётные данные внешнего календаря; nil означает
// «внешняя занятость неизвестна, считаем только по внутренним записям».
type StaffLink struct {
	CalendarID uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffID    uuid.UUID `gorm:"type:uuid;primaryKey"`

	Priority int `gorm:"not null;default:0;index"`

	BusySourceRef *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля (опционально, но удобно для Preload).
	Calendar *Calendar `gorm:"foreignKey:CalendarID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Staff    *Staff    `gorm:"foreignKey:StaffID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
