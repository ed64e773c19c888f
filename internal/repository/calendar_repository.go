package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type CalendarRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Calendar, error)
	// Привязки сотрудников календаря, по убыванию приоритета.
	ListStaffLinks(ctx context.Context, calendarID uuid.UUID) ([]model.StaffLink, error)
}

type GormCalendarRepository struct {
	db *gorm.DB
}

func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

func (r *GormCalendarRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Calendar, error) {
	var c model.Calendar
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCalendarRepository) ListStaffLinks(ctx context.Context, calendarID uuid.UUID) ([]model.StaffLink, error) {
	var links []model.StaffLink
	err := r.db.WithContext(ctx).
		Where("calendar_id = ?", calendarID).
		Order("priority DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
