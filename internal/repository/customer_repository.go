package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetByChatID(ctx context.Context, chatID int64) (*model.Customer, error)
	EnsureByChatID(ctx context.Context, chatID int64, displayName string) (*model.Customer, error)
}

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCustomerRepository) GetByChatID(ctx context.Context, chatID int64) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "chat_id = ?", chatID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCustomerRepository) EnsureByChatID(ctx context.Context, chatID int64, displayName string) (*model.Customer, error) {
	if chatID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var c model.Customer
	tx := r.db.WithContext(ctx).First(&c, "chat_id = ?", chatID)
	if tx.Error == nil {
		return &c, nil
	}
	if tx.Error != gorm.ErrRecordNotFound {
		return nil, tx.Error
	}

	c = model.Customer{ChatID: chatID, DisplayName: displayName}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
