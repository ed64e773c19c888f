package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

// ErrConflict — нарушение уникальности (сотрудник уже назначен на этот
// слот). Для вызывающего это не внутренняя ошибка, а проигранная гонка.
var ErrConflict = errors.New("reservation conflict")

type ReservationRepository interface {
	// Создать новую запись. При нарушении уникальности (staff_id,
	// starts_at) возвращает ErrConflict.
	Create(ctx context.Context, res *model.Reservation) error
	// Получить запись по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	// Записи календаря, пересекающие окно [from, to), кроме отменённых.
	FindOverlapping(ctx context.Context, calendarID uuid.UUID, from, to time.Time) ([]model.Reservation, error)
	// Обновить статус записи (подтверждение, отмена, завершение).
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus, cancelledAt *time.Time, cancelReason string) error
	// Проставить ссылку на событие внешнего календаря (best-effort).
	SetExternalEventRef(ctx context.Context, id uuid.UUID, ref string) error
	// Подтверждённые записи, начинающиеся в (now, now+lead], по которым
	// ещё не слали напоминание.
	ListDueReminders(ctx context.Context, now time.Time, lead time.Duration) ([]model.Reservation, error)
	// Идемпотентно отметить запись как напомненную. false — отметка
	// уже стояла, слать ничего не нужно.
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// Удалить запись (административная операция).
	Delete(ctx context.Context, id uuid.UUID) error
	// Список записей клиента за период с пагинацией.
	ListByCustomerAndRange(ctx context.Context, customerID uuid.UUID, from, to time.Time, limit, offset int) ([]model.Reservation, int64, error)
}

// Реализация на GORM.
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	if res.EndsAt.IsZero() {
		res.EndsAt = res.StartsAt.Add(time.Duration(res.DurationMin) * time.Minute)
	}
	err := r.db.WithContext(ctx).Create(res).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var res model.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *GormReservationRepository) FindOverlapping(
	ctx context.Context,
	calendarID uuid.UUID,
	from, to time.Time,
) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := r.db.WithContext(ctx).
		Where("calendar_id = ?", calendarID).
		Where("starts_at < ? AND ends_at > ?", to, from).
		Where("status <> ?", model.ReservationStatusCancelled).
		Order("starts_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *GormReservationRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.ReservationStatus,
	cancelledAt *time.Time,
	cancelReason string,
) error {
	update := map[string]any{
		"status": status,
	}
	if cancelledAt != nil {
		update["cancelled_at"] = *cancelledAt
	}
	if cancelReason != "" {
		update["cancel_reason"] = cancelReason
	}
	return r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ?", id).
		Updates(update).
		Error
}

func (r *GormReservationRepository) SetExternalEventRef(ctx context.Context, id uuid.UUID, ref string) error {
	return r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ?", id).
		Update("external_event_ref", ref).
		Error
}

func (r *GormReservationRepository) ListDueReminders(
	ctx context.Context,
	now time.Time,
	lead time.Duration,
) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ReservationStatusConfirmed).
		Where("starts_at > ? AND starts_at <= ?", now, now.Add(lead)).
		Where("reminded_at IS NULL").
		Order("starts_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *GormReservationRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	// Отметка ставится одним UPDATE с условием reminded_at IS NULL:
	// параллельные прогоны рассылки не продублируют напоминание.
	tx := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND reminded_at IS NULL", id).
		Update("reminded_at", at)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *GormReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Reservation{}, "id = ?", id).Error
}

func (r *GormReservationRepository) ListByCustomerAndRange(
	ctx context.Context,
	customerID uuid.UUID,
	from, to time.Time,
	limit, offset int,
) ([]model.Reservation, int64, error) {
	var (
		reservations []model.Reservation
		total        int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("customer_id = ?", customerID).
		Where("starts_at >= ? AND starts_at <= ?", from, to)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("starts_at DESC").Find(&reservations).Error; err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}
