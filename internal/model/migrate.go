package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей ядра бронирования.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Customer{},
		&Staff{},
		&Calendar{},
		&StaffLink{},
		&Reservation{},
		&Event{},
	); err != nil {
		return err
	}

	// Страховка от двойного назначения одного сотрудника на один и тот же
	// слот под гонкой «прочитал доступность — записал бронь». Частичный
	// индекс: отменённые записи повторную запись не блокируют.
	// Поддерживается и Postgres, и SQLite.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_reservations_staff_slot_active
		 ON reservations (staff_id, starts_at)
		 WHERE status <> 'cancelled'`,
	).Error
}
