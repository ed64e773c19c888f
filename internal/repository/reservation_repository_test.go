package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Минимальная sqlite-дружелюбная схема для логики запросов.
	schema := []string{
		`CREATE TABLE reservations (
			id TEXT PRIMARY KEY,
			calendar_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			staff_id TEXT NOT NULL,
			starts_at DATETIME NOT NULL,
			ends_at DATETIME NOT NULL,
			duration_min INTEGER NOT NULL,
			status TEXT NOT NULL,
			cancelled_at DATETIME,
			cancel_reason TEXT,
			reminded_at DATETIME,
			external_event_ref TEXT,
			comment TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE UNIQUE INDEX ux_reservations_staff_slot_active
		 ON reservations (staff_id, starts_at)
		 WHERE status <> 'cancelled';`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func makeReservation(calID, staffID uuid.UUID, start time.Time, status model.ReservationStatus) *model.Reservation {
	return &model.Reservation{
		CalendarID:  calID,
		CustomerID:  uuid.New(),
		StaffID:     staffID,
		StartsAt:    start,
		DurationMin: 60,
		Status:      status,
	}
}

func TestReservationRepository_CreateComputesEndsAt(t *testing.T) {
	repo := NewGormReservationRepository(openTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	res := makeReservation(uuid.New(), uuid.New(), start, model.ReservationStatusPending)
	if err := repo.Create(ctx, res); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.EndsAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("expected ends_at %v, got %v", start.Add(time.Hour), res.EndsAt)
	}
}

func TestReservationRepository_FindOverlappingExcludesCancelled(t *testing.T) {
	repo := NewGormReservationRepository(openTestDB(t))
	ctx := context.Background()

	calID := uuid.New()
	start := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	active := makeReservation(calID, uuid.New(), start, model.ReservationStatusConfirmed)
	if err := repo.Create(ctx, active); err != nil {
		t.Fatalf("create active: %v", err)
	}
	cancelled := makeReservation(calID, uuid.New(), start, model.ReservationStatusCancelled)
	if err := repo.Create(ctx, cancelled); err != nil {
		t.Fatalf("create cancelled: %v", err)
	}
	// Касается окна концом — пересечением не считается.
	touching := makeReservation(calID, uuid.New(), start.Add(-time.Hour), model.ReservationStatusConfirmed)
	if err := repo.Create(ctx, touching); err != nil {
		t.Fatalf("create touching: %v", err)
	}

	found, err := repo.FindOverlapping(ctx, calID, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("find overlapping: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 overlapping reservation, got %d", len(found))
	}
	if found[0].ID != active.ID {
		t.Fatalf("expected the active reservation, got %v", found[0].ID)
	}
}

func TestReservationRepository_UniqueIndexMapsToConflict(t *testing.T) {
	repo := NewGormReservationRepository(openTestDB(t))
	ctx := context.Background()

	calID := uuid.New()
	staffID := uuid.New()
	start := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	if err := repo.Create(ctx, makeReservation(calID, staffID, start, model.ReservationStatusPending)); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := repo.Create(ctx, makeReservation(calID, staffID, start, model.ReservationStatusPending))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestReservationRepository_CancelReopensSlotForStaff(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormReservationRepository(db)
	ctx := context.Background()

	calID := uuid.New()
	staffID := uuid.New()
	start := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	first := makeReservation(calID, staffID, start, model.ReservationStatusConfirmed)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)
	if err := repo.UpdateStatus(ctx, first.ID, model.ReservationStatusCancelled, &now, "клиент попросил"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Отменённая запись не блокирует ни проверку пересечений...
	found, err := repo.FindOverlapping(ctx, calID, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("find overlapping: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("cancelled reservation must not occupy the slot")
	}

	// ...ни повторное создание на тот же слот (частичный индекс).
	if err := repo.Create(ctx, makeReservation(calID, staffID, start, model.ReservationStatusPending)); err != nil {
		t.Fatalf("re-create after cancel: %v", err)
	}

	got, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get cancelled: %v", err)
	}
	if got.Status != model.ReservationStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", got.Status)
	}
	if got.CancelledAt == nil || got.CancelReason == "" {
		t.Fatalf("cancel must record reason and timestamp, got %+v", got)
	}
}

func TestReservationRepository_MarkRemindedIdempotent(t *testing.T) {
	repo := NewGormReservationRepository(openTestDB(t))
	ctx := context.Background()

	res := makeReservation(uuid.New(), uuid.New(), time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC), model.ReservationStatusConfirmed)
	if err := repo.Create(ctx, res); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)
	ok, err := repo.MarkReminded(ctx, res.ID, at)
	if err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	if !ok {
		t.Fatalf("first mark must succeed")
	}

	ok, err = repo.MarkReminded(ctx, res.ID, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if ok {
		t.Fatalf("second mark must be a no-op")
	}
}

func TestReservationRepository_ListDueReminders(t *testing.T) {
	repo := NewGormReservationRepository(openTestDB(t))
	ctx := context.Background()

	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	lead := 24 * time.Hour

	inWindow := makeReservation(uuid.New(), uuid.New(), now.Add(2*time.Hour), model.ReservationStatusConfirmed)
	pending := makeReservation(uuid.New(), uuid.New(), now.Add(3*time.Hour), model.ReservationStatusPending)
	tooFar := makeReservation(uuid.New(), uuid.New(), now.Add(48*time.Hour), model.ReservationStatusConfirmed)
	for _, r := range []*model.Reservation{inWindow, pending, tooFar} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	due, err := repo.ListDueReminders(ctx, now, lead)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 || due[0].ID != inWindow.ID {
		t.Fatalf("expected only the confirmed in-window reservation, got %d", len(due))
	}

	// После отметки запись из выборки уходит.
	if _, err := repo.MarkReminded(ctx, inWindow.ID, now); err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	due, err = repo.ListDueReminders(ctx, now, lead)
	if err != nil {
		t.Fatalf("list due again: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("reminded reservation must not be listed again")
	}
}
