package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/assign"
	"github.com/Leganyst/booking-core/internal/busy"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/resolver"
)

// Notifier доставляет исходящие уведомления. Сама доставка (чат-пуш,
// вебхуки) живёт вне ядра, здесь только контракт.
type Notifier interface {
	NotifyReminder(ctx context.Context, res *model.Reservation) error
}

// BookingService — прикладной сервис бронирования: листинг доступных
// слотов, создание записи с назначением сотрудника и жизненный цикл
// записи. Все внешние способности приходят через конструктор.
type BookingService struct {
	db           *gorm.DB
	calendars    repository.CalendarRepository
	reservations repository.ReservationRepository
	customers    repository.CustomerRepository
	resolver     *resolver.Resolver
	engine       *assign.Engine
	sink         busy.EventSink // может быть nil: внешний календарь не подключён
	notifier     Notifier       // может быть nil: напоминания только помечаются
	locks        *slotLocks
	reminderLead time.Duration
	now          func() time.Time
}

func NewBookingService(
	db *gorm.DB,
	calendars repository.CalendarRepository,
	reservations repository.ReservationRepository,
	customers repository.CustomerRepository,
	res *resolver.Resolver,
	engine *assign.Engine,
	sink busy.EventSink,
	notifier Notifier,
	reminderLead time.Duration,
) *BookingService {
	return &BookingService{
		db:           db,
		calendars:    calendars,
		reservations: reservations,
		customers:    customers,
		resolver:     res,
		engine:       engine,
		sink:         sink,
		notifier:     notifier,
		locks:        newSlotLocks(),
		reminderLead: reminderLead,
		now:          time.Now,
	}
}

type ListSlotsRequest struct {
	CalendarID uuid.UUID
	From       time.Time
	To         time.Time
	Page       int
	PageSize   int
}

type ListedSlot struct {
	Start     time.Time
	End       time.Time
	Available bool
	// Человекочитаемая строка для чат-поверхности.
	Label string
}

type ListSlotsResponse struct {
	Slots    []ListedSlot
	Page     int
	PageSize int
	Total    int
	HasNext  bool
	HasPrev  bool
	// Доступность посчитана только по внутренним записям (внешний
	// источник недоступен либо не привязан). Клиенту стоит повторить
	// запрос позже, а не считать ответ окончательным.
	Degraded bool
}

// ListSlots возвращает размеченные слоты календаря за диапазон дат.
// Пустой список — нормальный ответ, а не ошибка.
func (s *BookingService) ListSlots(ctx context.Context, req ListSlotsRequest) (*ListSlotsResponse, error) {
	if req.CalendarID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "calendar_id is required")
	}
	if !req.To.After(req.From) {
		return nil, status.Error(codes.InvalidArgument, "to must be after from")
	}

	cal, err := s.calendars.GetByID(ctx, req.CalendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Error(codes.NotFound, "calendar not found")
		}
		return nil, status.Errorf(codes.Internal, "load calendar: %v", err)
	}

	policy, err := policyFromModel(cal)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "calendar policy: %v", err)
	}

	slots := policy.GenerateRange(req.From, req.To, s.now())
	if len(slots) == 0 {
		return &ListSlotsResponse{Page: 1, PageSize: req.PageSize}, nil
	}

	links, err := s.calendars.ListStaffLinks(ctx, req.CalendarID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "load staff links: %v", err)
	}

	result, err := s.resolver.ListAvailability(ctx, req.CalendarID, links, slots)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "resolve availability: %v", err)
	}

	page := calendar.Paginate(result.Slots, req.Page, req.PageSize)

	resp := &ListSlotsResponse{
		Slots:    make([]ListedSlot, 0, len(page.Items)),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
		HasNext:  page.HasNext,
		HasPrev:  page.HasPrev,
		Degraded: result.Degraded,
	}
	for _, sa := range page.Items {
		resp.Slots = append(resp.Slots, ListedSlot{
			Start:     sa.Slot.Start,
			End:       sa.Slot.End,
			Available: sa.Available,
			Label:     calendar.FormatSlotForUser(sa.Slot, policy.Location()),
		})
	}
	return resp, nil
}

type BookRequest struct {
	CalendarID  uuid.UUID
	StartsAt    time.Time
	ChatID      int64
	DisplayName string
	Comment     string
	// Административное создание: запись сразу в статусе confirmed.
	Confirmed bool
}

// Book бронирует один слот: заново проверяет его доступность, выбирает
// сотрудника и сохраняет запись. Последовательность «проверили —
// записали» держится под замком слота, чтобы две конкурентные брони
// не назначили одного сотрудника дважды.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*model.Reservation, error) {
	if req.CalendarID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "calendar_id is required")
	}
	if req.ChatID == 0 {
		return nil, status.Error(codes.InvalidArgument, "chat_id is required")
	}

	cal, err := s.calendars.GetByID(ctx, req.CalendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Error(codes.NotFound, "calendar not found")
		}
		return nil, status.Errorf(codes.Internal, "load calendar: %v", err)
	}

	policy, err := policyFromModel(cal)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "calendar policy: %v", err)
	}

	// Запрошенное начало обязано совпасть с одним из кандидатов сетки:
	// произвольные моменты времени не бронируются.
	var slot calendar.Slot
	found := false
	for _, c := range policy.Generate(req.StartsAt, s.now()) {
		if c.Start.Equal(req.StartsAt) {
			slot = c
			found = true
			break
		}
	}
	if !found {
		return nil, status.Error(codes.InvalidArgument, "requested slot is not bookable for this calendar")
	}

	links, err := s.calendars.ListStaffLinks(ctx, req.CalendarID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "load staff links: %v", err)
	}

	unlock := s.locks.Lock(req.CalendarID, slot.Start)
	defer unlock()

	free, _, err := s.resolver.FreeStaff(ctx, req.CalendarID, links, slot)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "resolve staff: %v", err)
	}

	staffID, ok := s.engine.Pick(free)
	if !ok {
		return nil, status.Error(codes.AlreadyExists, "slot just became unavailable")
	}

	customer, err := s.customers.EnsureByChatID(ctx, req.ChatID, req.DisplayName)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "ensure customer: %v", err)
	}

	res := &model.Reservation{
		CalendarID:  req.CalendarID,
		CustomerID:  customer.ID,
		StaffID:     staffID,
		StartsAt:    slot.Start,
		EndsAt:      slot.End,
		DurationMin: int(policy.SessionDuration() / time.Minute),
		Status:      model.ReservationStatusPending,
		Comment:     req.Comment,
	}
	if req.Confirmed {
		res.Status = model.ReservationStatusConfirmed
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewGormReservationRepository(tx).Create(ctx, res); err != nil {
			return err
		}
		return tx.Create(&model.Event{
			EventType:     model.EventTypeReservationCreated,
			CustomerID:    &customer.ID,
			ReservationID: &res.ID,
			Details:       fmt.Sprintf("staff=%s slot=%s", staffID, slot.Start.Format(time.RFC3339)),
		}).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Уникальный индекс — вторая линия обороны: гонку мог
			// выиграть другой процесс, для клиента это тот же 409.
			return nil, status.Error(codes.AlreadyExists, "slot just became unavailable")
		}
		return nil, status.Errorf(codes.Internal, "create reservation: %v", err)
	}

	// Событие во внешнем календаре создаётся асинхронно и best-effort:
	// его неуспех бронь не откатывает.
	if s.sink != nil {
		if ref := busyRefFor(links, staffID); ref != "" {
			go s.pushExternalEvent(res.ID, ref, cal.Name, slot.Start, slot.End)
		}
	}

	return res, nil
}

func busyRefFor(links []model.StaffLink, staffID uuid.UUID) string {
	for _, link := range links {
		if link.StaffID == staffID && link.BusySourceRef != nil {
			return *link.BusySourceRef
		}
	}
	return ""
}

func (s *BookingService) pushExternalEvent(resID uuid.UUID, credentialRef, title string, start, end time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ref, err := s.sink.CreateEvent(ctx, credentialRef, title, start, end)
	if err != nil {
		log.Printf("external event for reservation %s not created: %v", resID, err)
		return
	}
	if err := s.reservations.SetExternalEventRef(ctx, resID, ref); err != nil {
		log.Printf("store external event ref for reservation %s: %v", resID, err)
	}
}

// Confirm переводит запись pending -> confirmed.
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id,
		[]model.ReservationStatus{model.ReservationStatusPending},
		model.ReservationStatusConfirmed,
		model.EventTypeReservationConfirmed,
		nil, "")
}

// Cancel отменяет запись pending|confirmed с причиной и отметкой
// времени. Отмена терминальна; строка остаётся для аудита.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	now := s.now()
	return s.transition(ctx, id,
		[]model.ReservationStatus{model.ReservationStatusPending, model.ReservationStatusConfirmed},
		model.ReservationStatusCancelled,
		model.EventTypeReservationCancelled,
		&now, reason)
}

// Complete переводит запись confirmed -> completed.
func (s *BookingService) Complete(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id,
		[]model.ReservationStatus{model.ReservationStatusConfirmed},
		model.ReservationStatusCompleted,
		model.EventTypeReservationCompleted,
		nil, "")
}

func (s *BookingService) transition(
	ctx context.Context,
	id uuid.UUID,
	fromAny []model.ReservationStatus,
	to model.ReservationStatus,
	event model.EventType,
	cancelledAt *time.Time,
	cancelReason string,
) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status.Error(codes.NotFound, "reservation not found")
		}
		return status.Errorf(codes.Internal, "load reservation: %v", err)
	}

	allowed := false
	for _, from := range fromAny {
		if res.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return status.Errorf(codes.FailedPrecondition, "reservation is %s, cannot become %s", res.Status, to)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewGormReservationRepository(tx).UpdateStatus(ctx, id, to, cancelledAt, cancelReason); err != nil {
			return err
		}
		return tx.Create(&model.Event{
			EventType:     event,
			CustomerID:    &res.CustomerID,
			ReservationID: &res.ID,
			Details:       cancelReason,
		}).Error
	})
	if err != nil {
		return status.Errorf(codes.Internal, "update reservation: %v", err)
	}
	return nil
}

// Delete — административное удаление строки. Перед удалением ядро
// best-effort отзывает созданное во внешнем календаре событие.
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status.Error(codes.NotFound, "reservation not found")
		}
		return status.Errorf(codes.Internal, "load reservation: %v", err)
	}

	if s.sink != nil && res.ExternalEventRef != nil {
		links, err := s.calendars.ListStaffLinks(ctx, res.CalendarID)
		if err == nil {
			if ref := busyRefFor(links, res.StaffID); ref != "" {
				if err := s.sink.DeleteEvent(ctx, ref, *res.ExternalEventRef); err != nil {
					log.Printf("retract external event for reservation %s: %v", id, err)
				}
			}
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewGormReservationRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return tx.Create(&model.Event{
			EventType:  model.EventTypeReservationDeleted,
			CustomerID: &res.CustomerID,
			Details:    fmt.Sprintf("reservation=%s slot=%s", id, res.StartsAt.Format(time.RFC3339)),
		}).Error
	})
	if err != nil {
		return status.Errorf(codes.Internal, "delete reservation: %v", err)
	}
	return nil
}
