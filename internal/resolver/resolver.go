package resolver

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Leganyst/booking-core/internal/assign"
	"github.com/Leganyst/booking-core/internal/busy"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
)

// ReservationReader — внутренняя занятость календаря (пересечения с
// окном, без отменённых).
type ReservationReader interface {
	FindOverlapping(ctx context.Context, calendarID uuid.UUID, from, to time.Time) ([]model.Reservation, error)
}

// Resolver совмещает сетку кандидатов с двумя источниками занятости:
// внутренними записями и внешними календарями сотрудников.
// Внешний источник передаётся явно, никакого глобального клиента.
type Resolver struct {
	reservations ReservationReader
	busy         busy.Source

	// Ограничение на один внешний вызов; по таймауту сотрудник
	// считается занятым (fail-closed), а не свободным.
	callTimeout time.Duration

	// Верхняя граница параллелизма fan-out по сотрудникам.
	maxParallel int
}

func New(reservations ReservationReader, src busy.Source, callTimeout time.Duration, maxParallel int) *Resolver {
	if maxParallel <= 0 {
		maxParallel = 8
	}
	return &Resolver{
		reservations: reservations,
		busy:         src,
		callTimeout:  callTimeout,
		maxParallel:  maxParallel,
	}
}

// SlotAvailability — слот, размеченный признаком доступности.
type SlotAvailability struct {
	Slot      calendar.Slot
	Available bool
}

// ListResult — результат режима листинга. Degraded означает, что
// внешняя занятость была недоступна (или у календаря нет сотрудников
// с привязанными внешними календарями) и доступность посчитана только
// по внутренним записям.
type ListResult struct {
	Slots    []SlotAvailability
	Degraded bool
}

// staffWindow — собранная занятость сотрудников на всё окно запроса.
type staffWindow struct {
	// Внутренние записи, сгруппированные по сотруднику.
	internal map[uuid.UUID][]calendar.TimeRange
	// Все внутренние записи окна без группировки (для деградации).
	internalAll []calendar.TimeRange
	// Внешняя занятость по сотрудникам с учётными данными.
	external map[uuid.UUID][]calendar.TimeRange
	// Сотрудники, чей внешний вызов не удался: fail-closed.
	failed map[uuid.UUID]bool
	// Деградация уровня всего запроса.
	degraded bool
}

// ListAvailability размечает кандидатов для публичного листинга:
// слот доступен, если свободен хотя бы один сотрудник календаря.
func (r *Resolver) ListAvailability(
	ctx context.Context,
	calendarID uuid.UUID,
	links []model.StaffLink,
	slots []calendar.Slot,
) (ListResult, error) {
	if len(slots) == 0 {
		return ListResult{}, nil
	}

	window := queryWindow(slots)
	w, err := r.collectWindow(ctx, calendarID, links, window)
	if err != nil {
		return ListResult{}, err
	}

	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		available := false
		if w.degraded {
			// Внутренний режим: слот свободен, если его не занимает
			// ни одна внутренняя запись.
			overlaps, _ := slot.Range().OverlapsAny(w.internalAll)
			available = !overlaps
		} else {
			for _, link := range links {
				if r.staffFree(w, link, slot.Range()) {
					available = true
					break
				}
			}
		}
		out = append(out, SlotAvailability{Slot: slot, Available: available})
	}

	return ListResult{Slots: out, Degraded: w.degraded}, nil
}

// FreeStaff возвращает явный набор свободных сотрудников для одного
// конкретного слота (путь назначения). Второй результат — признак
// деградации до внутреннего режима.
func (r *Resolver) FreeStaff(
	ctx context.Context,
	calendarID uuid.UUID,
	links []model.StaffLink,
	slot calendar.Slot,
) ([]assign.Candidate, bool, error) {
	w, err := r.collectWindow(ctx, calendarID, links, slot.Range())
	if err != nil {
		return nil, false, err
	}

	var free []assign.Candidate
	for _, link := range links {
		if w.degraded {
			// В деградации внешняя занятость неизвестна для всех:
			// остаётся только внутренняя проверка по сотруднику.
			if overlaps, _ := slot.Range().OverlapsAny(w.internal[link.StaffID]); overlaps {
				continue
			}
		} else if !r.staffFree(w, link, slot.Range()) {
			continue
		}
		free = append(free, assign.Candidate{StaffID: link.StaffID, Priority: link.Priority})
	}
	return free, w.degraded, nil
}

// staffFree решает, свободен ли сотрудник на интервале slot.
func (r *Resolver) staffFree(w *staffWindow, link model.StaffLink, slot calendar.TimeRange) bool {
	if overlaps, _ := slot.OverlapsAny(w.internal[link.StaffID]); overlaps {
		return false
	}
	if link.BusySourceRef == nil {
		// Внешняя занятость неизвестна: решаем по внутренним данным.
		return true
	}
	if w.failed[link.StaffID] {
		return false
	}
	overlaps, _ := slot.OverlapsAny(w.external[link.StaffID])
	return !overlaps
}

// collectWindow собирает занятость на всё окно запроса: один запрос к
// внутреннему хранилищу и ровно один внешний вызов на сотрудника,
// сколько бы слотов ни проверялось. Внешние вызовы независимы и идут
// параллельно; ответ не отдаётся, пока не завершатся все.
func (r *Resolver) collectWindow(
	ctx context.Context,
	calendarID uuid.UUID,
	links []model.StaffLink,
	window calendar.TimeRange,
) (*staffWindow, error) {
	w := &staffWindow{
		internal: make(map[uuid.UUID][]calendar.TimeRange),
		external: make(map[uuid.UUID][]calendar.TimeRange),
		failed:   make(map[uuid.UUID]bool),
	}

	reservations, err := r.reservations.FindOverlapping(ctx, calendarID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	for _, res := range reservations {
		tr := calendar.TimeRange{Start: res.StartsAt, End: res.EndsAt}
		w.internal[res.StaffID] = append(w.internal[res.StaffID], tr)
		w.internalAll = append(w.internalAll, tr)
	}

	var withRef []model.StaffLink
	if r.busy != nil {
		for _, link := range links {
			if link.BusySourceRef != nil {
				withRef = append(withRef, link)
			}
		}
	}
	if len(withRef) == 0 {
		// У календаря нет ни одного сотрудника с внешним календарём —
		// осознанный внутренний режим, не ошибка.
		w.degraded = true
		return w, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)

	for _, link := range withRef {
		g.Go(func() error {
			callCtx := gctx
			if r.callTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, r.callTimeout)
				defer cancel()
			}

			intervals, err := r.busy.GetBusyIntervals(callCtx, *link.BusySourceRef, window.Start, window.End)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Локальный сбой источника поглощается: сотрудник
				// считается занятым на всё окно.
				log.Printf("busy source failed for staff %s: %v", link.StaffID, err)
				w.failed[link.StaffID] = true
				return nil
			}
			ranges := make([]calendar.TimeRange, 0, len(intervals))
			for _, iv := range intervals {
				ranges = append(ranges, calendar.TimeRange{Start: iv.Start, End: iv.End})
			}
			w.external[link.StaffID] = ranges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(w.failed) == len(withRef) {
		// Источник лёг целиком: деградируем до внутреннего режима
		// вместо отказа всему запросу.
		w.degraded = true
	}
	return w, nil
}

// queryWindow возвращает охватывающее окно для набора слотов.
// Слоты приходят упорядоченными по времени начала.
func queryWindow(slots []calendar.Slot) calendar.TimeRange {
	window := calendar.TimeRange{Start: slots[0].Start, End: slots[0].End}
	for _, s := range slots[1:] {
		if s.Start.Before(window.Start) {
			window.Start = s.Start
		}
		if s.End.After(window.End) {
			window.End = s.End
		}
	}
	return window
}
