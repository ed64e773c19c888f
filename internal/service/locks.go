package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// slotLocks сериализует последовательность «прочитали доступность —
// записали бронь» по ключу (календарь, начало слота). Без этого две
// конкурентные брони одного слота могут обе увидеть сотрудника
// свободным; уникальный индекс в БД остаётся второй линией обороны.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*slotLock)}
}

func slotKey(calendarID uuid.UUID, startsAt time.Time) string {
	return calendarID.String() + "|" + startsAt.UTC().Format(time.RFC3339)
}

// Lock захватывает замок слота и возвращает функцию освобождения.
func (s *slotLocks) Lock(calendarID uuid.UUID, startsAt time.Time) func() {
	key := slotKey(calendarID, startsAt)

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &slotLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
