package busy

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSourceUnavailable = errors.New("busy source unavailable")
	ErrBadPayload        = errors.New("busy source returned malformed payload")
)

// Interval — занятость сотрудника во внешнем календаре, [Start, End).
// Только чтение: ядро эти интервалы никогда не сохраняет и не кэширует
// дольше одного запроса.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Source отдаёт занятость сотрудника во внешнем календаре в окне
// [from, to). Один вызов на сотрудника на всё окно запроса. Ошибка
// вызова отличима от пустого списка: вызывающий обязан трактовать её
// как «сотрудник занят» (fail-closed), а не как «свободен».
type Source interface {
	GetBusyIntervals(ctx context.Context, credentialRef string, from, to time.Time) ([]Interval, error)
}

// EventSink пишет события во внешний календарь. Вызовы best-effort:
// их неуспех не откатывает внутреннюю запись.
type EventSink interface {
	CreateEvent(ctx context.Context, credentialRef, description string, start, end time.Time) (string, error)
	DeleteEvent(ctx context.Context, credentialRef, eventRef string) error
}
