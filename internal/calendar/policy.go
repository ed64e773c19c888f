package calendar

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPolicy = errors.New("invalid calendar policy")

// DayTag — метка дня в множестве приёмных дней политики.
// Семь обычных дней недели плюс синтетический тег Holiday.
type DayTag string

const (
	DayMonday    DayTag = "mon"
	DayTuesday   DayTag = "tue"
	DayWednesday DayTag = "wed"
	DayThursday  DayTag = "thu"
	DayFriday    DayTag = "fri"
	DaySaturday  DayTag = "sat"
	DaySunday    DayTag = "sun"
	DayHoliday   DayTag = "holiday"
)

var weekdayTags = map[time.Weekday]DayTag{
	time.Monday:    DayMonday,
	time.Tuesday:   DayTuesday,
	time.Wednesday: DayWednesday,
	time.Thursday:  DayThursday,
	time.Friday:    DayFriday,
	time.Saturday:  DaySaturday,
	time.Sunday:    DaySunday,
}

// Policy — неизменяемая политика календаря на время одного запроса.
// Создаётся только через NewPolicy, чтобы невалидная конфигурация
// отсекалась на входе, а не в середине генерации слотов.
type Policy struct {
	days     map[DayTag]struct{}
	holidays map[string]struct{} // даты "2006-01-02" в локальном поясе

	openMin  int // минуты от полуночи
	closeMin int

	interval time.Duration
	duration time.Duration

	maxDaysAhead int
	minLead      time.Duration

	loc *time.Location
}

// NewPolicy валидирует конфигурацию календаря и собирает политику.
// holidays — даты в формате "2006-01-02"; пустой список допустим.
func NewPolicy(
	days []DayTag,
	openTime, closeTime string,
	slotIntervalMin, sessionDurationMin int,
	maxDaysAhead, minLeadHours int,
	loc *time.Location,
	holidays []string,
) (Policy, error) {
	openMin, err := parseClock(openTime)
	if err != nil {
		return Policy{}, fmt.Errorf("%w: open time: %v", ErrInvalidPolicy, err)
	}
	closeMin, err := parseClock(closeTime)
	if err != nil {
		return Policy{}, fmt.Errorf("%w: close time: %v", ErrInvalidPolicy, err)
	}
	if closeMin <= openMin {
		return Policy{}, fmt.Errorf("%w: close must be after open", ErrInvalidPolicy)
	}
	if slotIntervalMin <= 0 {
		return Policy{}, fmt.Errorf("%w: slot interval must be positive", ErrInvalidPolicy)
	}
	if sessionDurationMin <= 0 {
		return Policy{}, fmt.Errorf("%w: session duration must be positive", ErrInvalidPolicy)
	}
	if maxDaysAhead < 0 {
		return Policy{}, fmt.Errorf("%w: max days ahead must not be negative", ErrInvalidPolicy)
	}
	if minLeadHours < 0 {
		return Policy{}, fmt.Errorf("%w: min lead hours must not be negative", ErrInvalidPolicy)
	}
	if loc == nil {
		loc = time.UTC
	}

	daySet := make(map[DayTag]struct{}, len(days))
	for _, d := range days {
		switch d {
		case DayMonday, DayTuesday, DayWednesday, DayThursday,
			DayFriday, DaySaturday, DaySunday, DayHoliday:
			daySet[d] = struct{}{}
		default:
			return Policy{}, fmt.Errorf("%w: unknown day tag %q", ErrInvalidPolicy, d)
		}
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := time.ParseInLocation("2006-01-02", h, loc); err != nil {
			return Policy{}, fmt.Errorf("%w: holiday date %q: %v", ErrInvalidPolicy, h, err)
		}
		holidaySet[h] = struct{}{}
	}

	return Policy{
		days:         daySet,
		holidays:     holidaySet,
		openMin:      openMin,
		closeMin:     closeMin,
		interval:     time.Duration(slotIntervalMin) * time.Minute,
		duration:     time.Duration(sessionDurationMin) * time.Minute,
		maxDaysAhead: maxDaysAhead,
		minLead:      time.Duration(minLeadHours) * time.Hour,
		loc:          loc,
	}, nil
}

// Location возвращает часовой пояс календаря.
func (p Policy) Location() *time.Location { return p.loc }

// SessionDuration возвращает длительность одного сеанса.
func (p Policy) SessionDuration() time.Duration { return p.duration }

// acceptsDate решает, принимает ли календарь запись на дату.
// Праздничная дата сверяется с тегом Holiday и перекрывает обычный
// день недели: праздник без тега — выходной.
func (p Policy) acceptsDate(date time.Time) bool {
	if _, holiday := p.holidays[date.In(p.loc).Format("2006-01-02")]; holiday {
		_, ok := p.days[DayHoliday]
		return ok
	}
	_, ok := p.days[weekdayTags[date.In(p.loc).Weekday()]]
	return ok
}

// parseClock разбирает время "HH:MM" в минуты от полуночи.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
