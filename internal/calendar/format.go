package calendar

import (
	"fmt"
	"time"
)

var ruWeekdays = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

// FormatSlotForUser форматирует слот в человекочитаемую строку для
// чат-поверхности. Если loc != nil, время переводится в указанный пояс.
func FormatSlotForUser(s Slot, loc *time.Location) string {
	start := s.Start
	end := s.End

	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	weekday := ruWeekdays[start.Weekday()]
	// Дата в формате ДД.ММ.ГГГГ, время в формате ЧЧ:ММ.
	return fmt.Sprintf(
		"%s, %s, %s–%s",
		weekday,
		start.Format("02.01.2006"),
		start.Format("15:04"),
		end.Format("15:04"),
	)
}
