package calendar

import "time"

// Slot — кандидат на запись: производное значение, которое живёт
// только внутри одного запроса и никогда не сохраняется.
type Slot struct {
	Date  time.Time // полночь даты в поясе календаря
	Start time.Time
	End   time.Time
}

// Range возвращает интервал слота [Start, End).
func (s Slot) Range() TimeRange {
	return TimeRange{Start: s.Start, End: s.End}
}

// Generate строит упорядоченный список кандидатов на дату date.
// Пустой список — нормальный результат: дата вне приёмных дней,
// в прошлом или дальше горизонта записи.
func (p Policy) Generate(date, now time.Time) []Slot {
	day := dateOnly(date.In(p.loc))
	today := dateOnly(now.In(p.loc))

	daysAhead := int(day.Sub(today).Hours() / 24)
	if daysAhead < 0 || daysAhead > p.maxDaysAhead {
		return nil
	}
	if !p.acceptsDate(day) {
		return nil
	}

	// Для сегодняшней даты действует минимальный зазор от «сейчас»,
	// для будущих — вся рабочая часть дня.
	earliest := day
	if day.Equal(today) {
		earliest = now.In(p.loc).Add(p.minLead)
	}

	opensAt := day.Add(time.Duration(p.openMin) * time.Minute)
	closesAt := day.Add(time.Duration(p.closeMin) * time.Minute)

	var slots []Slot
	for start := opensAt; !start.Add(p.duration).After(closesAt); start = start.Add(p.interval) {
		if start.Before(earliest) {
			continue
		}
		slots = append(slots, Slot{
			Date:  day,
			Start: start,
			End:   start.Add(p.duration),
		})
	}
	return slots
}

// GenerateRange строит кандидатов для диапазона дат [from, to]
// включительно, в порядке дат. Слоты между датами независимы,
// поэтому результат — простая конкатенация подневных списков.
func (p Policy) GenerateRange(from, to, now time.Time) []Slot {
	start := dateOnly(from.In(p.loc))
	end := dateOnly(to.In(p.loc))

	var slots []Slot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		slots = append(slots, p.Generate(day, now)...)
	}
	return slots
}
