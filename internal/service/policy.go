package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
)

// policyFromModel собирает политику из строки календаря. Ошибка здесь —
// испорченная конфигурация, запрос с такой политикой отклоняется целиком.
func policyFromModel(cal *model.Calendar) (calendar.Policy, error) {
	var rawDays []string
	if len(cal.AcceptedDays) > 0 {
		if err := json.Unmarshal(cal.AcceptedDays, &rawDays); err != nil {
			return calendar.Policy{}, fmt.Errorf("%w: accepted days: %v", calendar.ErrInvalidPolicy, err)
		}
	}
	days := make([]calendar.DayTag, 0, len(rawDays))
	for _, d := range rawDays {
		days = append(days, calendar.DayTag(d))
	}

	var holidays []string
	if len(cal.Holidays) > 0 {
		if err := json.Unmarshal(cal.Holidays, &holidays); err != nil {
			return calendar.Policy{}, fmt.Errorf("%w: holidays: %v", calendar.ErrInvalidPolicy, err)
		}
	}

	loc, err := time.LoadLocation(cal.TimeZone)
	if err != nil {
		return calendar.Policy{}, fmt.Errorf("%w: time zone %q: %v", calendar.ErrInvalidPolicy, cal.TimeZone, err)
	}

	return calendar.NewPolicy(
		days,
		cal.OpenTime,
		cal.CloseTime,
		cal.SlotIntervalMin,
		cal.SessionDurationMin,
		cal.MaxDaysAhead,
		cal.MinLeadHours,
		loc,
		holidays,
	)
}
