package service

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/booking-core/internal/model"
)

// SendDueReminders — один проход рассылки напоминаний: подтверждённые
// записи, начинающиеся в пределах окна напоминания, по которым ещё не
// слали. Отметка ставится до отправки одним условным UPDATE, поэтому
// повторный проход (или параллельный) ничего не продублирует.
// Возвращает количество отправленных напоминаний.
func (s *BookingService) SendDueReminders(ctx context.Context) (int, error) {
	now := s.now()

	due, err := s.reservations.ListDueReminders(ctx, now, s.reminderLead)
	if err != nil {
		return 0, status.Errorf(codes.Internal, "list due reminders: %v", err)
	}

	sent := 0
	for _, res := range due {
		ok, err := s.reservations.MarkReminded(ctx, res.ID, now)
		if err != nil {
			return sent, status.Errorf(codes.Internal, "mark reminded: %v", err)
		}
		if !ok {
			// Кто-то успел раньше.
			continue
		}

		if s.notifier != nil {
			if err := s.notifier.NotifyReminder(ctx, &res); err != nil {
				// Неуспех доставки не срывает весь прогон.
				log.Printf("reminder for reservation %s not delivered: %v", res.ID, err)
			}
		}

		if err := s.db.WithContext(ctx).Create(&model.Event{
			EventType:     model.EventTypeReminderSent,
			CustomerID:    &res.CustomerID,
			ReservationID: &res.ID,
		}).Error; err != nil {
			log.Printf("audit reminder event for reservation %s: %v", res.ID, err)
		}
		sent++
	}
	return sent, nil
}
