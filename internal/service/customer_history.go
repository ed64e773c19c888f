package service

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type CustomerReservationsRequest struct {
	ChatID   int64
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

type CustomerReservationsResponse struct {
	Reservations []model.Reservation
	Total        int64
}

// ListCustomerReservations — история записей клиента за период,
// с пагинацией. Отменённые записи остаются в выдаче: они хранятся
// для аудита и статистики.
func (s *BookingService) ListCustomerReservations(
	ctx context.Context,
	req CustomerReservationsRequest,
) (*CustomerReservationsResponse, error) {
	if req.ChatID == 0 {
		return nil, status.Error(codes.InvalidArgument, "chat_id is required")
	}
	if !req.To.After(req.From) {
		return nil, status.Error(codes.InvalidArgument, "to must be after from")
	}

	customer, err := s.customers.GetByChatID(ctx, req.ChatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CustomerReservationsResponse{}, nil
		}
		return nil, status.Errorf(codes.Internal, "load customer: %v", err)
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 20
	}

	reservations, total, err := s.reservations.ListByCustomerAndRange(
		ctx,
		customer.ID,
		req.From, req.To,
		size, (page-1)*size,
	)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list reservations: %v", err)
	}

	return &CustomerReservationsResponse{Reservations: reservations, Total: total}, nil
}
