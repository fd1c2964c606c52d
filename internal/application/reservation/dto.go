package reservation

import (
	"time"

	"github.com/xiebiao/library/internal/domain/reservation"
)

const tracerName = "library/reservation"

// Clock 当前时间(测试中替换)
type Clock func() time.Time

// CreateReservationRequest 创建预约
type CreateReservationRequest struct {
	UserID uint
	CopyID uint
}

// CancelReservationRequest 取消预约
// ActorID为发起取消的用户;AllowAny为true时(馆员)可取消任何人的预约
type CancelReservationRequest struct {
	ReservationID uint
	ActorID       uint
	AllowAny      bool
}

// WaitlistRequest 加入/退出候补名单
type WaitlistRequest struct {
	ReservationID uint
	UserID        uint
}

// ReservationResponse 预约
type ReservationResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	CopyID          uint      `json:"copy_id"`
	ReservationDate time.Time `json:"reservation_date"`
	Active          bool      `json:"active"`
}

// WaitlistEntryResponse 候补条目
type WaitlistEntryResponse struct {
	ID            uint      `json:"id"`
	ReservationID uint      `json:"reservation_id"`
	UserID        uint      `json:"user_id"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		CopyID:          r.CopyID,
		ReservationDate: r.ReservationDate,
		Active:          r.Active,
	}
}

func toEntryResponse(e *reservation.WaitlistEntry) *WaitlistEntryResponse {
	return &WaitlistEntryResponse{
		ID:            e.ID,
		ReservationID: e.ReservationID,
		UserID:        e.UserID,
		Position:      e.Position,
		CreatedAt:     e.CreatedAt,
	}
}
