package reservation

import (
	"time"
)

// Reservation 预约(用户对某个副本的请求标记)
// 设计说明:
// 1. 创建预约不要求副本可借(通常正是因为副本已借出才预约)
// 2. 创建预约不会自动加入候补名单,候补由JoinWaitlist单独登记
type Reservation struct {
	ID              uint
	UserID          uint
	CopyID          uint
	ReservationDate time.Time
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewReservation 创建预约(初始为有效状态)
func NewReservation(userID, copyID uint, at time.Time) *Reservation {
	return &Reservation{
		UserID:          userID,
		CopyID:          copyID,
		ReservationDate: at,
		Active:          true,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

// IsOwnedBy 检查预约是否由指定用户发起
func (r *Reservation) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// Cancel 取消预约
func (r *Reservation) Cancel() error {
	if !r.Active {
		return ErrReservationInactive
	}
	r.Active = false
	r.UpdatedAt = time.Now()
	return nil
}

// WaitlistEntry 候补名单条目
// 不变量:同一预约下position从1开始连续递增,无空洞;(reservation, user)唯一
type WaitlistEntry struct {
	ID            uint
	ReservationID uint
	UserID        uint
	Position      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewWaitlistEntry 排在当前队尾之后
func NewWaitlistEntry(reservationID, userID uint, currentMax int) *WaitlistEntry {
	now := time.Now()
	return &WaitlistEntry{
		ReservationID: reservationID,
		UserID:        userID,
		Position:      currentMax + 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CopyAvailable 副本归还后发给候补队首的通知
// 只是通知,不会自动转为新的借阅
type CopyAvailable struct {
	CopyID        uint      `json:"copy_id"`
	ReservationID uint      `json:"reservation_id"`
	UserID        uint      `json:"user_id"`
	Position      int       `json:"position"`
	ReturnedLoan  uint      `json:"returned_loan_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
