package reservation

import (
	"context"
)

// Repository 预约仓储接口
type Repository interface {
	Create(ctx context.Context, r *Reservation) error

	// FindByID 不存在返回ErrReservationNotFound
	FindByID(ctx context.Context, id uint) (*Reservation, error)

	// LockByID 悲观锁查询预约(加入候补时串行化同一预约的并发登记)
	LockByID(ctx context.Context, id uint) (*Reservation, error)

	// Deactivate 条件更新:WHERE id=? AND active=true
	// 影响行数为0时返回ErrReservationInactive
	Deactivate(ctx context.Context, id uint) error

	// ListByUser 查询用户的预约(按预约时间倒序)
	ListByUser(ctx context.Context, userID uint) ([]*Reservation, error)
}

// WaitlistRepository 候补名单仓储接口
type WaitlistRepository interface {
	// Create 创建候补条目
	// (reservation_id, user_id)重复时返回ErrDuplicateEntry
	Create(ctx context.Context, e *WaitlistEntry) error

	// Exists 用户是否已在该预约的候补名单中
	Exists(ctx context.Context, reservationID, userID uint) (bool, error)

	// MaxPosition 当前最大位置,名单为空时返回0
	MaxPosition(ctx context.Context, reservationID uint) (int, error)

	// ListByReservation 按position升序返回候补名单
	ListByReservation(ctx context.Context, reservationID uint) ([]*WaitlistEntry, error)

	// FindByReservationAndUser 不存在返回ErrEntryNotFound
	FindByReservationAndUser(ctx context.Context, reservationID, userID uint) (*WaitlistEntry, error)

	Delete(ctx context.Context, id uint) error

	UpdatePosition(ctx context.Context, id uint, position int) error

	// HeadForCopy 副本所有有效预约中,最早预约的候补队首
	// 没有候补时返回ErrEntryNotFound
	HeadForCopy(ctx context.Context, copyID uint) (*WaitlistEntry, error)
}
