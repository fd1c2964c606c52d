package reservation

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// =========================================
// 加入候补
// =========================================

// JoinWaitlistUseCase 加入候补名单
type JoinWaitlistUseCase struct {
	userRepo        user.Repository
	reservationRepo reservation.Repository
	waitlistRepo    reservation.WaitlistRepository
	txManager       *rdb.TxManager
	log             *slog.Logger
}

// NewJoinWaitlistUseCase 创建加入候补用例
func NewJoinWaitlistUseCase(
	userRepo user.Repository,
	reservationRepo reservation.Repository,
	waitlistRepo reservation.WaitlistRepository,
	txManager *rdb.TxManager,
	log *slog.Logger,
) *JoinWaitlistUseCase {
	return &JoinWaitlistUseCase{
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		waitlistRepo:    waitlistRepo,
		txManager:       txManager,
		log:             log,
	}
}

// Execute 排到队尾(position = max + 1)
//
// 锁定预约行,同一预约的并发登记串行执行,位置不会重复。
// 重复登记先查一次,唯一索引兜底,两处都返回ErrDuplicateEntry。
func (uc *JoinWaitlistUseCase) Execute(ctx context.Context, req WaitlistRequest) (*WaitlistEntryResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "JoinWaitlist",
		attribute.Int64("reservation.id", int64(req.ReservationID)),
		attribute.Int64("user.id", int64(req.UserID)),
	)

	var entry *reservation.WaitlistEntry
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.reservationRepo.LockByID(txCtx, req.ReservationID)
		if err != nil {
			return err
		}
		if !r.Active {
			return reservation.ErrReservationInactive
		}

		if _, err := uc.userRepo.FindByID(txCtx, req.UserID); err != nil {
			return err
		}

		exists, err := uc.waitlistRepo.Exists(txCtx, r.ID, req.UserID)
		if err != nil {
			return err
		}
		if exists {
			return reservation.ErrDuplicateEntry
		}

		last, err := uc.waitlistRepo.MaxPosition(txCtx, r.ID)
		if err != nil {
			return err
		}

		e := reservation.NewWaitlistEntry(r.ID, req.UserID, last)
		if err := uc.waitlistRepo.Create(txCtx, e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		metrics.LendingFailure("join_waitlist", apperrors.GetAppError(err).Code)
		return nil, err
	}

	metrics.WaitlistJoinsTotal.Inc()
	uc.log.InfoContext(ctx, "加入候补名单", "reservation_id", entry.ReservationID, "user_id", entry.UserID, "position", entry.Position)
	return toEntryResponse(entry), nil
}

// =========================================
// 退出候补
// =========================================

// LeaveWaitlistUseCase 退出候补名单
type LeaveWaitlistUseCase struct {
	reservationRepo reservation.Repository
	waitlistRepo    reservation.WaitlistRepository
	txManager       *rdb.TxManager
	log             *slog.Logger
}

// NewLeaveWaitlistUseCase 创建退出候补用例
func NewLeaveWaitlistUseCase(
	reservationRepo reservation.Repository,
	waitlistRepo reservation.WaitlistRepository,
	txManager *rdb.TxManager,
	log *slog.Logger,
) *LeaveWaitlistUseCase {
	return &LeaveWaitlistUseCase{
		reservationRepo: reservationRepo,
		waitlistRepo:    waitlistRepo,
		txManager:       txManager,
		log:             log,
	}
}

// Execute 删除条目,后面的条目依次前移一位
// 按position升序逐条更新,(reservation_id, position)唯一索引不会冲突
func (uc *LeaveWaitlistUseCase) Execute(ctx context.Context, req WaitlistRequest) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.reservationRepo.LockByID(txCtx, req.ReservationID); err != nil {
			return err
		}

		e, err := uc.waitlistRepo.FindByReservationAndUser(txCtx, req.ReservationID, req.UserID)
		if err != nil {
			return err
		}
		if err := uc.waitlistRepo.Delete(txCtx, e.ID); err != nil {
			return err
		}

		rest, err := uc.waitlistRepo.ListByReservation(txCtx, req.ReservationID)
		if err != nil {
			return err
		}
		for _, other := range rest {
			if other.Position < e.Position {
				continue
			}
			if err := uc.waitlistRepo.UpdatePosition(txCtx, other.ID, other.Position-1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.log.InfoContext(ctx, "退出候补名单", "reservation_id", req.ReservationID, "user_id", req.UserID)
	return nil
}

// =========================================
// 候补名单
// =========================================

// ListWaitlistUseCase 按position升序返回候补名单
type ListWaitlistUseCase struct {
	reservationRepo reservation.Repository
	waitlistRepo    reservation.WaitlistRepository
}

func NewListWaitlistUseCase(reservationRepo reservation.Repository, waitlistRepo reservation.WaitlistRepository) *ListWaitlistUseCase {
	return &ListWaitlistUseCase{reservationRepo: reservationRepo, waitlistRepo: waitlistRepo}
}

func (uc *ListWaitlistUseCase) Execute(ctx context.Context, reservationID uint) ([]*WaitlistEntryResponse, error) {
	if _, err := uc.reservationRepo.FindByID(ctx, reservationID); err != nil {
		return nil, err
	}

	entries, err := uc.waitlistRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	out := make([]*WaitlistEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	return out, nil
}
