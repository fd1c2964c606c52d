package reservation

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// CreateReservationUseCase 创建预约
// 不要求副本可借,也不会自动加入候补名单
type CreateReservationUseCase struct {
	userRepo        user.Repository
	copyRepo        bookcopy.Repository
	reservationRepo reservation.Repository
	now             Clock
	log             *slog.Logger
}

// NewCreateReservationUseCase 创建预约用例
func NewCreateReservationUseCase(
	userRepo user.Repository,
	copyRepo bookcopy.Repository,
	reservationRepo reservation.Repository,
	now Clock,
	log *slog.Logger,
) *CreateReservationUseCase {
	return &CreateReservationUseCase{
		userRepo:        userRepo,
		copyRepo:        copyRepo,
		reservationRepo: reservationRepo,
		now:             now,
		log:             log,
	}
}

// Execute 创建预约
func (uc *CreateReservationUseCase) Execute(ctx context.Context, req CreateReservationRequest) (*ReservationResponse, error) {
	if req.UserID == 0 || req.CopyID == 0 {
		return nil, apperrors.ErrInvalidParams
	}

	if _, err := uc.userRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	if _, err := uc.copyRepo.FindByID(ctx, req.CopyID); err != nil {
		return nil, err
	}

	r := reservation.NewReservation(req.UserID, req.CopyID, uc.now())
	if err := uc.reservationRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	uc.log.InfoContext(ctx, "预约已创建", "reservation_id", r.ID, "user_id", r.UserID, "copy_id", r.CopyID)
	return toReservationResponse(r), nil
}

// CancelReservationUseCase 取消预约
// 候补名单保留,队首查询只看有效预约
type CancelReservationUseCase struct {
	reservationRepo reservation.Repository
	log             *slog.Logger
}

// NewCancelReservationUseCase 创建取消预约用例
func NewCancelReservationUseCase(reservationRepo reservation.Repository, log *slog.Logger) *CancelReservationUseCase {
	return &CancelReservationUseCase{reservationRepo: reservationRepo, log: log}
}

// Execute 取消预约
// 只有发起人本人或AllowAny才能取消,否则返回ErrForbidden;已失效返回ErrReservationInactive
func (uc *CancelReservationUseCase) Execute(ctx context.Context, req CancelReservationRequest) error {
	r, err := uc.reservationRepo.FindByID(ctx, req.ReservationID)
	if err != nil {
		return err
	}
	if !req.AllowAny && !r.IsOwnedBy(req.ActorID) {
		return apperrors.ErrForbidden
	}
	if err := r.Cancel(); err != nil {
		return err
	}

	// 条件更新兜底并发取消
	if err := uc.reservationRepo.Deactivate(ctx, r.ID); err != nil {
		return err
	}
	uc.log.InfoContext(ctx, "预约已取消", "reservation_id", r.ID, "actor_id", req.ActorID)
	return nil
}

// ListUserReservationsUseCase 用户的预约列表
type ListUserReservationsUseCase struct {
	reservationRepo reservation.Repository
}

func NewListUserReservationsUseCase(reservationRepo reservation.Repository) *ListUserReservationsUseCase {
	return &ListUserReservationsUseCase{reservationRepo: reservationRepo}
}

func (uc *ListUserReservationsUseCase) Execute(ctx context.Context, userID uint) ([]*ReservationResponse, error) {
	list, err := uc.reservationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*ReservationResponse, len(list))
	for i, r := range list {
		out[i] = toReservationResponse(r)
	}
	return out, nil
}
