package lending

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// ReturnLoanUseCase 归还登记
type ReturnLoanUseCase struct {
	copyRepo     bookcopy.Repository
	loanRepo     loan.Repository
	waitlistRepo reservation.WaitlistRepository
	notifier     reservation.Notifier
	assessor     fineAssessor
	txManager    *rdb.TxManager
	now          Clock
	log          *slog.Logger
}

// NewReturnLoanUseCase 创建归还登记用例
func NewReturnLoanUseCase(
	copyRepo bookcopy.Repository,
	loanRepo loan.Repository,
	fineRepo loan.FineRepository,
	waitlistRepo reservation.WaitlistRepository,
	notifier reservation.Notifier,
	txManager *rdb.TxManager,
	policy loan.FinePolicy,
	now Clock,
	log *slog.Logger,
) *ReturnLoanUseCase {
	return &ReturnLoanUseCase{
		copyRepo:     copyRepo,
		loanRepo:     loanRepo,
		waitlistRepo: waitlistRepo,
		notifier:     notifier,
		assessor:     fineAssessor{fineRepo: fineRepo, policy: policy},
		txManager:    txManager,
		now:          now,
		log:          log,
	}
}

// Execute 归还副本
//
// 事务内:锁定借阅 → 标记归还 → 副本置为可借 → 核算罚款
// 事务提交后:通知该副本的候补队首(只通知,不自动借出)
func (uc *ReturnLoanUseCase) Execute(ctx context.Context, req ReturnLoanRequest) (*ReturnLoanResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReturnLoan", attribute.Int64("loan.id", int64(req.LoanID)))

	var (
		returned *loan.Loan
		fine     *loan.Fine
		action   loan.FineAction
		overdue  int
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.LockByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		now := uc.now()
		if err := l.Return(now); err != nil {
			return err
		}
		if err := uc.loanRepo.MarkReturned(txCtx, l.ID, now); err != nil {
			return err
		}
		if err := uc.copyRepo.MarkAvailable(txCtx, l.CopyID); err != nil {
			return err
		}

		overdue = uc.assessor.policy.OverdueDays(l.LoanDate, now)
		fine, action, err = uc.assessor.reconcile(txCtx, l, now)
		if err != nil {
			return err
		}

		returned = l
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		metrics.LendingFailure("return_loan", apperrors.GetAppError(err).Code)
		return nil, err
	}

	metrics.LoansReturnedTotal.Inc()
	uc.log.InfoContext(ctx, "归还登记成功",
		"loan_id", returned.ID,
		"copy_id", returned.CopyID,
		"overdue_days", overdue,
		"fine", action.String(),
	)

	resp := &ReturnLoanResponse{Loan: toLoanResponse(returned, uc.assessor.policy)}
	if action != loan.FineNone {
		resp.Fine = toFineResponse(returned.ID, fine, overdue, action)
	}
	resp.NotifiedUserID = uc.notifyWaitlistHead(ctx, returned, *returned.ReturnDate)
	return resp, nil
}

// notifyWaitlistHead 通知候补队首,失败只记日志
func (uc *ReturnLoanUseCase) notifyWaitlistHead(ctx context.Context, l *loan.Loan, at time.Time) *uint {
	ctx, span := tracing.StartSpan(ctx, tracerName, "NotifyWaitlistHead", attribute.Int64("copy.id", int64(l.CopyID)))

	head, err := uc.waitlistRepo.HeadForCopy(ctx, l.CopyID)
	if errors.Is(err, reservation.ErrEntryNotFound) {
		tracing.End(span, nil)
		return nil
	}
	if err != nil {
		tracing.End(span, err)
		uc.log.WarnContext(ctx, "查询候补队首失败", "copy_id", l.CopyID, "error", err)
		return nil
	}

	err = uc.notifier.NotifyCopyAvailable(ctx, reservation.CopyAvailable{
		CopyID:        l.CopyID,
		ReservationID: head.ReservationID,
		UserID:        head.UserID,
		Position:      head.Position,
		ReturnedLoan:  l.ID,
		OccurredAt:    at,
	})
	tracing.End(span, err)
	if err != nil {
		uc.log.WarnContext(ctx, "到馆通知投递失败", "copy_id", l.CopyID, "user_id", head.UserID, "error", err)
		return nil
	}

	userID := head.UserID
	return &userID
}
