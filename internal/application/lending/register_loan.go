package lending

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// RegisterLoanUseCase 借出登记
type RegisterLoanUseCase struct {
	userRepo  user.Repository
	copyRepo  bookcopy.Repository
	loanRepo  loan.Repository
	txManager *rdb.TxManager
	policy    loan.FinePolicy
	now       Clock
	log       *slog.Logger
}

// NewRegisterLoanUseCase 创建借出登记用例
func NewRegisterLoanUseCase(
	userRepo user.Repository,
	copyRepo bookcopy.Repository,
	loanRepo loan.Repository,
	txManager *rdb.TxManager,
	policy loan.FinePolicy,
	now Clock,
	log *slog.Logger,
) *RegisterLoanUseCase {
	return &RegisterLoanUseCase{
		userRepo:  userRepo,
		copyRepo:  copyRepo,
		loanRepo:  loanRepo,
		txManager: txManager,
		policy:    policy,
		now:       now,
		log:       log,
	}
}

// Execute 借出副本
//
// 并发控制(两人同时借同一副本):
//  1. SELECT ... FOR UPDATE 锁定副本行,后到的事务在此等待
//  2. 锁内检查状态,已借出直接返回ErrCopyUnavailable
//  3. UPDATE copies SET status='loaned' WHERE id=? AND status='available'
//     影响行数为0同样返回ErrCopyUnavailable(锁不可用的方言下兜底)
//  4. COMMIT释放锁,借阅记录与副本状态同时生效
func (uc *RegisterLoanUseCase) Execute(ctx context.Context, req RegisterLoanRequest) (*LoanResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RegisterLoan",
		attribute.Int64("user.id", int64(req.UserID)),
		attribute.Int64("copy.id", int64(req.CopyID)),
	)

	l, err := uc.register(ctx, req)
	tracing.End(span, err)
	if err != nil {
		metrics.LendingFailure("register_loan", apperrors.GetAppError(err).Code)
		return nil, err
	}

	metrics.LoansRegisteredTotal.Inc()
	uc.log.InfoContext(ctx, "借出登记成功", "loan_id", l.ID, "user_id", l.UserID, "copy_id", l.CopyID)

	resp := toLoanResponse(l, uc.policy)
	return &resp, nil
}

func (uc *RegisterLoanUseCase) register(ctx context.Context, req RegisterLoanRequest) (*loan.Loan, error) {
	if req.UserID == 0 || req.CopyID == 0 {
		return nil, apperrors.ErrInvalidParams
	}

	var result *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.userRepo.FindByID(txCtx, req.UserID); err != nil {
			return err
		}

		c, err := uc.copyRepo.LockByID(txCtx, req.CopyID)
		if err != nil {
			return err
		}
		if err := c.MarkLoaned(); err != nil {
			return err
		}

		l := loan.NewLoan(req.UserID, c.ID, uc.now())
		if err := uc.loanRepo.Create(txCtx, l); err != nil {
			return err
		}

		if err := uc.copyRepo.MarkLoaned(txCtx, c.ID); err != nil {
			return err
		}

		result = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
