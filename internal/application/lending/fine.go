package lending

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// fineAssessor 核算并落库罚款,归还与单独核算共用
// 调用方负责开启事务并锁定借阅行
type fineAssessor struct {
	fineRepo loan.FineRepository
	policy   loan.FinePolicy
}

func (a fineAssessor) reconcile(ctx context.Context, l *loan.Loan, now time.Time) (*loan.Fine, loan.FineAction, error) {
	amount := a.policy.Assess(l, now)

	existing, err := a.fineRepo.FindByLoanID(ctx, l.ID)
	switch {
	case errors.Is(err, loan.ErrFineNotFound):
		existing = nil
	case err != nil:
		return nil, loan.FineNone, err
	}

	f, action, err := loan.ReconcileFine(existing, l.ID, amount)
	if err != nil {
		return nil, loan.FineNone, err
	}

	switch action {
	case loan.FineCreated:
		err = a.fineRepo.Create(ctx, f)
	case loan.FineUpdated:
		err = a.fineRepo.UpdateAmount(ctx, f.ID, f.Amount)
	}
	if err != nil {
		return nil, loan.FineNone, err
	}

	metrics.FinesAssessedTotal.WithLabelValues(action.String()).Inc()
	return f, action, nil
}

// =========================================
// 核算罚款
// =========================================

// AssessFineUseCase 按当前时间(未归还)或归还时间(已归还)核算罚款
// 重复调用是幂等的:每笔借阅最多一条罚款,已缴纳的罚款不再变更
type AssessFineUseCase struct {
	loanRepo  loan.Repository
	assessor  fineAssessor
	txManager *rdb.TxManager
	now       Clock
	log       *slog.Logger
}

// NewAssessFineUseCase 创建核算罚款用例
func NewAssessFineUseCase(
	loanRepo loan.Repository,
	fineRepo loan.FineRepository,
	txManager *rdb.TxManager,
	policy loan.FinePolicy,
	now Clock,
	log *slog.Logger,
) *AssessFineUseCase {
	return &AssessFineUseCase{
		loanRepo:  loanRepo,
		assessor:  fineAssessor{fineRepo: fineRepo, policy: policy},
		txManager: txManager,
		now:       now,
		log:       log,
	}
}

// Execute 核算罚款
func (uc *AssessFineUseCase) Execute(ctx context.Context, req AssessFineRequest) (*FineResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AssessFine", attribute.Int64("loan.id", int64(req.LoanID)))

	var (
		fine    *loan.Fine
		action  loan.FineAction
		overdue int
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.LockByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		now := uc.now()
		overdue = uc.assessor.policy.OverdueDays(l.LoanDate, l.EffectiveDate(now))
		fine, action, err = uc.assessor.reconcile(txCtx, l, now)
		return err
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}

	if action == loan.FineCreated || action == loan.FineUpdated {
		uc.log.InfoContext(ctx, "罚款已核算", "loan_id", req.LoanID, "amount", fine.Amount.StringFixed(2), "action", action.String())
	}
	return toFineResponse(req.LoanID, fine, overdue, action), nil
}

// =========================================
// 缴纳罚款
// =========================================

// PayFineUseCase 缴纳罚款
type PayFineUseCase struct {
	fineRepo  loan.FineRepository
	txManager *rdb.TxManager
	now       Clock
	log       *slog.Logger
}

// NewPayFineUseCase 创建缴纳罚款用例
func NewPayFineUseCase(fineRepo loan.FineRepository, txManager *rdb.TxManager, now Clock, log *slog.Logger) *PayFineUseCase {
	return &PayFineUseCase{fineRepo: fineRepo, txManager: txManager, now: now, log: log}
}

// Execute 缴纳罚款
// 已缴纳返回ErrFineAlreadyPaid(条件更新保证并发下只成功一次)
func (uc *PayFineUseCase) Execute(ctx context.Context, req PayFineRequest) (*FineResponse, error) {
	var fine *loan.Fine
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		f, err := uc.fineRepo.FindByID(txCtx, req.FineID)
		if err != nil {
			return err
		}

		now := uc.now()
		if err := f.Pay(now); err != nil {
			return err
		}
		if err := uc.fineRepo.MarkPaid(txCtx, f.ID, now); err != nil {
			return err
		}

		fine = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.InfoContext(ctx, "罚款已缴纳", "fine_id", fine.ID, "loan_id", fine.LoanID, "amount", fine.Amount.StringFixed(2))
	return &FineResponse{
		ID:     fine.ID,
		LoanID: fine.LoanID,
		Amount: fine.Amount.StringFixed(2),
		Paid:   fine.Paid,
		PaidAt: fine.PaidAt,
	}, nil
}
