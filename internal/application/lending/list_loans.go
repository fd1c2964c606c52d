package lending

import (
	"context"

	"github.com/xiebiao/library/internal/domain/loan"
)

// ListLoansUseCase 借阅列表(按借出时间倒序)
type ListLoansUseCase struct {
	loanRepo loan.Repository
	policy   loan.FinePolicy
}

// NewListLoansUseCase 创建借阅列表用例
func NewListLoansUseCase(loanRepo loan.Repository, policy loan.FinePolicy) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo, policy: policy}
}

// Execute 查询借阅列表
func (uc *ListLoansUseCase) Execute(ctx context.Context, req ListLoansRequest) (*ListLoansResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	loans, total, err := uc.loanRepo.List(ctx, loan.ListParams{
		UserID:   req.UserID,
		OpenOnly: req.OpenOnly,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]LoanResponse, len(loans))
	for i, l := range loans {
		items[i] = toLoanResponse(l, uc.policy)
	}

	return &ListLoansResponse{
		Loans:    items,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
