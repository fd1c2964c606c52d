package report

import (
	"context"

	"github.com/xiebiao/library/internal/domain/report"
	"github.com/xiebiao/library/pkg/tracing"
)

const tracerName = "library/report"

// TopUseCase 借阅排行榜(前10)
// 每次调用实时聚合,不做缓存
type TopUseCase struct {
	repo report.Repository
}

// NewTopUseCase 创建排行榜用例
func NewTopUseCase(repo report.Repository) *TopUseCase {
	return &TopUseCase{repo: repo}
}

// TopBooks 借阅次数最多的图书(汇总全部副本),次数相同按图书ID升序
func (uc *TopUseCase) TopBooks(ctx context.Context) ([]report.BookLoanCount, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "TopBooks")
	rows, err := uc.repo.TopBooks(ctx, report.TopN)
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []report.BookLoanCount{}
	}
	return rows, nil
}

// TopUsers 借阅次数最多的用户,次数相同按用户ID升序
func (uc *TopUseCase) TopUsers(ctx context.Context) ([]report.UserLoanCount, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "TopUsers")
	rows, err := uc.repo.TopUsers(ctx, report.TopN)
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []report.UserLoanCount{}
	}
	return rows, nil
}
