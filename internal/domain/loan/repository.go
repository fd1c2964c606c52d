package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository 借阅仓储接口
// 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, l *Loan) error

	// FindByID 根据ID查找借阅记录
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// LockByID 悲观锁查询借阅记录(用于归还、核算罚款)
	LockByID(ctx context.Context, id uint) (*Loan, error)

	// MarkReturned 条件更新:WHERE id=? AND returned=false
	// 影响行数为0时返回ErrAlreadyReturned
	MarkReturned(ctx context.Context, id uint, returnDate time.Time) error

	// List 分页查询借阅记录(按借出时间倒序)
	List(ctx context.Context, params ListParams) ([]*Loan, int64, error)
}

// ListParams 借阅列表查询参数
type ListParams struct {
	UserID   uint // 0表示全部用户
	OpenOnly bool // 只查询未归还
	Page     int
	PageSize int
}

// FineRepository 罚款仓储接口
type FineRepository interface {
	// Create 创建罚款,loan_id重复时返回ErrFineDuplicate
	Create(ctx context.Context, f *Fine) error

	FindByID(ctx context.Context, id uint) (*Fine, error)

	// FindByLoanID 不存在返回ErrFineNotFound
	FindByLoanID(ctx context.Context, loanID uint) (*Fine, error)

	// UpdateAmount 更新未缴罚款金额(WHERE paid=false)
	UpdateAmount(ctx context.Context, id uint, amount decimal.Decimal) error

	// MarkPaid 条件更新:WHERE id=? AND paid=false
	// 影响行数为0时返回ErrFineAlreadyPaid
	MarkPaid(ctx context.Context, id uint, paidAt time.Time) error
}
