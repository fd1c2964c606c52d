package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan 借阅记录(聚合根)
// DDD设计说明:
// 1. LoanDate创建时确定,之后不可修改
// 2. 同一副本任意时刻最多只有一条未归还的借阅记录
// 3. 借阅记录不删除(审计留痕),只有删除图书时级联清理
type Loan struct {
	ID         uint
	UserID     uint       // 借阅人
	CopyID     uint       // 借出的副本
	LoanDate   time.Time  // 借出时间
	ReturnDate *time.Time // 归还时间(未归还为nil)
	Returned   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLoan 创建借阅记录(工厂方法)
func NewLoan(userID, copyID uint, loanDate time.Time) *Loan {
	return &Loan{
		UserID:    userID,
		CopyID:    copyID,
		LoanDate:  loanDate,
		Returned:  false,
		CreatedAt: loanDate,
		UpdatedAt: loanDate,
	}
}

// IsOpen 是否未归还
func (l *Loan) IsOpen() bool {
	return !l.Returned
}

// Return 归还(领域行为)
// 业务规则:已归还的借阅不能再次归还
func (l *Loan) Return(at time.Time) error {
	if l.Returned {
		return ErrAlreadyReturned
	}
	l.Returned = true
	l.ReturnDate = &at
	l.UpdatedAt = at
	return nil
}

// EffectiveDate 计算罚款的截止时间
// 未归还按当前时间计算,已归还按归还时间计算
func (l *Loan) EffectiveDate(now time.Time) time.Time {
	if l.Returned && l.ReturnDate != nil {
		return *l.ReturnDate
	}
	return now
}

// DueDate 应还日期
func (l *Loan) DueDate(allowanceDays int) time.Time {
	return l.LoanDate.AddDate(0, 0, allowanceDays)
}

// Fine 逾期罚款
// 与Loan一对一(数据库loan_id唯一索引保证)
type Fine struct {
	ID        uint
	LoanID    uint
	Amount    decimal.Decimal // 金额(非负,保留2位小数)
	Paid      bool
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewFine 创建罚款
func NewFine(loanID uint, amount decimal.Decimal) (*Fine, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	now := time.Now()
	return &Fine{
		LoanID:    loanID,
		Amount:    amount.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Pay 缴纳罚款(领域行为)
func (f *Fine) Pay(at time.Time) error {
	if f.Paid {
		return ErrFineAlreadyPaid
	}
	f.Paid = true
	f.PaidAt = &at
	f.UpdatedAt = at
	return nil
}

// FineAction 罚款核算结果
type FineAction int

const (
	FineNone      FineAction = iota // 未逾期,无罚款
	FineCreated                     // 新建罚款
	FineUpdated                     // 更新未缴罚款金额
	FineUnchanged                   // 已有罚款无需变更(金额相同或已缴纳)
)

func (a FineAction) String() string {
	switch a {
	case FineNone:
		return "none"
	case FineCreated:
		return "created"
	case FineUpdated:
		return "updated"
	case FineUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// ReconcileFine 根据新核算的金额决定如何处理已有罚款
// 规则:
// 1. 每笔借阅最多一条罚款,重复核算是幂等的
// 2. 已缴纳的罚款不再变更
// 3. 金额为0且没有已有罚款时不落库
func ReconcileFine(existing *Fine, loanID uint, amount decimal.Decimal) (*Fine, FineAction, error) {
	amount = amount.Round(2)

	if existing == nil {
		if !amount.IsPositive() {
			return nil, FineNone, nil
		}
		f, err := NewFine(loanID, amount)
		if err != nil {
			return nil, FineNone, err
		}
		return f, FineCreated, nil
	}

	if existing.Paid || !amount.IsPositive() || existing.Amount.Equal(amount) {
		return existing, FineUnchanged, nil
	}

	existing.Amount = amount
	existing.UpdatedAt = time.Now()
	return existing, FineUpdated, nil
}
