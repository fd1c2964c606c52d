package lending

import (
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
)

// tracerName 借阅用例的Span归属
const tracerName = "library/lending"

// Clock 当前时间(测试中替换)
type Clock func() time.Time

// =========================================
// 请求DTO
// =========================================

// RegisterLoanRequest 借出登记
type RegisterLoanRequest struct {
	UserID uint
	CopyID uint
}

// ReturnLoanRequest 归还登记
type ReturnLoanRequest struct {
	LoanID uint
}

// AssessFineRequest 核算罚款
type AssessFineRequest struct {
	LoanID uint
}

// PayFineRequest 缴纳罚款
type PayFineRequest struct {
	FineID uint
}

// ListLoansRequest 借阅列表
type ListLoansRequest struct {
	UserID   uint // 0表示全部用户
	OpenOnly bool
	Page     int
	PageSize int
}

// =========================================
// 响应DTO
// =========================================

// LoanResponse 借阅记录
type LoanResponse struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"user_id"`
	CopyID     uint       `json:"copy_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Returned   bool       `json:"returned"`
}

// FineResponse 罚款
// ID为0表示未逾期,没有罚款记录
type FineResponse struct {
	ID          uint       `json:"id,omitempty"`
	LoanID      uint       `json:"loan_id"`
	Amount      string     `json:"amount"` // 保留2位小数
	OverdueDays int        `json:"overdue_days"`
	Paid        bool       `json:"paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Action      string     `json:"action,omitempty"` // created/updated/unchanged/none
}

// ReturnLoanResponse 归还结果
type ReturnLoanResponse struct {
	Loan LoanResponse  `json:"loan"`
	Fine *FineResponse `json:"fine,omitempty"`
	// NotifiedUserID 收到到馆通知的候补队首,没有候补时为空
	NotifiedUserID *uint `json:"notified_user_id,omitempty"`
}

// ListLoansResponse 借阅分页
type ListLoansResponse struct {
	Loans    []LoanResponse `json:"loans"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func toLoanResponse(l *loan.Loan, policy loan.FinePolicy) LoanResponse {
	return LoanResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		CopyID:     l.CopyID,
		LoanDate:   l.LoanDate,
		DueDate:    l.DueDate(policy.AllowanceDays),
		ReturnDate: l.ReturnDate,
		Returned:   l.Returned,
	}
}

func toFineResponse(loanID uint, f *loan.Fine, overdueDays int, action loan.FineAction) *FineResponse {
	if f == nil {
		return &FineResponse{LoanID: loanID, Amount: "0.00", Action: action.String()}
	}
	return &FineResponse{
		ID:          f.ID,
		LoanID:      f.LoanID,
		Amount:      f.Amount.StringFixed(2),
		OverdueDays: overdueDays,
		Paid:        f.Paid,
		PaidAt:      f.PaidAt,
		Action:      action.String(),
	}
}
