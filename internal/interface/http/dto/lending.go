package dto

// RegisterLoanRequest 借出登记
type RegisterLoanRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	CopyID uint `json:"copy_id" binding:"required"`
}

// ListLoansQuery 借阅列表查询参数
type ListLoansQuery struct {
	PageQuery
	UserID   uint `form:"user_id"`
	OpenOnly bool `form:"open_only"`
}

// CreateReservationRequest 创建预约
// UserID为空时为当前登录用户预约
type CreateReservationRequest struct {
	UserID uint `json:"user_id"`
	CopyID uint `json:"copy_id" binding:"required"`
}

// WaitlistRequest 加入/退出候补
// UserID为空时为当前登录用户
type WaitlistRequest struct {
	UserID uint `json:"user_id" form:"user_id"`
}
