package report

import (
	"context"
)

// TopN 排行榜固定取前10
const TopN = 10

// BookLoanCount 图书借阅次数(汇总该图书所有副本的借阅记录)
type BookLoanCount struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	ISBN      string `json:"isbn"`
	LoanCount int64  `json:"loan_count"`
}

// UserLoanCount 用户借阅次数
type UserLoanCount struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	LoanCount int64  `json:"loan_count"`
}

// Repository 报表查询接口(只读聚合)
// 排序规则:借阅次数降序,次数相同按ID升序
type Repository interface {
	TopBooks(ctx context.Context, limit int) ([]BookLoanCount, error)
	TopUsers(ctx context.Context, limit int) ([]UserLoanCount, error)
}
