package bookcopy

import (
	"context"
)

// Repository 副本仓储接口
type Repository interface {
	// Create 登记副本,条码重复返回ErrBarcodeDuplicate
	Create(ctx context.Context, c *Copy) error

	// FindByID 根据ID查找副本
	FindByID(ctx context.Context, id uint) (*Copy, error)

	// LockByID 悲观锁查询副本(SELECT ... FOR UPDATE)
	// 用于借阅登记时锁定副本行,防止并发重复借出
	LockByID(ctx context.Context, id uint) (*Copy, error)

	// MarkLoaned 条件更新:UPDATE ... SET status='loaned' WHERE id=? AND status='available'
	// 影响行数为0时返回ErrCopyUnavailable
	MarkLoaned(ctx context.Context, id uint) error

	// MarkAvailable 条件更新:UPDATE ... SET status='available' WHERE id=? AND status='loaned'
	// 影响行数为0时返回ErrCopyNotLoaned
	MarkAvailable(ctx context.Context, id uint) error

	// UpdateCondition 更新品相
	UpdateCondition(ctx context.Context, id uint, condition Condition) error

	// ListByBook 查询图书的副本,availableOnly=true时只返回可借副本
	ListByBook(ctx context.Context, bookID uint, availableOnly bool) ([]*Copy, error)

	// CountAvailable 实时统计图书的可借副本数
	CountAvailable(ctx context.Context, bookID uint) (int64, error)
}
