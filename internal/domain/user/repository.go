package user

import (
	"context"
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/rdb层
type Repository interface {
	// Create 创建用户
	// 注意：如果用户名已存在，应返回ErrUsernameDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户（含用户组）
	// 如果不存在，返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByUsername 根据用户名查找用户
	FindByUsername(ctx context.Context, username string) (*User, error)

	// List 分页查询用户列表
	List(ctx context.Context, page, pageSize int) ([]*User, int64, error)

	// ReplaceGroups 用给定的用户组替换用户原有的全部用户组
	ReplaceGroups(ctx context.Context, userID uint, groupIDs []uint) error
}

// GroupRepository 用户组仓储
type GroupRepository interface {
	// FindByName 不存在返回ErrGroupNotFound
	FindByName(ctx context.Context, name string) (*Group, error)

	List(ctx context.Context) ([]*Group, error)

	// EnsureExists 不存在则创建（初始化内置用户组）
	EnsureExists(ctx context.Context, names ...string) error
}
