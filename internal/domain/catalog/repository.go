package catalog

import (
	"context"
)

// BookRepository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 事务通过context传递,仓储内部自动识别
type BookRepository interface {
	// Create 创建图书(连同作者、分类关联)
	// ISBN重复时返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(预加载作者、分类、出版社)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// Delete 删除图书
	// 级联删除其副本以及副本上的借阅、罚款、预约、候补记录(需在事务内调用)
	Delete(ctx context.Context, id uint) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page       int    // 页码(从1开始)
	PageSize   int    // 每页数量
	Keyword    string // 搜索关键词(搜索书名、ISBN)
	CategoryID uint   // 按分类过滤(0表示不过滤)
}

// AuthorRepository 作者仓储
type AuthorRepository interface {
	Create(ctx context.Context, author *Author) error
	// FindByIDs 批量查询,任一ID不存在返回ErrAuthorNotFound
	FindByIDs(ctx context.Context, ids []uint) ([]Author, error)
	List(ctx context.Context) ([]*Author, error)
}

// PublisherRepository 出版社仓储
type PublisherRepository interface {
	Create(ctx context.Context, publisher *Publisher) error
	FindByID(ctx context.Context, id uint) (*Publisher, error)
	List(ctx context.Context) ([]*Publisher, error)

	// Delete 删除出版社,其名下图书的PublisherID置为NULL
	Delete(ctx context.Context, id uint) error
}

// CategoryRepository 分类仓储
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	// FindByIDs 批量查询,任一ID不存在返回ErrCategoryNotFound
	FindByIDs(ctx context.Context, ids []uint) ([]Category, error)
	List(ctx context.Context) ([]*Category, error)
}
