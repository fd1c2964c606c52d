package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
)

// =========================================
// 新增图书
// =========================================

// CreateBookUseCase 新增图书
type CreateBookUseCase struct {
	bookRepo      catalog.BookRepository
	authorRepo    catalog.AuthorRepository
	publisherRepo catalog.PublisherRepository
	categoryRepo  catalog.CategoryRepository
	log           *slog.Logger
}

// NewCreateBookUseCase 创建新增图书用例
func NewCreateBookUseCase(
	bookRepo catalog.BookRepository,
	authorRepo catalog.AuthorRepository,
	publisherRepo catalog.PublisherRepository,
	categoryRepo catalog.CategoryRepository,
	log *slog.Logger,
) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookRepo:      bookRepo,
		authorRepo:    authorRepo,
		publisherRepo: publisherRepo,
		categoryRepo:  categoryRepo,
		log:           log,
	}
}

// CreateBookRequest 新增图书请求
type CreateBookRequest struct {
	Title           string
	ISBN            string // 允许带连字符,入库前规范化
	PublicationDate *time.Time
	Synopsis        string
	PublisherID     *uint
	AuthorIDs       []uint
	CategoryIDs     []uint
}

// Execute 新增图书
// ISBN唯一性由数据库唯一索引保证,重复返回ErrISBNDuplicate
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, catalog.ErrInvalidTitle
	}
	isbn, err := catalog.NormalizeISBN(req.ISBN)
	if err != nil {
		return nil, err
	}

	var publisher *catalog.Publisher
	if req.PublisherID != nil {
		if publisher, err = uc.publisherRepo.FindByID(ctx, *req.PublisherID); err != nil {
			return nil, err
		}
	}
	authors, err := uc.authorRepo.FindByIDs(ctx, req.AuthorIDs)
	if err != nil {
		return nil, err
	}
	categories, err := uc.categoryRepo.FindByIDs(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	b := catalog.NewBook(title, isbn, req.PublicationDate, req.Synopsis, req.PublisherID, authors, categories)
	if err := uc.bookRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	b.Publisher = publisher

	uc.log.InfoContext(ctx, "图书已入库", "book_id", b.ID, "isbn", b.ISBN)
	return toBookResponse(b, 0), nil
}

// =========================================
// 图书详情
// =========================================

// GetBookUseCase 图书详情(含实时可借副本数)
type GetBookUseCase struct {
	bookRepo catalog.BookRepository
	copyRepo bookcopy.Repository
}

func NewGetBookUseCase(bookRepo catalog.BookRepository, copyRepo bookcopy.Repository) *GetBookUseCase {
	return &GetBookUseCase{bookRepo: bookRepo, copyRepo: copyRepo}
}

func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	available, err := uc.copyRepo.CountAvailable(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b, available), nil
}

// =========================================
// 图书列表
// =========================================

// ListBooksUseCase 图书列表
// 列表项不统计可借副本数(每条一次COUNT,详情页再查)
type ListBooksUseCase struct {
	bookRepo catalog.BookRepository
}

func NewListBooksUseCase(bookRepo catalog.BookRepository) *ListBooksUseCase {
	return &ListBooksUseCase{bookRepo: bookRepo}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Page       int
	PageSize   int
	Keyword    string // 搜索书名、ISBN
	CategoryID uint
}

// ListBooksResponse 列表查询响应
type ListBooksResponse struct {
	List       []*BookResponse `json:"list"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Execute 执行列表查询(page默认1,pageSize默认20、最大100)
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := uc.bookRepo.List(ctx, catalog.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Keyword:    strings.TrimSpace(req.Keyword),
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*BookResponse, len(books))
	for i, b := range books {
		list[i] = toBookResponse(b, 0)
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

// =========================================
// 删除图书
// =========================================

// DeleteBookUseCase 删除图书
// 级联删除副本及其借阅、罚款、预约、候补记录,全部在一个事务内完成
type DeleteBookUseCase struct {
	bookRepo  catalog.BookRepository
	txManager *rdb.TxManager
	log       *slog.Logger
}

func NewDeleteBookUseCase(bookRepo catalog.BookRepository, txManager *rdb.TxManager, log *slog.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookRepo: bookRepo, txManager: txManager, log: log}
}

func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		return uc.bookRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	uc.log.InfoContext(ctx, "图书已删除", "book_id", id)
	return nil
}
