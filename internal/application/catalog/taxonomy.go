package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
)

// TaxonomyUseCase 作者、出版社、分类的维护
// 三者都是简单的字典数据,合并为一个用例对象
type TaxonomyUseCase struct {
	authorRepo    catalog.AuthorRepository
	publisherRepo catalog.PublisherRepository
	categoryRepo  catalog.CategoryRepository
	txManager     *rdb.TxManager
	log           *slog.Logger
}

// NewTaxonomyUseCase 创建字典维护用例
func NewTaxonomyUseCase(
	authorRepo catalog.AuthorRepository,
	publisherRepo catalog.PublisherRepository,
	categoryRepo catalog.CategoryRepository,
	txManager *rdb.TxManager,
	log *slog.Logger,
) *TaxonomyUseCase {
	return &TaxonomyUseCase{
		authorRepo:    authorRepo,
		publisherRepo: publisherRepo,
		categoryRepo:  categoryRepo,
		txManager:     txManager,
		log:           log,
	}
}

// CreateAuthorRequest 新增作者
type CreateAuthorRequest struct {
	Name      string
	Biography string
}

// CreatePublisherRequest 新增出版社
type CreatePublisherRequest struct {
	Name    string
	Address string
	Website string
}

func (uc *TaxonomyUseCase) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*AuthorResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalog.ErrInvalidName
	}
	a := &catalog.Author{Name: name, Biography: req.Biography}
	if err := uc.authorRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	resp := toAuthorResponse(*a)
	return &resp, nil
}

func (uc *TaxonomyUseCase) ListAuthors(ctx context.Context) ([]AuthorResponse, error) {
	authors, err := uc.authorRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AuthorResponse, len(authors))
	for i, a := range authors {
		out[i] = toAuthorResponse(*a)
	}
	return out, nil
}

func (uc *TaxonomyUseCase) CreatePublisher(ctx context.Context, req CreatePublisherRequest) (*PublisherResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalog.ErrInvalidName
	}
	p := &catalog.Publisher{Name: name, Address: req.Address, Website: req.Website}
	if err := uc.publisherRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toPublisherResponse(p), nil
}

func (uc *TaxonomyUseCase) ListPublishers(ctx context.Context) ([]*PublisherResponse, error) {
	publishers, err := uc.publisherRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*PublisherResponse, len(publishers))
	for i, p := range publishers {
		out[i] = toPublisherResponse(p)
	}
	return out, nil
}

// DeletePublisher 删除出版社,名下图书保留但出版社置空
func (uc *TaxonomyUseCase) DeletePublisher(ctx context.Context, id uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		return uc.publisherRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	uc.log.InfoContext(ctx, "出版社已删除", "publisher_id", id)
	return nil
}

func (uc *TaxonomyUseCase) CreateCategory(ctx context.Context, name string) (*CategoryResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, catalog.ErrInvalidName
	}
	c := &catalog.Category{Name: name}
	if err := uc.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := toCategoryResponse(*c)
	return &resp, nil
}

func (uc *TaxonomyUseCase) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategoryResponse(*c)
	}
	return out, nil
}
