package rdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/catalog"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// =========================================
// 作者
// =========================================

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) catalog.AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, a *catalog.Author) error {
	model := &AuthorModel{Name: a.Name, Biography: a.Biography}
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建作者失败")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *authorRepository) FindByIDs(ctx context.Context, ids []uint) ([]catalog.Author, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var models []AuthorModel
	if err := dbFromContext(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	if len(models) != len(ids) {
		return nil, catalog.ErrAuthorNotFound
	}

	authors := make([]catalog.Author, len(models))
	for i := range models {
		authors[i] = *toAuthorEntity(&models[i])
	}
	return authors, nil
}

func (r *authorRepository) List(ctx context.Context) ([]*catalog.Author, error) {
	var models []AuthorModel
	if err := dbFromContext(ctx, r.db).Order("name").Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询作者列表失败")
	}

	authors := make([]*catalog.Author, len(models))
	for i := range models {
		authors[i] = toAuthorEntity(&models[i])
	}
	return authors, nil
}

func toAuthorEntity(m *AuthorModel) *catalog.Author {
	return &catalog.Author{
		ID:        m.ID,
		Name:      m.Name,
		Biography: m.Biography,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// =========================================
// 出版社
// =========================================

type publisherRepository struct {
	db *gorm.DB
}

// NewPublisherRepository 创建出版社仓储
func NewPublisherRepository(db *gorm.DB) catalog.PublisherRepository {
	return &publisherRepository{db: db}
}

func (r *publisherRepository) Create(ctx context.Context, p *catalog.Publisher) error {
	model := &PublisherModel{Name: p.Name, Address: p.Address, Website: p.Website}
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建出版社失败")
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *publisherRepository) FindByID(ctx context.Context, id uint) (*catalog.Publisher, error) {
	var model PublisherModel
	if err := dbFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrPublisherNotFound
		}
		return nil, apperrors.Wrap(err, "查询出版社失败")
	}
	return toPublisherEntity(&model), nil
}

func (r *publisherRepository) List(ctx context.Context) ([]*catalog.Publisher, error) {
	var models []PublisherModel
	if err := dbFromContext(ctx, r.db).Order("name").Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询出版社列表失败")
	}

	publishers := make([]*catalog.Publisher, len(models))
	for i := range models {
		publishers[i] = toPublisherEntity(&models[i])
	}
	return publishers, nil
}

// Delete 删除出版社
// 先把名下图书的publisher_id置为NULL,不依赖数据库外键的ON DELETE SET NULL
func (r *publisherRepository) Delete(ctx context.Context, id uint) error {
	db := dbFromContext(ctx, r.db)

	if err := db.Model(&BookModel{}).Where("publisher_id = ?", id).Update("publisher_id", nil).Error; err != nil {
		return apperrors.Wrap(err, "解除图书出版社关联失败")
	}

	result := db.Delete(&PublisherModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除出版社失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrPublisherNotFound
	}
	return nil
}

func toPublisherEntity(m *PublisherModel) *catalog.Publisher {
	return &catalog.Publisher{
		ID:        m.ID,
		Name:      m.Name,
		Address:   m.Address,
		Website:   m.Website,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// =========================================
// 分类
// =========================================

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) catalog.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	model := &CategoryModel{Name: c.Name}
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建分类失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *categoryRepository) FindByIDs(ctx context.Context, ids []uint) ([]catalog.Category, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var models []CategoryModel
	if err := dbFromContext(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	if len(models) != len(ids) {
		return nil, catalog.ErrCategoryNotFound
	}

	categories := make([]catalog.Category, len(models))
	for i := range models {
		categories[i] = *toCategoryEntity(&models[i])
	}
	return categories, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	var models []CategoryModel
	if err := dbFromContext(ctx, r.db).Order("name").Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}

	categories := make([]*catalog.Category, len(models))
	for i := range models {
		categories[i] = toCategoryEntity(&models[i])
	}
	return categories, nil
}

func toCategoryEntity(m *CategoryModel) *catalog.Category {
	return &catalog.Category{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// uniqueIDs 去重(保持原顺序)
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
