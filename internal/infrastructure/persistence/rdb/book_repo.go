package rdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/catalog"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储实现
// 设计说明:
// 1. 实现domain/catalog/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) catalog.BookRepository {
	return &bookRepository{db: db}
}

// Create 创建图书
// 作者、分类只写关联表,不回写作者/分类本身(Omit "Authors.*")
func (r *bookRepository) Create(ctx context.Context, b *catalog.Book) error {
	model := toBookModel(b)

	err := r.getDB(ctx).Omit("Authors.*", "Categories.*").Create(model).Error
	if err != nil {
		if isDuplicateError(err) {
			return catalog.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*catalog.Book, error) {
	var model BookModel
	err := r.getDB(ctx).
		Preload("Authors").
		Preload("Categories").
		Preload("Publisher").
		First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Book, int64, error) {
	var models []BookModel
	var total int64

	query := r.getDB(ctx).Model(&BookModel{})

	// 关键词搜索(书名、ISBN)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR isbn LIKE ?", keyword, keyword)
	}

	if params.CategoryID != 0 {
		query = query.Where("id IN (?)",
			r.getDB(ctx).Table("book_categories").Select("book_id").Where("category_id = ?", params.CategoryID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	err := paginate(query, params.Page, params.PageSize).
		Preload("Authors").
		Preload("Categories").
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*catalog.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}

	return books, total, nil
}

// Delete 删除图书
// 按依赖顺序显式级联:罚款 → 借阅 → 候补 → 预约 → 副本 → 关联表 → 图书
// 调用方负责开启事务,保证整体原子性
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	var copyIDs []uint
	if err := db.Model(&CopyModel{}).Where("book_id = ?", id).Pluck("id", &copyIDs).Error; err != nil {
		return apperrors.Wrap(err, "查询图书副本失败")
	}

	if len(copyIDs) > 0 {
		var loanIDs, reservationIDs []uint
		if err := db.Model(&LoanModel{}).Where("copy_id IN ?", copyIDs).Pluck("id", &loanIDs).Error; err != nil {
			return apperrors.Wrap(err, "查询借阅记录失败")
		}
		if err := db.Model(&ReservationModel{}).Where("copy_id IN ?", copyIDs).Pluck("id", &reservationIDs).Error; err != nil {
			return apperrors.Wrap(err, "查询预约失败")
		}

		if len(loanIDs) > 0 {
			if err := db.Where("loan_id IN ?", loanIDs).Delete(&FineModel{}).Error; err != nil {
				return apperrors.Wrap(err, "删除罚款失败")
			}
			if err := db.Where("id IN ?", loanIDs).Delete(&LoanModel{}).Error; err != nil {
				return apperrors.Wrap(err, "删除借阅记录失败")
			}
		}
		if len(reservationIDs) > 0 {
			if err := db.Where("reservation_id IN ?", reservationIDs).Delete(&WaitlistEntryModel{}).Error; err != nil {
				return apperrors.Wrap(err, "删除候补名单失败")
			}
			if err := db.Where("id IN ?", reservationIDs).Delete(&ReservationModel{}).Error; err != nil {
				return apperrors.Wrap(err, "删除预约失败")
			}
		}
		if err := db.Where("id IN ?", copyIDs).Delete(&CopyModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除副本失败")
		}
	}

	if err := db.Exec("DELETE FROM book_authors WHERE book_id = ?", id).Error; err != nil {
		return apperrors.Wrap(err, "删除作者关联失败")
	}
	if err := db.Exec("DELETE FROM book_categories WHERE book_id = ?", id).Error; err != nil {
		return apperrors.Wrap(err, "删除分类关联失败")
	}

	result := db.Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrBookNotFound
	}

	return nil
}

func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *catalog.Book) *BookModel {
	authors := make([]AuthorModel, len(b.Authors))
	for i, a := range b.Authors {
		authors[i] = AuthorModel{ID: a.ID, Name: a.Name, Biography: a.Biography}
	}
	categories := make([]CategoryModel, len(b.Categories))
	for i, c := range b.Categories {
		categories[i] = CategoryModel{ID: c.ID, Name: c.Name}
	}

	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		ISBN:            b.ISBN,
		PublicationDate: b.PublicationDate,
		Synopsis:        b.Synopsis,
		PublisherID:     b.PublisherID,
		Authors:         authors,
		Categories:      categories,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *catalog.Book {
	b := &catalog.Book{
		ID:              model.ID,
		Title:           model.Title,
		ISBN:            model.ISBN,
		PublicationDate: model.PublicationDate,
		Synopsis:        model.Synopsis,
		PublisherID:     model.PublisherID,
		Authors:         make([]catalog.Author, len(model.Authors)),
		Categories:      make([]catalog.Category, len(model.Categories)),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
	for i := range model.Authors {
		b.Authors[i] = *toAuthorEntity(&model.Authors[i])
	}
	for i := range model.Categories {
		b.Categories[i] = *toCategoryEntity(&model.Categories[i])
	}
	if model.Publisher != nil {
		b.Publisher = toPublisherEntity(model.Publisher)
	}
	return b
}
