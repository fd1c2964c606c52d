package rdb

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// copyRepository 副本仓储实现
type copyRepository struct {
	db *gorm.DB
}

// NewCopyRepository 创建副本仓储
func NewCopyRepository(db *gorm.DB) bookcopy.Repository {
	return &copyRepository{db: db}
}

// Create 登记副本
func (r *copyRepository) Create(ctx context.Context, c *bookcopy.Copy) error {
	model := &CopyModel{
		BookID:    c.BookID,
		Barcode:   c.Barcode,
		Location:  c.Location,
		Format:    string(c.Format),
		Condition: string(c.Condition),
		Status:    string(c.Status),
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return bookcopy.ErrBarcodeDuplicate
		}
		return apperrors.Wrap(err, "登记副本失败")
	}

	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找副本
func (r *copyRepository) FindByID(ctx context.Context, id uint) (*bookcopy.Copy, error) {
	var model CopyModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, bookcopy.ErrCopyNotFound
		}
		return nil, apperrors.Wrap(err, "查询副本失败")
	}
	return toCopyEntity(&model), nil
}

// LockByID 悲观锁查询副本
// SELECT * FROM copies WHERE id = ? FOR UPDATE
// 必须在事务内调用,锁在COMMIT/ROLLBACK时释放(SQLite不支持行锁,由单连接串行化保证)
func (r *copyRepository) LockByID(ctx context.Context, id uint) (*bookcopy.Copy, error) {
	var model CopyModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, bookcopy.ErrCopyNotFound
		}
		return nil, apperrors.Wrap(err, "锁定副本失败")
	}
	return toCopyEntity(&model), nil
}

// MarkLoaned 可借 → 已借出
func (r *copyRepository) MarkLoaned(ctx context.Context, id uint) error {
	return r.transition(ctx, id, bookcopy.StatusAvailable, bookcopy.StatusLoaned, bookcopy.ErrCopyUnavailable)
}

// MarkAvailable 已借出 → 可借
func (r *copyRepository) MarkAvailable(ctx context.Context, id uint) error {
	return r.transition(ctx, id, bookcopy.StatusLoaned, bookcopy.StatusAvailable, bookcopy.ErrCopyNotLoaned)
}

// transition 条件更新状态
// UPDATE copies SET status = ? WHERE id = ? AND status = ?
// 影响行数为0:副本不存在,或者状态已被其他事务改变
func (r *copyRepository) transition(ctx context.Context, id uint, from, to bookcopy.Status, conflict error) error {
	db := r.getDB(ctx)
	result := db.Model(&CopyModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新副本状态失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&CopyModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询副本失败")
		}
		if count == 0 {
			return bookcopy.ErrCopyNotFound
		}
		return conflict
	}

	return nil
}

// UpdateCondition 更新品相
func (r *copyRepository) UpdateCondition(ctx context.Context, id uint, condition bookcopy.Condition) error {
	result := r.getDB(ctx).Model(&CopyModel{}).Where("id = ?", id).Update("copy_condition", string(condition))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新副本品相失败")
	}
	if result.RowsAffected == 0 {
		return bookcopy.ErrCopyNotFound
	}
	return nil
}

// ListByBook 查询图书的副本
func (r *copyRepository) ListByBook(ctx context.Context, bookID uint, availableOnly bool) ([]*bookcopy.Copy, error) {
	query := r.getDB(ctx).Where("book_id = ?", bookID)
	if availableOnly {
		query = query.Where("status = ?", string(bookcopy.StatusAvailable))
	}

	var models []CopyModel
	if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询副本列表失败")
	}

	copies := make([]*bookcopy.Copy, len(models))
	for i := range models {
		copies[i] = toCopyEntity(&models[i])
	}
	return copies, nil
}

// CountAvailable 实时统计可借副本数
func (r *copyRepository) CountAvailable(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&CopyModel{}).
		Where("book_id = ? AND status = ?", bookID, string(bookcopy.StatusAvailable)).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计可借副本失败")
	}
	return count, nil
}

func (r *copyRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// toCopyEntity GORM模型 → 领域实体
func toCopyEntity(m *CopyModel) *bookcopy.Copy {
	return &bookcopy.Copy{
		ID:        m.ID,
		BookID:    m.BookID,
		Barcode:   m.Barcode,
		Location:  m.Location,
		Format:    bookcopy.Format(m.Format),
		Condition: bookcopy.Condition(m.Condition),
		Status:    bookcopy.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
