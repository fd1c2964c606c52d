package rdb

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅仓储实现
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// Create 创建借阅记录
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	model := &LoanModel{
		UserID:     l.UserID,
		CopyID:     l.CopyID,
		LoanDate:   l.LoanDate,
		ReturnDate: l.ReturnDate,
		Returned:   l.Returned,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找借阅记录
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return toLoanEntity(&model), nil
}

// LockByID SELECT ... FOR UPDATE
func (r *loanRepository) LockByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "锁定借阅记录失败")
	}
	return toLoanEntity(&model), nil
}

// MarkReturned 条件更新归还状态
// UPDATE loans SET returned = true, return_date = ? WHERE id = ? AND returned = false
func (r *loanRepository) MarkReturned(ctx context.Context, id uint, returnDate time.Time) error {
	db := r.getDB(ctx)
	result := db.Model(&LoanModel{}).
		Where("id = ? AND returned = ?", id, false).
		Updates(map[string]interface{}{
			"returned":    true,
			"return_date": returnDate,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&LoanModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询借阅记录失败")
		}
		if count == 0 {
			return loan.ErrLoanNotFound
		}
		return loan.ErrAlreadyReturned
	}
	return nil
}

// List 分页查询借阅记录
func (r *loanRepository) List(ctx context.Context, params loan.ListParams) ([]*loan.Loan, int64, error) {
	var models []LoanModel
	var total int64

	query := r.getDB(ctx).Model(&LoanModel{})
	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.OpenOnly {
		query = query.Where("returned = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅总数失败")
	}

	err := paginate(query, params.Page, params.PageSize).
		Order("loan_date DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅列表失败")
	}

	loans := make([]*loan.Loan, len(models))
	for i := range models {
		loans[i] = toLoanEntity(&models[i])
	}
	return loans, total, nil
}

func (r *loanRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toLoanEntity(m *LoanModel) *loan.Loan {
	return &loan.Loan{
		ID:         m.ID,
		UserID:     m.UserID,
		CopyID:     m.CopyID,
		LoanDate:   m.LoanDate,
		ReturnDate: m.ReturnDate,
		Returned:   m.Returned,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// =========================================
// 罚款
// =========================================

// fineRepository 罚款仓储实现
type fineRepository struct {
	db *gorm.DB
}

// NewFineRepository 创建罚款仓储
func NewFineRepository(db *gorm.DB) loan.FineRepository {
	return &fineRepository{db: db}
}

// Create 创建罚款
// loan_id唯一索引冲突说明该借阅已有罚款
func (r *fineRepository) Create(ctx context.Context, f *loan.Fine) error {
	model := &FineModel{
		LoanID: f.LoanID,
		Amount: f.Amount,
		Paid:   f.Paid,
		PaidAt: f.PaidAt,
	}

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return loan.ErrFineDuplicate
		}
		return apperrors.Wrap(err, "创建罚款失败")
	}

	f.ID = model.ID
	f.CreatedAt = model.CreatedAt
	f.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *fineRepository) FindByID(ctx context.Context, id uint) (*loan.Fine, error) {
	var model FineModel
	if err := dbFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, loan.ErrFineNotFound
		}
		return nil, apperrors.Wrap(err, "查询罚款失败")
	}
	return toFineEntity(&model), nil
}

func (r *fineRepository) FindByLoanID(ctx context.Context, loanID uint) (*loan.Fine, error) {
	var model FineModel
	if err := dbFromContext(ctx, r.db).Where("loan_id = ?", loanID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, loan.ErrFineNotFound
		}
		return nil, apperrors.Wrap(err, "查询罚款失败")
	}
	return toFineEntity(&model), nil
}

// UpdateAmount 更新未缴罚款金额
func (r *fineRepository) UpdateAmount(ctx context.Context, id uint, amount decimal.Decimal) error {
	result := dbFromContext(ctx, r.db).Model(&FineModel{}).
		Where("id = ? AND paid = ?", id, false).
		Update("amount", amount)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新罚款失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrFineAlreadyPaid
	}
	return nil
}

// MarkPaid 缴纳罚款
// UPDATE fines SET paid = true, paid_at = ? WHERE id = ? AND paid = false
func (r *fineRepository) MarkPaid(ctx context.Context, id uint, paidAt time.Time) error {
	db := dbFromContext(ctx, r.db)
	result := db.Model(&FineModel{}).
		Where("id = ? AND paid = ?", id, false).
		Updates(map[string]interface{}{
			"paid":    true,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "缴纳罚款失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&FineModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询罚款失败")
		}
		if count == 0 {
			return loan.ErrFineNotFound
		}
		return loan.ErrFineAlreadyPaid
	}
	return nil
}

func toFineEntity(m *FineModel) *loan.Fine {
	return &loan.Fine{
		ID:        m.ID,
		LoanID:    m.LoanID,
		Amount:    m.Amount,
		Paid:      m.Paid,
		PaidAt:    m.PaidAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
