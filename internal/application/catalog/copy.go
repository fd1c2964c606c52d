package catalog

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/catalog"
)

// CopyUseCase 馆藏副本登记与维护
type CopyUseCase struct {
	bookRepo catalog.BookRepository
	copyRepo bookcopy.Repository
	log      *slog.Logger
}

// NewCopyUseCase 创建副本用例
func NewCopyUseCase(bookRepo catalog.BookRepository, copyRepo bookcopy.Repository, log *slog.Logger) *CopyUseCase {
	return &CopyUseCase{bookRepo: bookRepo, copyRepo: copyRepo, log: log}
}

// RegisterCopyRequest 登记副本
// Format默认physical,Condition默认good
type RegisterCopyRequest struct {
	BookID    uint
	Barcode   string
	Location  string
	Format    string
	Condition string
}

// RegisterCopy 登记副本(初始状态可借)
// 条码重复返回ErrBarcodeDuplicate,图书不存在返回ErrBookNotFound
func (uc *CopyUseCase) RegisterCopy(ctx context.Context, req RegisterCopyRequest) (*CopyResponse, error) {
	if _, err := uc.bookRepo.FindByID(ctx, req.BookID); err != nil {
		return nil, err
	}

	format := bookcopy.Format(req.Format)
	if format == "" {
		format = bookcopy.FormatPhysical
	}
	condition := bookcopy.Condition(req.Condition)
	if condition == "" {
		condition = bookcopy.ConditionGood
	}

	c, err := bookcopy.NewCopy(req.BookID, req.Barcode, req.Location, format, condition)
	if err != nil {
		return nil, err
	}
	if err := uc.copyRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	uc.log.InfoContext(ctx, "副本已登记", "copy_id", c.ID, "book_id", c.BookID, "barcode", c.Barcode)
	return toCopyResponse(c), nil
}

// UpdateCondition 更新副本品相(不影响借阅状态)
func (uc *CopyUseCase) UpdateCondition(ctx context.Context, copyID uint, condition string) (*CopyResponse, error) {
	c, err := uc.copyRepo.FindByID(ctx, copyID)
	if err != nil {
		return nil, err
	}

	next := bookcopy.Condition(condition)
	if next == c.Condition {
		return toCopyResponse(c), nil
	}
	if err := c.UpdateCondition(next); err != nil {
		return nil, err
	}
	if err := uc.copyRepo.UpdateCondition(ctx, c.ID, c.Condition); err != nil {
		return nil, err
	}
	return toCopyResponse(c), nil
}

// ListCopies 图书的副本,availableOnly=true时只返回可借副本
func (uc *CopyUseCase) ListCopies(ctx context.Context, bookID uint, availableOnly bool) ([]*CopyResponse, error) {
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	copies, err := uc.copyRepo.ListByBook(ctx, bookID, availableOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*CopyResponse, len(copies))
	for i, c := range copies {
		out[i] = toCopyResponse(c)
	}
	return out, nil
}
